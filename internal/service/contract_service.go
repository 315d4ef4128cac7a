package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/epic-events/crm-api/internal/domain"
	"github.com/epic-events/crm-api/internal/mapper"
	"github.com/epic-events/crm-api/internal/policy"
	"github.com/epic-events/crm-api/internal/repository"
	"github.com/epic-events/crm-api/internal/validation"
	"go.uber.org/zap"
)

type ContractService struct {
	contractRepo *repository.ContractRepository
	clientRepo   *repository.ClientRepository
	userRepo     *repository.UserRepository
	policy       *policy.Evaluator
	logger       *zap.Logger
}

func NewContractService(
	contractRepo *repository.ContractRepository,
	clientRepo *repository.ClientRepository,
	userRepo *repository.UserRepository,
	evaluator *policy.Evaluator,
	logger *zap.Logger,
) *ContractService {
	return &ContractService{
		contractRepo: contractRepo,
		clientRepo:   clientRepo,
		userRepo:     userRepo,
		policy:       evaluator,
		logger:       logger,
	}
}

// resolveClientRef parses a "First Last" client reference. Client names
// contain no whitespace, so the reference splits on its single space.
func (s *ContractService) resolveClientRef(ctx context.Context, ref string) (*domain.Client, error) {
	first, last, ok := strings.Cut(ref, " ")
	if !ok || first == "" || last == "" {
		return nil, invalidInput(fmt.Errorf("client reference %q is not a \"First Last\" pair", ref))
	}
	client, err := s.clientRepo.GetByName(ctx, first, last)
	if err != nil {
		return nil, storeErr(err, domain.KindClient, ref)
	}
	return client, nil
}

func (s *ContractService) Create(ctx context.Context, req *domain.CreateContractRequest) (*domain.ContractDTO, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}

	client, err := s.resolveClientRef(ctx, req.Client)
	if err != nil {
		return nil, err
	}
	salesContact, err := resolveContact(ctx, s.userRepo, req.SalesContact, domain.RoleSales)
	if err != nil {
		return nil, err
	}

	// Eligibility follows the client's sales contact, not the contact
	// named in the payload.
	target := &policy.Target{Ownership: policy.Ownership{ClientSales: client.SalesContactID}}
	if v := s.policy.Decide(p, policy.OperationCreate, domain.KindContract, target, &salesContact.ID); !v.Allow {
		return nil, denied(v)
	}

	title, err := validation.NormalizeTitle("title", req.Title)
	if err != nil {
		return nil, invalidInput(err)
	}
	if err := validation.ValidateContractPayment(req.Amount, req.PaymentDue); err != nil {
		return nil, invalidInput(err)
	}

	contract := &domain.Contract{
		Title:          title,
		Signed:         req.Signed,
		Amount:         req.Amount,
		PaymentDue:     req.PaymentDue,
		SalesContactID: &salesContact.ID,
		SalesContact:   salesContact,
		ClientID:       client.ID,
		Client:         client,
	}

	if err := s.contractRepo.Create(ctx, contract); err != nil {
		return nil, storeErr(fmt.Errorf("failed to create contract: %w", err), domain.KindContract, title)
	}

	s.logger.Info("contract created",
		zap.String("title", contract.Title),
		zap.String("client", client.FullName()))

	dto := mapper.ToContractDTO(contract)
	return &dto, nil
}

func (s *ContractService) GetByTitle(ctx context.Context, title string) (*domain.ContractDTO, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if v := s.policy.Decide(p, policy.OperationRead, domain.KindContract, nil, nil); !v.Allow {
		return nil, denied(v)
	}

	contract, err := s.contractRepo.GetByTitle(ctx, title)
	if err != nil {
		return nil, storeErr(err, domain.KindContract, title)
	}

	dto := mapper.ToContractDTO(contract)
	return &dto, nil
}

func (s *ContractService) List(ctx context.Context) ([]domain.ContractDTO, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if v := s.policy.Decide(p, policy.OperationRead, domain.KindContract, nil, nil); !v.Allow {
		return nil, denied(v)
	}

	contracts, err := s.contractRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}

	dtos := make([]domain.ContractDTO, 0, len(contracts))
	for i := range contracts {
		dtos = append(dtos, mapper.ToContractDTO(&contracts[i]))
	}
	return dtos, nil
}

// ListMine returns the contracts the principal is responsible for, following
// the client's sales contact. Managers get the full list; support owns no
// contracts.
func (s *ContractService) ListMine(ctx context.Context) ([]domain.ContractDTO, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if v := s.policy.Decide(p, policy.OperationRead, domain.KindContract, nil, nil); !v.Allow {
		return nil, denied(v)
	}

	var contracts []domain.Contract
	switch p.Role {
	case domain.RoleManager:
		contracts, err = s.contractRepo.List(ctx)
	case domain.RoleSales:
		contracts, err = s.contractRepo.ListByClientSalesContact(ctx, p.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}

	dtos := make([]domain.ContractDTO, 0, len(contracts))
	for i := range contracts {
		dtos = append(dtos, mapper.ToContractDTO(&contracts[i]))
	}
	return dtos, nil
}

func (s *ContractService) Update(ctx context.Context, title string, req *domain.UpdateContractRequest) (*domain.ContractDTO, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}

	contract, err := s.contractRepo.GetByTitle(ctx, title)
	if err != nil {
		return nil, storeErr(err, domain.KindContract, title)
	}

	target := &policy.Target{Ownership: policy.ForContract(contract)}
	if v := s.policy.Decide(p, policy.OperationUpdate, domain.KindContract, target, nil); !v.Allow {
		return nil, denied(v)
	}

	if req.Signed != nil {
		contract.Signed = *req.Signed
	}
	if req.Amount != nil {
		contract.Amount = *req.Amount
	}
	if req.PaymentDue != nil {
		contract.PaymentDue = *req.PaymentDue
	}
	// The payment invariant holds over the effective values, whichever
	// side of the pair the request touched.
	if err := validation.ValidateContractPayment(contract.Amount, contract.PaymentDue); err != nil {
		return nil, invalidInput(err)
	}
	if req.SalesContact != "" {
		salesContact, err := resolveContact(ctx, s.userRepo, req.SalesContact, domain.RoleSales)
		if err != nil {
			return nil, err
		}
		contract.SalesContactID = &salesContact.ID
		contract.SalesContact = salesContact
	}

	if err := s.contractRepo.Update(ctx, contract); err != nil {
		return nil, storeErr(fmt.Errorf("failed to update contract: %w", err), domain.KindContract, title)
	}

	dto := mapper.ToContractDTO(contract)
	return &dto, nil
}

func (s *ContractService) Delete(ctx context.Context, title string) error {
	p, err := principalFrom(ctx)
	if err != nil {
		return err
	}

	contract, err := s.contractRepo.GetByTitle(ctx, title)
	if err != nil {
		return storeErr(err, domain.KindContract, title)
	}

	target := &policy.Target{Ownership: policy.ForContract(contract)}
	if v := s.policy.Decide(p, policy.OperationDelete, domain.KindContract, target, nil); !v.Allow {
		return denied(v)
	}

	if err := s.contractRepo.Delete(ctx, contract.ID); err != nil {
		return fmt.Errorf("failed to delete contract: %w", err)
	}

	s.logger.Info("contract deleted", zap.String("title", title))
	return nil
}
