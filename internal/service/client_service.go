package service

import (
	"context"
	"fmt"

	"github.com/epic-events/crm-api/internal/domain"
	"github.com/epic-events/crm-api/internal/mapper"
	"github.com/epic-events/crm-api/internal/policy"
	"github.com/epic-events/crm-api/internal/repository"
	"github.com/epic-events/crm-api/internal/validation"
	"go.uber.org/zap"
)

type ClientService struct {
	clientRepo *repository.ClientRepository
	userRepo   *repository.UserRepository
	policy     *policy.Evaluator
	logger     *zap.Logger
}

func NewClientService(
	clientRepo *repository.ClientRepository,
	userRepo *repository.UserRepository,
	evaluator *policy.Evaluator,
	logger *zap.Logger,
) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		userRepo:   userRepo,
		policy:     evaluator,
		logger:     logger,
	}
}

func (s *ClientService) Create(ctx context.Context, req *domain.CreateClientRequest) (*domain.ClientDTO, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}

	salesContact, err := resolveContact(ctx, s.userRepo, req.SalesContact, domain.RoleSales)
	if err != nil {
		return nil, err
	}

	if v := s.policy.Decide(p, policy.OperationCreate, domain.KindClient, nil, &salesContact.ID); !v.Allow {
		return nil, denied(v)
	}

	if err := validation.ValidateClientName("firstName", req.FirstName); err != nil {
		return nil, invalidInput(err)
	}
	if err := validation.ValidateClientName("lastName", req.LastName); err != nil {
		return nil, invalidInput(err)
	}
	if err := validation.ValidatePhone(req.Phone); err != nil {
		return nil, invalidInput(err)
	}

	client := &domain.Client{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Mobile:         req.Mobile,
		CompanyName:    req.CompanyName,
		Status:         domain.ClientStatusPotential,
		SalesContactID: &salesContact.ID,
		SalesContact:   salesContact,
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, storeErr(fmt.Errorf("failed to create client: %w", err), domain.KindClient, client.FullName())
	}

	s.logger.Info("client created",
		zap.String("client", client.FullName()),
		zap.String("sales_contact", salesContact.Username))

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

func (s *ClientService) GetByName(ctx context.Context, firstName, lastName string) (*domain.ClientDTO, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if v := s.policy.Decide(p, policy.OperationRead, domain.KindClient, nil, nil); !v.Allow {
		return nil, denied(v)
	}

	client, err := s.clientRepo.GetByName(ctx, firstName, lastName)
	if err != nil {
		return nil, storeErr(err, domain.KindClient, firstName+" "+lastName)
	}

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

func (s *ClientService) List(ctx context.Context) ([]domain.ClientDTO, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if v := s.policy.Decide(p, policy.OperationRead, domain.KindClient, nil, nil); !v.Allow {
		return nil, denied(v)
	}

	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	dtos := make([]domain.ClientDTO, 0, len(clients))
	for i := range clients {
		dtos = append(dtos, mapper.ToClientDTO(&clients[i]))
	}
	return dtos, nil
}

// ListMine returns the clients the principal is responsible for: a salesman's
// portfolio. Managers get the full list; support owns no clients.
func (s *ClientService) ListMine(ctx context.Context) ([]domain.ClientDTO, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if v := s.policy.Decide(p, policy.OperationRead, domain.KindClient, nil, nil); !v.Allow {
		return nil, denied(v)
	}

	var clients []domain.Client
	switch p.Role {
	case domain.RoleManager:
		clients, err = s.clientRepo.List(ctx)
	case domain.RoleSales:
		clients, err = s.clientRepo.ListBySalesContact(ctx, p.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	dtos := make([]domain.ClientDTO, 0, len(clients))
	for i := range clients {
		dtos = append(dtos, mapper.ToClientDTO(&clients[i]))
	}
	return dtos, nil
}

func (s *ClientService) Update(ctx context.Context, firstName, lastName string, req *domain.UpdateClientRequest) (*domain.ClientDTO, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}

	client, err := s.clientRepo.GetByName(ctx, firstName, lastName)
	if err != nil {
		return nil, storeErr(err, domain.KindClient, firstName+" "+lastName)
	}

	// Eligibility is decided against the stored sales contact, so the
	// current owner may hand the client over but cannot grab one back.
	target := &policy.Target{Ownership: policy.ForClient(client)}
	if v := s.policy.Decide(p, policy.OperationUpdate, domain.KindClient, target, nil); !v.Allow {
		return nil, denied(v)
	}

	if req.Email != "" {
		client.Email = req.Email
	}
	if req.Phone != "" {
		if err := validation.ValidatePhone(req.Phone); err != nil {
			return nil, invalidInput(err)
		}
		client.Phone = req.Phone
	}
	if req.Mobile != "" {
		client.Mobile = req.Mobile
	}
	if req.CompanyName != "" {
		client.CompanyName = req.CompanyName
	}
	if req.SalesContact != "" {
		salesContact, err := resolveContact(ctx, s.userRepo, req.SalesContact, domain.RoleSales)
		if err != nil {
			return nil, err
		}
		client.SalesContactID = &salesContact.ID
		client.SalesContact = salesContact
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, storeErr(fmt.Errorf("failed to update client: %w", err), domain.KindClient, client.FullName())
	}

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

func (s *ClientService) Delete(ctx context.Context, firstName, lastName string) error {
	p, err := principalFrom(ctx)
	if err != nil {
		return err
	}

	client, err := s.clientRepo.GetByName(ctx, firstName, lastName)
	if err != nil {
		return storeErr(err, domain.KindClient, firstName+" "+lastName)
	}

	target := &policy.Target{Ownership: policy.ForClient(client)}
	if v := s.policy.Decide(p, policy.OperationDelete, domain.KindClient, target, nil); !v.Allow {
		return denied(v)
	}

	if err := s.clientRepo.Delete(ctx, client.ID); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	s.logger.Info("client deleted", zap.String("client", client.FullName()))
	return nil
}
