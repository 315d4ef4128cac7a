package service

import (
	"context"
	"fmt"

	"github.com/epic-events/crm-api/internal/domain"
	"github.com/epic-events/crm-api/internal/mapper"
	"github.com/epic-events/crm-api/internal/policy"
	"github.com/epic-events/crm-api/internal/repository"
	"github.com/epic-events/crm-api/internal/status"
	"github.com/epic-events/crm-api/internal/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EventService orchestrates event writes. Saves run in a transaction
// together with the client status derivation so the cascade is atomic with
// the triggering save; the service therefore holds the database handle in
// addition to the repositories.
type EventService struct {
	db           *gorm.DB
	eventRepo    *repository.EventRepository
	contractRepo *repository.ContractRepository
	userRepo     *repository.UserRepository
	policy       *policy.Evaluator
	deriver      *status.Deriver
	logger       *zap.Logger
}

func NewEventService(
	db *gorm.DB,
	eventRepo *repository.EventRepository,
	contractRepo *repository.ContractRepository,
	userRepo *repository.UserRepository,
	evaluator *policy.Evaluator,
	deriver *status.Deriver,
	logger *zap.Logger,
) *EventService {
	return &EventService{
		db:           db,
		eventRepo:    eventRepo,
		contractRepo: contractRepo,
		userRepo:     userRepo,
		policy:       evaluator,
		deriver:      deriver,
		logger:       logger,
	}
}

func (s *EventService) Create(ctx context.Context, req *domain.CreateEventRequest) (*domain.EventDTO, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}

	contract, err := s.contractRepo.GetByTitle(ctx, req.Contract)
	if err != nil {
		return nil, storeErr(err, domain.KindContract, req.Contract)
	}

	target := &policy.Target{Ownership: policy.Ownership{Sales: contract.SalesContactID}}
	if v := s.policy.Decide(p, policy.OperationCreate, domain.KindEvent, target, nil); !v.Allow {
		return nil, denied(v)
	}

	title, err := validation.NormalizeTitle("title", req.Title)
	if err != nil {
		return nil, invalidInput(err)
	}

	event := &domain.Event{
		Title:      title,
		Attendees:  req.Attendees,
		EventDate:  req.EventDate,
		Notes:      req.Notes,
		ContractID: contract.ID,
		Contract:   contract,
	}
	if req.SupportContact != "" {
		supportContact, err := resolveContact(ctx, s.userRepo, req.SupportContact, domain.RoleSupport)
		if err != nil {
			return nil, err
		}
		event.SupportContactID = &supportContact.ID
		event.SupportContact = supportContact
	}
	s.deriver.ApplyEventStatus(event)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Contract", "SupportContact").Create(event).Error; err != nil {
			return err
		}
		return s.deriver.OnEntitySaved(tx, domain.KindEvent, event)
	})
	if err != nil {
		return nil, storeErr(fmt.Errorf("failed to create event: %w", err), domain.KindEvent, title)
	}

	s.logger.Info("event created",
		zap.String("title", event.Title),
		zap.String("contract", contract.Title),
		zap.Bool("occurred", event.Status))

	dto := mapper.ToEventDTO(event)
	return &dto, nil
}

func (s *EventService) GetByTitle(ctx context.Context, title string) (*domain.EventDTO, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if v := s.policy.Decide(p, policy.OperationRead, domain.KindEvent, nil, nil); !v.Allow {
		return nil, denied(v)
	}

	event, err := s.eventRepo.GetByTitle(ctx, title)
	if err != nil {
		return nil, storeErr(err, domain.KindEvent, title)
	}

	dto := mapper.ToEventDTO(event)
	return &dto, nil
}

func (s *EventService) List(ctx context.Context) ([]domain.EventDTO, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if v := s.policy.Decide(p, policy.OperationRead, domain.KindEvent, nil, nil); !v.Allow {
		return nil, denied(v)
	}

	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	dtos := make([]domain.EventDTO, 0, len(events))
	for i := range events {
		dtos = append(dtos, mapper.ToEventDTO(&events[i]))
	}
	return dtos, nil
}

// ListMine returns the events the principal works on: a support contact's
// assignments, or the events on a salesman's contracts. Managers get the full
// list.
func (s *EventService) ListMine(ctx context.Context) ([]domain.EventDTO, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if v := s.policy.Decide(p, policy.OperationRead, domain.KindEvent, nil, nil); !v.Allow {
		return nil, denied(v)
	}

	var events []domain.Event
	switch p.Role {
	case domain.RoleManager:
		events, err = s.eventRepo.List(ctx)
	case domain.RoleSales:
		events, err = s.eventRepo.ListByContractSalesContact(ctx, p.ID)
	case domain.RoleSupport:
		events, err = s.eventRepo.ListBySupportContact(ctx, p.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	dtos := make([]domain.EventDTO, 0, len(events))
	for i := range events {
		dtos = append(dtos, mapper.ToEventDTO(&events[i]))
	}
	return dtos, nil
}

func (s *EventService) Update(ctx context.Context, title string, req *domain.UpdateEventRequest) (*domain.EventDTO, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByTitle(ctx, title)
	if err != nil {
		return nil, storeErr(err, domain.KindEvent, title)
	}

	// Occurrence is judged against the wall clock at decision time, not
	// the stored flag, so support loses write access the moment the date
	// passes even if no save has refreshed the flag yet.
	target := &policy.Target{
		Ownership:     policy.ForEvent(event),
		EventOccurred: s.deriver.EventOccurred(event.EventDate),
	}
	if v := s.policy.Decide(p, policy.OperationUpdate, domain.KindEvent, target, nil); !v.Allow {
		return nil, denied(v)
	}

	if req.Attendees != nil {
		event.Attendees = *req.Attendees
	}
	if req.EventDate != nil {
		event.EventDate = *req.EventDate
	}
	if req.Notes != nil {
		event.Notes = *req.Notes
	}
	if req.SupportContact != "" {
		supportContact, err := resolveContact(ctx, s.userRepo, req.SupportContact, domain.RoleSupport)
		if err != nil {
			return nil, err
		}
		event.SupportContactID = &supportContact.ID
		event.SupportContact = supportContact
	}
	s.deriver.ApplyEventStatus(event)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Contract", "SupportContact").Save(event).Error; err != nil {
			return err
		}
		return s.deriver.OnEntitySaved(tx, domain.KindEvent, event)
	})
	if err != nil {
		return nil, storeErr(fmt.Errorf("failed to update event: %w", err), domain.KindEvent, title)
	}

	dto := mapper.ToEventDTO(event)
	return &dto, nil
}

func (s *EventService) Delete(ctx context.Context, title string) error {
	p, err := principalFrom(ctx)
	if err != nil {
		return err
	}

	event, err := s.eventRepo.GetByTitle(ctx, title)
	if err != nil {
		return storeErr(err, domain.KindEvent, title)
	}

	target := &policy.Target{
		Ownership:     policy.ForEvent(event),
		EventOccurred: s.deriver.EventOccurred(event.EventDate),
	}
	if v := s.policy.Decide(p, policy.OperationDelete, domain.KindEvent, target, nil); !v.Allow {
		return denied(v)
	}

	if err := s.eventRepo.Delete(ctx, event.ID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	s.logger.Info("event deleted", zap.String("title", title))
	return nil
}

// SweepOccurred marks events whose date has passed since their last save
// and cascades each client's status, one transaction per event. Run
// periodically by the scheduler; no principal is involved.
func (s *EventService) SweepOccurred(ctx context.Context) (int, error) {
	pending, err := s.eventRepo.ListPendingOccurrence(ctx, s.deriver.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to list pending events: %w", err)
	}

	swept := 0
	for i := range pending {
		event := &pending[i]
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&domain.Event{}).Where("id = ?", event.ID).
				Update("status", true).Error; err != nil {
				return err
			}
			event.Status = true
			return s.deriver.OnEntitySaved(tx, domain.KindEvent, event)
		})
		if err != nil {
			s.logger.Error("failed to sweep event",
				zap.String("title", event.Title), zap.Error(err))
			continue
		}
		swept++
	}

	if swept > 0 {
		s.logger.Info("occurred events swept", zap.Int("count", swept))
	}
	return swept, nil
}
