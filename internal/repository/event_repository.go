package repository

import (
	"context"
	"time"

	"github.com/epic-events/crm-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	var event domain.Event
	err := r.db.WithContext(ctx).
		Preload("Contract").
		Preload("Contract.Client").
		Preload("SupportContact").
		First(&event, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) GetByTitle(ctx context.Context, title string) (*domain.Event, error) {
	var event domain.Event
	err := r.db.WithContext(ctx).
		Preload("Contract").
		Preload("Contract.Client").
		Preload("SupportContact").
		First(&event, "title = ?", title).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) List(ctx context.Context) ([]domain.Event, error) {
	var events []domain.Event
	err := r.db.WithContext(ctx).
		Preload("Contract").
		Preload("SupportContact").
		Order("event_date").
		Find(&events).Error
	return events, err
}

// ListBySupportContact returns the events assigned to the given support
// contact.
func (r *EventRepository) ListBySupportContact(ctx context.Context, supportContactID uuid.UUID) ([]domain.Event, error) {
	var events []domain.Event
	err := r.db.WithContext(ctx).
		Preload("Contract").
		Preload("SupportContact").
		Where("support_contact_id = ?", supportContactID).
		Order("event_date").
		Find(&events).Error
	return events, err
}

// ListByContractSalesContact returns the events on contracts owned by the
// given salesman.
func (r *EventRepository) ListByContractSalesContact(ctx context.Context, salesContactID uuid.UUID) ([]domain.Event, error) {
	var events []domain.Event
	err := r.db.WithContext(ctx).
		Preload("Contract").
		Preload("SupportContact").
		Joins("JOIN contracts ON contracts.id = events.contract_id").
		Where("contracts.sales_contact_id = ?", salesContactID).
		Order("events.event_date").
		Find(&events).Error
	return events, err
}

// ListPendingOccurrence returns events still marked upcoming whose date
// has passed. Used by the sweep job to catch events nobody saved since
// their date went by.
func (r *EventRepository) ListPendingOccurrence(ctx context.Context, now time.Time) ([]domain.Event, error) {
	var events []domain.Event
	err := r.db.WithContext(ctx).
		Preload("Contract").
		Where("status = ? AND event_date < ?", false, now).
		Find(&events).Error
	return events, err
}

func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Event{}, "id = ?", id).Error
}
