package repository

import (
	"context"

	"github.com/epic-events/crm-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	var client domain.Client
	err := r.db.WithContext(ctx).
		Preload("SalesContact").
		First(&client, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *ClientRepository) GetByName(ctx context.Context, firstName, lastName string) (*domain.Client, error) {
	var client domain.Client
	err := r.db.WithContext(ctx).
		Preload("SalesContact").
		First(&client, "first_name = ? AND last_name = ?", firstName, lastName).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *ClientRepository) List(ctx context.Context) ([]domain.Client, error) {
	var clients []domain.Client
	err := r.db.WithContext(ctx).
		Preload("SalesContact").
		Order("last_name, first_name").
		Find(&clients).Error
	return clients, err
}

// ListBySalesContact returns the clients owned by the given salesman.
func (r *ClientRepository) ListBySalesContact(ctx context.Context, salesContactID uuid.UUID) ([]domain.Client, error) {
	var clients []domain.Client
	err := r.db.WithContext(ctx).
		Preload("SalesContact").
		Where("sales_contact_id = ?", salesContactID).
		Order("last_name, first_name").
		Find(&clients).Error
	return clients, err
}

// Update persists edited client fields. The derived status column is
// omitted: only the status deriver writes it, and a full-struct save would
// overwrite a stage derived by a concurrent event save with the pre-image
// read earlier in the request.
func (r *ClientRepository) Update(ctx context.Context, client *domain.Client) error {
	return r.db.WithContext(ctx).Omit("status").Save(client).Error
}

// Delete removes a client together with its contracts and their events.
func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contract_id IN (?)",
			tx.Model(&domain.Contract{}).Select("id").Where("client_id = ?", id),
		).Delete(&domain.Event{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.Contract{}, "client_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Client{}, "id = ?", id).Error
	})
}
