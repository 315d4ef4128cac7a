package repository

import (
	"context"

	"github.com/epic-events/crm-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) Create(ctx context.Context, contract *domain.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	var contract domain.Contract
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Client.SalesContact").
		Preload("SalesContact").
		First(&contract, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *ContractRepository) GetByTitle(ctx context.Context, title string) (*domain.Contract, error) {
	var contract domain.Contract
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Client.SalesContact").
		Preload("SalesContact").
		First(&contract, "title = ?", title).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *ContractRepository) List(ctx context.Context) ([]domain.Contract, error) {
	var contracts []domain.Contract
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("SalesContact").
		Order("title").
		Find(&contracts).Error
	return contracts, err
}

// ListByClientSalesContact returns the contracts a salesman is responsible
// for. Responsibility follows the client's sales contact, not the contract's
// own, so a contract whose contact was null-cascaded away still shows up for
// the client's current salesman.
func (r *ContractRepository) ListByClientSalesContact(ctx context.Context, salesContactID uuid.UUID) ([]domain.Contract, error) {
	var contracts []domain.Contract
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("SalesContact").
		Joins("JOIN clients ON clients.id = contracts.client_id").
		Where("clients.sales_contact_id = ?", salesContactID).
		Order("contracts.title").
		Find(&contracts).Error
	return contracts, err
}

func (r *ContractRepository) Update(ctx context.Context, contract *domain.Contract) error {
	return r.db.WithContext(ctx).Save(contract).Error
}

// Delete removes a contract and its events.
func (r *ContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.Event{}, "contract_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Contract{}, "id = ?", id).Error
	})
}
