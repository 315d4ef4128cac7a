package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/epic-events/crm-api/internal/domain"
	"github.com/epic-events/crm-api/internal/repository"
	"github.com/epic-events/crm-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestContractGetByTitlePreloadsOwnershipChain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewContractRepository(db)

	salesman := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)
	client := testutil.CreateTestClient(t, db, "Ada", "Lovelace", salesman)
	testutil.CreateTestContract(t, db, "Gala_2026", client, salesman)

	contract, err := repo.GetByTitle(context.Background(), "Gala_2026")
	require.NoError(t, err)
	require.NotNil(t, contract.Client)
	require.NotNil(t, contract.Client.SalesContact)
	assert.Equal(t, "jdoe", contract.Client.SalesContact.Username)
}

func TestContractGetByTitleNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewContractRepository(db)

	_, err := repo.GetByTitle(context.Background(), "No_Such_Contract")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserDeleteClearsContactReferences(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewUserRepository(db)

	salesman := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)
	helpdesk := testutil.CreateTestUser(t, db, "helpdesk", domain.RoleSupport)
	client := testutil.CreateTestClient(t, db, "Ada", "Lovelace", salesman)
	contract := testutil.CreateTestContract(t, db, "Gala_2026", client, salesman)
	event := testutil.CreateTestEvent(t, db, "Gala_Night", contract, time.Now().Add(24*time.Hour), helpdesk)

	require.NoError(t, repo.Delete(context.Background(), salesman.ID))
	require.NoError(t, repo.Delete(context.Background(), helpdesk.ID))

	// Entities survive with their contact references nulled out
	var reloadedClient domain.Client
	require.NoError(t, db.First(&reloadedClient, "id = ?", client.ID).Error)
	assert.Nil(t, reloadedClient.SalesContactID)

	var reloadedContract domain.Contract
	require.NoError(t, db.First(&reloadedContract, "id = ?", contract.ID).Error)
	assert.Nil(t, reloadedContract.SalesContactID)

	var reloadedEvent domain.Event
	require.NoError(t, db.First(&reloadedEvent, "id = ?", event.ID).Error)
	assert.Nil(t, reloadedEvent.SupportContactID)
}

// A client field edit carries the pre-image loaded at the start of the
// request. If an event save derives a new lifecycle stage in between, the
// stale struct must not write the old stage back.
func TestClientUpdateDoesNotRegressDerivedStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewClientRepository(db)

	salesman := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)
	client := testutil.CreateTestClient(t, db, "Ada", "Lovelace", salesman)

	// Pre-image read while the client is still potential
	stale, err := repo.GetByName(context.Background(), "Ada", "Lovelace")
	require.NoError(t, err)
	require.Equal(t, domain.ClientStatusPotential, stale.Status)

	// A concurrent event save moves the client to past_event
	require.NoError(t, db.Model(&domain.Client{}).
		Where("id = ?", client.ID).
		Update("status", domain.ClientStatusPastEvent).Error)

	// The stale struct carries a legitimate field edit
	stale.Phone = "+33123456789"
	require.NoError(t, repo.Update(context.Background(), stale))

	var reloaded domain.Client
	require.NoError(t, db.First(&reloaded, "id = ?", client.ID).Error)
	assert.Equal(t, domain.ClientStatusPastEvent, reloaded.Status)
	assert.Equal(t, "+33123456789", reloaded.Phone)
}

func TestClientDeleteRemovesContractsAndEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewClientRepository(db)

	salesman := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)
	client := testutil.CreateTestClient(t, db, "Ada", "Lovelace", salesman)
	contract := testutil.CreateTestContract(t, db, "Gala_2026", client, salesman)
	testutil.CreateTestEvent(t, db, "Gala_Night", contract, time.Now().Add(24*time.Hour), nil)

	// An unrelated client is untouched by the cascade
	otherClient := testutil.CreateTestClient(t, db, "Grace", "Hopper", salesman)
	otherContract := testutil.CreateTestContract(t, db, "Keynote_2026", otherClient, salesman)
	testutil.CreateTestEvent(t, db, "Keynote_Night", otherContract, time.Now().Add(24*time.Hour), nil)

	require.NoError(t, repo.Delete(context.Background(), client.ID))

	var contracts, events int64
	require.NoError(t, db.Model(&domain.Contract{}).Where("client_id = ?", client.ID).Count(&contracts).Error)
	require.NoError(t, db.Model(&domain.Event{}).Where("contract_id = ?", contract.ID).Count(&events).Error)
	assert.Zero(t, contracts)
	assert.Zero(t, events)

	var survivors int64
	require.NoError(t, db.Model(&domain.Event{}).Where("contract_id = ?", otherContract.ID).Count(&survivors).Error)
	assert.EqualValues(t, 1, survivors)
}

func TestEventListPendingOccurrence(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewEventRepository(db)

	salesman := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)
	client := testutil.CreateTestClient(t, db, "Ada", "Lovelace", salesman)
	contract := testutil.CreateTestContract(t, db, "Gala_2026", client, salesman)

	now := time.Now()
	stale := testutil.CreateTestEvent(t, db, "Stale", contract, now.Add(-time.Hour), nil)
	require.NoError(t, db.Model(&domain.Event{}).Where("id = ?", stale.ID).Update("status", false).Error)
	testutil.CreateTestEvent(t, db, "Upcoming", contract, now.Add(time.Hour), nil)
	testutil.CreateTestEvent(t, db, "Already_Flagged", contract, now.Add(-2*time.Hour), nil)

	pending, err := repo.ListPendingOccurrence(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Stale", pending[0].Title)
	require.NotNil(t, pending[0].Contract, "contract must be preloaded for the status cascade")
}

func TestDuplicateKeyTranslation(t *testing.T) {
	db := testutil.SetupTestDB(t)

	salesman := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)
	testutil.CreateTestClient(t, db, "Ada", "Lovelace", salesman)

	dup := &domain.Client{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "dup@example.com",
		Status:    domain.ClientStatusPotential,
	}
	err := db.Create(dup).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
