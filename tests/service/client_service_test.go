package service_test

import (
	"testing"

	"github.com/epic-events/crm-api/internal/domain"
	"github.com/epic-events/crm-api/internal/policy"
	"github.com/epic-events/crm-api/internal/repository"
	"github.com/epic-events/crm-api/internal/service"
	"github.com/epic-events/crm-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createClientService(db *gorm.DB) *service.ClientService {
	return service.NewClientService(
		repository.NewClientRepository(db),
		repository.NewUserRepository(db),
		policy.NewEvaluator(),
		zap.NewNop(),
	)
}

func TestClientCreateStartsAsPotential(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createClientService(db)

	salesman := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)

	dto, err := svc.Create(testutil.AuthContext(salesman), &domain.CreateClientRequest{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		SalesContact: "jdoe",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ClientStatusPotential, dto.Status)
	assert.Equal(t, "potential", dto.StatusLabel)
	assert.Equal(t, "jdoe", dto.SalesContact)
}

func TestClientCreateSalesmanMustAssignSelf(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createClientService(db)

	salesman := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)
	testutil.CreateTestUser(t, db, "asmith", domain.RoleSales)
	manager := testutil.CreateTestUser(t, db, "boss", domain.RoleManager)

	req := &domain.CreateClientRequest{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		SalesContact: "asmith",
	}

	_, err := svc.Create(testutil.AuthContext(salesman), req)
	require.ErrorIs(t, err, service.ErrPermissionDenied)

	// Management can assign any salesman
	_, err = svc.Create(testutil.AuthContext(manager), req)
	assert.NoError(t, err)
}

func TestClientCreateRejectsNonSalesContact(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createClientService(db)

	manager := testutil.CreateTestUser(t, db, "boss", domain.RoleManager)
	testutil.CreateTestUser(t, db, "helpdesk", domain.RoleSupport)

	_, err := svc.Create(testutil.AuthContext(manager), &domain.CreateClientRequest{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		SalesContact: "helpdesk",
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestClientCreateRejectsNameWithWhitespace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createClientService(db)

	salesman := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)

	_, err := svc.Create(testutil.AuthContext(salesman), &domain.CreateClientRequest{
		FirstName:    "Jean Paul",
		LastName:     "Sartre",
		Email:        "jp@example.com",
		SalesContact: "jdoe",
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestClientCreateDuplicateNameConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createClientService(db)

	salesman := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)
	testutil.CreateTestClient(t, db, "Ada", "Lovelace", salesman)

	_, err := svc.Create(testutil.AuthContext(salesman), &domain.CreateClientRequest{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "other@example.com",
		SalesContact: "jdoe",
	})
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestClientReadIsUnrestricted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createClientService(db)

	salesman := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)
	helpdesk := testutil.CreateTestUser(t, db, "helpdesk", domain.RoleSupport)
	testutil.CreateTestClient(t, db, "Ada", "Lovelace", salesman)

	dto, err := svc.GetByName(testutil.AuthContext(helpdesk), "Ada", "Lovelace")
	require.NoError(t, err)
	assert.Equal(t, "Ada", dto.FirstName)

	clients, err := svc.List(testutil.AuthContext(helpdesk))
	require.NoError(t, err)
	assert.Len(t, clients, 1)
}

func TestClientUpdateRequiresOwnership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createClientService(db)

	owner := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)
	other := testutil.CreateTestUser(t, db, "asmith", domain.RoleSales)
	helpdesk := testutil.CreateTestUser(t, db, "helpdesk", domain.RoleSupport)
	testutil.CreateTestClient(t, db, "Ada", "Lovelace", owner)

	req := &domain.UpdateClientRequest{CompanyName: "Analytical Engines Ltd"}

	_, err := svc.Update(testutil.AuthContext(other), "Ada", "Lovelace", req)
	require.ErrorIs(t, err, service.ErrPermissionDenied)

	_, err = svc.Update(testutil.AuthContext(helpdesk), "Ada", "Lovelace", req)
	require.ErrorIs(t, err, service.ErrPermissionDenied)

	dto, err := svc.Update(testutil.AuthContext(owner), "Ada", "Lovelace", req)
	require.NoError(t, err)
	assert.Equal(t, "Analytical Engines Ltd", dto.CompanyName)
}

func TestClientHandoverUsesPreImageOwnership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createClientService(db)

	owner := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)
	successor := testutil.CreateTestUser(t, db, "asmith", domain.RoleSales)
	testutil.CreateTestClient(t, db, "Ada", "Lovelace", owner)

	// The current owner may hand the client over
	dto, err := svc.Update(testutil.AuthContext(owner), "Ada", "Lovelace", &domain.UpdateClientRequest{
		SalesContact: "asmith",
	})
	require.NoError(t, err)
	assert.Equal(t, "asmith", dto.SalesContact)

	// After the handover the previous owner has no say anymore
	_, err = svc.Update(testutil.AuthContext(owner), "Ada", "Lovelace", &domain.UpdateClientRequest{
		SalesContact: "jdoe",
	})
	require.ErrorIs(t, err, service.ErrPermissionDenied)

	// The successor does
	_, err = svc.Update(testutil.AuthContext(successor), "Ada", "Lovelace", &domain.UpdateClientRequest{
		CompanyName: "Analytical Engines Ltd",
	})
	assert.NoError(t, err)
}

func TestClientDeleteCascades(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createClientService(db)

	owner := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)
	client := testutil.CreateTestClient(t, db, "Ada", "Lovelace", owner)
	contract := testutil.CreateTestContract(t, db, "Gala_2026", client, owner)
	testutil.CreateTestEvent(t, db, "Gala_Night", contract, timeNowPlusDay(), nil)

	require.NoError(t, svc.Delete(testutil.AuthContext(owner), "Ada", "Lovelace"))

	var contracts, events int64
	require.NoError(t, db.Model(&domain.Contract{}).Count(&contracts).Error)
	require.NoError(t, db.Model(&domain.Event{}).Count(&events).Error)
	assert.Zero(t, contracts)
	assert.Zero(t, events)
}

func TestClientListMineFiltersByOwnership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createClientService(db)

	owner := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)
	other := testutil.CreateTestUser(t, db, "asmith", domain.RoleSales)
	helpdesk := testutil.CreateTestUser(t, db, "helpdesk", domain.RoleSupport)
	boss := testutil.CreateTestUser(t, db, "boss", domain.RoleManager)
	testutil.CreateTestClient(t, db, "Ada", "Lovelace", owner)
	testutil.CreateTestClient(t, db, "Grace", "Hopper", other)

	mine, err := svc.ListMine(testutil.AuthContext(owner))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Ada", mine[0].FirstName)

	// Support owns no clients
	mine, err = svc.ListMine(testutil.AuthContext(helpdesk))
	require.NoError(t, err)
	assert.Empty(t, mine)

	// Management sees everything
	mine, err = svc.ListMine(testutil.AuthContext(boss))
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}
