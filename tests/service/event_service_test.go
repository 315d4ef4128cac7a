package service_test

import (
	"testing"
	"time"

	"github.com/epic-events/crm-api/internal/domain"
	"github.com/epic-events/crm-api/internal/policy"
	"github.com/epic-events/crm-api/internal/repository"
	"github.com/epic-events/crm-api/internal/service"
	"github.com/epic-events/crm-api/internal/status"
	"github.com/epic-events/crm-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createEventService(db *gorm.DB) *service.EventService {
	return service.NewEventService(
		db,
		repository.NewEventRepository(db),
		repository.NewContractRepository(db),
		repository.NewUserRepository(db),
		policy.NewEvaluator(),
		status.NewDeriver(nil, zap.NewNop()),
		zap.NewNop(),
	)
}

func TestEventCreateDerivesStatusAndCascades(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createEventService(db)

	salesman := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)
	client := testutil.CreateTestClient(t, db, "Ada", "Lovelace", salesman)
	testutil.CreateTestContract(t, db, "Gala_2026", client, salesman)

	dto, err := svc.Create(testutil.AuthContext(salesman), &domain.CreateEventRequest{
		Title:     "Gala Night",
		Attendees: 100,
		EventDate: time.Now().Add(48 * time.Hour),
		Contract:  "Gala_2026",
	})
	require.NoError(t, err)
	assert.Equal(t, "Gala_Night", dto.Title)
	assert.False(t, dto.Status)

	// The upcoming event promotes the client out of potential
	var reloaded domain.Client
	require.NoError(t, db.First(&reloaded, "id = ?", client.ID).Error)
	assert.Equal(t, domain.ClientStatusUpcomingEvent, reloaded.Status)
}

func TestEventCreatePastDatePromotesClientToPast(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createEventService(db)

	salesman := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)
	client := testutil.CreateTestClient(t, db, "Ada", "Lovelace", salesman)
	testutil.CreateTestContract(t, db, "Gala_2026", client, salesman)

	dto, err := svc.Create(testutil.AuthContext(salesman), &domain.CreateEventRequest{
		Title:     "Retro Night",
		Attendees: 20,
		EventDate: time.Now().Add(-48 * time.Hour),
		Contract:  "Gala_2026",
	})
	require.NoError(t, err)
	assert.True(t, dto.Status)

	var reloaded domain.Client
	require.NoError(t, db.First(&reloaded, "id = ?", client.ID).Error)
	assert.Equal(t, domain.ClientStatusPastEvent, reloaded.Status)
}

func TestEventCreateRequiresOwnContract(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createEventService(db)

	owner := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)
	other := testutil.CreateTestUser(t, db, "asmith", domain.RoleSales)
	client := testutil.CreateTestClient(t, db, "Ada", "Lovelace", owner)
	testutil.CreateTestContract(t, db, "Gala_2026", client, owner)

	_, err := svc.Create(testutil.AuthContext(other), &domain.CreateEventRequest{
		Title:     "Gala Night",
		EventDate: timeNowPlusDay(),
		Contract:  "Gala_2026",
	})
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestEventCreateRejectsNonSupportAssignee(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createEventService(db)

	salesman := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)
	client := testutil.CreateTestClient(t, db, "Ada", "Lovelace", salesman)
	testutil.CreateTestContract(t, db, "Gala_2026", client, salesman)

	_, err := svc.Create(testutil.AuthContext(salesman), &domain.CreateEventRequest{
		Title:          "Gala Night",
		EventDate:      timeNowPlusDay(),
		Contract:       "Gala_2026",
		SupportContact: "jdoe",
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestSupportUpdatesOwnUpcomingEventOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createEventService(db)

	salesman := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)
	helpdesk := testutil.CreateTestUser(t, db, "helpdesk", domain.RoleSupport)
	stranger := testutil.CreateTestUser(t, db, "other", domain.RoleSupport)
	client := testutil.CreateTestClient(t, db, "Ada", "Lovelace", salesman)
	contract := testutil.CreateTestContract(t, db, "Gala_2026", client, salesman)
	testutil.CreateTestEvent(t, db, "Gala_Night", contract, timeNowPlusDay(), helpdesk)

	notes := "catering confirmed"

	// Assigned support contact may edit while the event is upcoming
	dto, err := svc.Update(testutil.AuthContext(helpdesk), "Gala_Night", &domain.UpdateEventRequest{
		Notes: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, notes, dto.Notes)

	// Unassigned support may not
	_, err = svc.Update(testutil.AuthContext(stranger), "Gala_Night", &domain.UpdateEventRequest{
		Notes: &notes,
	})
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestSupportLosesWriteAccessOnceEventOccurred(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createEventService(db)

	salesman := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)
	helpdesk := testutil.CreateTestUser(t, db, "helpdesk", domain.RoleSupport)
	client := testutil.CreateTestClient(t, db, "Ada", "Lovelace", salesman)
	contract := testutil.CreateTestContract(t, db, "Gala_2026", client, salesman)

	// Stored flag says upcoming, but the date has passed: the decision
	// follows the clock, not the stale flag.
	event := testutil.CreateTestEvent(t, db, "Gala_Night", contract, time.Now().Add(-time.Hour), helpdesk)
	require.NoError(t, db.Model(&domain.Event{}).Where("id = ?", event.ID).Update("status", false).Error)

	notes := "too late"
	_, err := svc.Update(testutil.AuthContext(helpdesk), "Gala_Night", &domain.UpdateEventRequest{
		Notes: &notes,
	})
	require.ErrorIs(t, err, service.ErrPermissionDenied)

	// The owning salesman still may
	_, err = svc.Update(testutil.AuthContext(salesman), "Gala_Night", &domain.UpdateEventRequest{
		Notes: &notes,
	})
	assert.NoError(t, err)
}

func TestSupportCannotDeleteEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createEventService(db)

	salesman := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)
	helpdesk := testutil.CreateTestUser(t, db, "helpdesk", domain.RoleSupport)
	client := testutil.CreateTestClient(t, db, "Ada", "Lovelace", salesman)
	contract := testutil.CreateTestContract(t, db, "Gala_2026", client, salesman)
	testutil.CreateTestEvent(t, db, "Gala_Night", contract, timeNowPlusDay(), helpdesk)

	err := svc.Delete(testutil.AuthContext(helpdesk), "Gala_Night")
	require.ErrorIs(t, err, service.ErrPermissionDenied)

	require.NoError(t, svc.Delete(testutil.AuthContext(salesman), "Gala_Night"))
}

func TestSweepOccurredRefreshesStaleEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createEventService(db)

	salesman := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)
	client := testutil.CreateTestClient(t, db, "Ada", "Lovelace", salesman)
	contract := testutil.CreateTestContract(t, db, "Gala_2026", client, salesman)

	// An event whose date slipped by without any save
	stale := testutil.CreateTestEvent(t, db, "Gala_Night", contract, time.Now().Add(-time.Hour), nil)
	require.NoError(t, db.Model(&domain.Event{}).Where("id = ?", stale.ID).Update("status", false).Error)

	// A genuinely upcoming event stays untouched
	testutil.CreateTestEvent(t, db, "Next_Year", contract, timeNowPlusDay(), nil)

	swept, err := svc.SweepOccurred(testutil.AuthContext(salesman))
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	var reloaded domain.Event
	require.NoError(t, db.First(&reloaded, "id = ?", stale.ID).Error)
	assert.True(t, reloaded.Status)

	var reloadedClient domain.Client
	require.NoError(t, db.First(&reloadedClient, "id = ?", client.ID).Error)
	assert.Equal(t, domain.ClientStatusPastEvent, reloadedClient.Status)

	// Second sweep has nothing left to do
	swept, err = svc.SweepOccurred(testutil.AuthContext(salesman))
	require.NoError(t, err)
	assert.Zero(t, swept)
}

func TestEventListMinePerRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createEventService(db)

	salesman := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)
	other := testutil.CreateTestUser(t, db, "asmith", domain.RoleSales)
	helpdesk := testutil.CreateTestUser(t, db, "helpdesk", domain.RoleSupport)
	client := testutil.CreateTestClient(t, db, "Ada", "Lovelace", salesman)
	otherClient := testutil.CreateTestClient(t, db, "Grace", "Hopper", other)
	contract := testutil.CreateTestContract(t, db, "Gala_2026", client, salesman)
	otherContract := testutil.CreateTestContract(t, db, "Keynote_2026", otherClient, other)
	testutil.CreateTestEvent(t, db, "Gala_Night", contract, timeNowPlusDay(), helpdesk)
	testutil.CreateTestEvent(t, db, "Keynote_Night", otherContract, timeNowPlusDay(), nil)

	// The salesman sees the events on their own contracts
	mine, err := svc.ListMine(testutil.AuthContext(salesman))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Gala_Night", mine[0].Title)

	// The support contact sees their assignments
	mine, err = svc.ListMine(testutil.AuthContext(helpdesk))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Gala_Night", mine[0].Title)
}
