package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/epic-events/crm-api/internal/auth"
	"github.com/epic-events/crm-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens an isolated in-memory SQLite database with the full
// schema migrated. Each call returns a fresh database, so tests do not need
// cleanup between runs.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=private"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		TranslateError: true,
	})
	require.NoError(t, err, "Failed to open in-memory test database")

	err = db.AutoMigrate(
		&domain.User{},
		&domain.Client{},
		&domain.Contract{},
		&domain.Event{},
	)
	require.NoError(t, err, "Failed to migrate test schema")

	return db
}

// CreateTestUser inserts a user with a throwaway password hash.
func CreateTestUser(t *testing.T, db *gorm.DB, username string, role domain.Role) *domain.User {
	t.Helper()

	user := &domain.User{
		Username:     username,
		PasswordHash: "$2a$04$testhashtesthashtesthashtesthashtesthashtesthashtest",
		FirstName:    "Test",
		LastName:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestClient inserts a client owned by the given sales contact.
// salesContact may be nil.
func CreateTestClient(t *testing.T, db *gorm.DB, firstName, lastName string, salesContact *domain.User) *domain.Client {
	t.Helper()

	client := &domain.Client{
		FirstName: firstName,
		LastName:  lastName,
		Email:     fmt.Sprintf("%s.%s@example.com", firstName, lastName),
		Status:    domain.ClientStatusPotential,
	}
	if salesContact != nil {
		client.SalesContactID = &salesContact.ID
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

// CreateTestContract inserts a contract for the client, owned by the given
// sales contact. salesContact may be nil.
func CreateTestContract(t *testing.T, db *gorm.DB, title string, client *domain.Client, salesContact *domain.User) *domain.Contract {
	t.Helper()

	contract := &domain.Contract{
		Title:      title,
		Amount:     1000,
		PaymentDue: 500,
		ClientID:   client.ID,
	}
	if salesContact != nil {
		contract.SalesContactID = &salesContact.ID
	}
	require.NoError(t, db.Create(contract).Error)
	return contract
}

// CreateTestEvent inserts an event on the contract with the given date.
// supportContact may be nil. The stored status flag mirrors whether the
// date lies in the past.
func CreateTestEvent(t *testing.T, db *gorm.DB, title string, contract *domain.Contract, eventDate time.Time, supportContact *domain.User) *domain.Event {
	t.Helper()

	event := &domain.Event{
		Title:      title,
		Status:     eventDate.Before(time.Now()),
		Attendees:  10,
		EventDate:  eventDate,
		ContractID: contract.ID,
	}
	if supportContact != nil {
		event.SupportContactID = &supportContact.ID
	}
	require.NoError(t, db.Create(event).Error)
	return event
}

// AuthContext returns a context carrying the user as the authenticated
// principal, the way the auth middleware would.
func AuthContext(user *domain.User) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
}
