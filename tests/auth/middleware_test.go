package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/epic-events/crm-api/internal/auth"
	"github.com/epic-events/crm-api/internal/domain"
	"github.com/epic-events/crm-api/internal/repository"
	"github.com/epic-events/crm-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createTestMiddleware(db *gorm.DB, ttl time.Duration) (*auth.Middleware, *auth.TokenIssuer) {
	issuer := auth.NewTokenIssuer(testSecret, ttl, "crm-api")
	return auth.NewMiddleware(issuer, repository.NewUserRepository(db), zap.NewNop()), issuer
}

func TestMiddlewareAuthenticateValidToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	middleware, issuer := createTestMiddleware(db, time.Hour)
	user := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)

	token, _, err := issuer.Issue(user)
	require.NoError(t, err)

	handlerCalled := false
	var capturedUserCtx *auth.UserContext

	handler := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		capturedUserCtx, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/client", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.True(t, handlerCalled)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, capturedUserCtx)
	assert.Equal(t, user.ID, capturedUserCtx.UserID)
	assert.Equal(t, "jdoe", capturedUserCtx.Username)
	assert.Equal(t, domain.RoleSales, capturedUserCtx.Role)
}

func TestMiddlewareAuthenticateMissingHeader(t *testing.T) {
	db := testutil.SetupTestDB(t)
	middleware, _ := createTestMiddleware(db, time.Hour)

	handlerCalled := false
	handler := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/client", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.False(t, handlerCalled)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddlewareAuthenticateInvalidHeaderFormat(t *testing.T) {
	db := testutil.SetupTestDB(t)
	middleware, _ := createTestMiddleware(db, time.Hour)

	tests := []struct {
		name       string
		authHeader string
	}{
		{"no bearer prefix", "some-token"},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			handler := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/client", nil)
			req.Header.Set("Authorization", tt.authHeader)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.False(t, handlerCalled)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestMiddlewareAuthenticateExpiredToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	middleware, issuer := createTestMiddleware(db, -time.Minute)
	user := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)

	token, _, err := issuer.Issue(user)
	require.NoError(t, err)

	handlerCalled := false
	handler := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/client", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.False(t, handlerCalled)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// A token outlives the account it was issued for: the middleware reloads the
// user per request, so a deleted user is locked out immediately.
func TestMiddlewareAuthenticateDeletedUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	middleware, issuer := createTestMiddleware(db, time.Hour)
	user := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)

	token, _, err := issuer.Issue(user)
	require.NoError(t, err)

	require.NoError(t, db.Delete(&domain.User{}, "id = ?", user.ID).Error)

	handlerCalled := false
	handler := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/client", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.False(t, handlerCalled)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// Role changes take effect on the next request even with an old token.
func TestMiddlewareAuthenticateReloadsRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	middleware, issuer := createTestMiddleware(db, time.Hour)
	user := testutil.CreateTestUser(t, db, "jdoe", domain.RoleSales)

	token, _, err := issuer.Issue(user)
	require.NoError(t, err)

	require.NoError(t, db.Model(&domain.User{}).
		Where("id = ?", user.ID).Update("role", domain.RoleSupport).Error)

	var capturedUserCtx *auth.UserContext
	handler := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedUserCtx, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/client", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, capturedUserCtx)
	assert.Equal(t, domain.RoleSupport, capturedUserCtx.Role)
}
