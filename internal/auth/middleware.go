package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/epic-events/crm-api/internal/domain"
	"go.uber.org/zap"
)

// UserLoader loads principals during authentication. Satisfied by the user
// repository.
type UserLoader interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Middleware handles authentication for HTTP requests
type Middleware struct {
	issuer *TokenIssuer
	users  UserLoader
	logger *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(issuer *TokenIssuer, users UserLoader, logger *zap.Logger) *Middleware {
	return &Middleware{issuer: issuer, users: users, logger: logger}
}

// Authenticate validates the bearer token and loads the principal into the
// request context. The user is reloaded on every request so role changes and
// deletions take effect immediately instead of on token expiry.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized: missing authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			http.Error(w, "Unauthorized: invalid authorization header format", http.StatusUnauthorized)
			return
		}

		claims, err := m.issuer.Validate(parts[1])
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
			return
		}

		user, err := m.users.GetByUsername(r.Context(), claims.Username)
		if err != nil {
			m.logger.Warn("authenticated user no longer exists",
				zap.String("username", claims.Username),
				zap.Error(err),
			)
			http.Error(w, "Unauthorized: unknown user", http.StatusUnauthorized)
			return
		}

		userCtx := &UserContext{
			UserID:   user.ID,
			Username: user.Username,
			Role:     user.Role,
		}

		m.logger.Debug("request authenticated",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("user_id", userCtx.UserID.String()),
			zap.String("username", userCtx.Username),
			zap.String("role", string(userCtx.Role)),
			zap.Duration("auth_duration", time.Since(start)),
		)

		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
	})
}
