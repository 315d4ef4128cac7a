package auth

import (
	"context"

	"github.com/epic-events/crm-api/internal/domain"
	"github.com/google/uuid"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID   uuid.UUID
	Username string
	Role     domain.Role
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// IsManager checks if the user is on the management team
func (u *UserContext) IsManager() bool {
	return u.Role == domain.RoleManager
}

// IsSales checks if the user is on the sales team
func (u *UserContext) IsSales() bool {
	return u.Role == domain.RoleSales
}

// IsSupport checks if the user is on the support team
func (u *UserContext) IsSupport() bool {
	return u.Role == domain.RoleSupport
}
