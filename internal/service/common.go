package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/epic-events/crm-api/internal/auth"
	"github.com/epic-events/crm-api/internal/domain"
	"github.com/epic-events/crm-api/internal/policy"
	"github.com/epic-events/crm-api/internal/repository"
	"gorm.io/gorm"
)

// principalFrom builds the policy principal from the authenticated request
// context.
func principalFrom(ctx context.Context) (policy.Principal, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return policy.Principal{}, ErrUnauthorized
	}
	return policy.Principal{ID: userCtx.UserID, Role: userCtx.Role}, nil
}

// storeErr translates storage errors into service sentinels: a missing row
// becomes a not-found keyed by the natural key the caller asked for, a
// unique violation becomes a conflict.
func storeErr(err error, kind domain.EntityKind, key string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound(kind, key)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	}
	return err
}

// resolveContact looks up a contact reference by username and checks the
// referenced user is on the expected team. Assigning a contact from the
// wrong team is an input error, not a missing resource.
func resolveContact(ctx context.Context, users *repository.UserRepository, username string, role domain.Role) (*domain.User, error) {
	user, err := users.GetByUsername(ctx, username)
	if err != nil {
		return nil, storeErr(err, domain.KindUser, username)
	}
	if user.Role != role {
		return nil, invalidInput(fmt.Errorf("user %s is not on the %s team", username, role))
	}
	return user, nil
}
