package service

import (
	"errors"
	"fmt"

	"github.com/epic-events/crm-api/internal/domain"
	"github.com/epic-events/crm-api/internal/policy"
)

// Sentinel errors for the service layer. Handlers map these to HTTP
// status codes with errors.Is.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = errors.New("resource conflict")
	ErrUnauthorized     = errors.New("unauthorized")
)

// PermissionDeniedError carries the policy reason code alongside the
// ErrPermissionDenied sentinel.
type PermissionDeniedError struct {
	Reason policy.Reason
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied: %s", e.Reason)
}

func (e *PermissionDeniedError) Is(target error) bool {
	return target == ErrPermissionDenied
}

func denied(v policy.Verdict) error {
	return &PermissionDeniedError{Reason: v.Reason}
}

// NotFoundError identifies the missing entity by kind and natural key.
type NotFoundError struct {
	Kind domain.EntityKind
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(kind domain.EntityKind, key string) error {
	return &NotFoundError{Kind: kind, Key: key}
}

func invalidInput(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}
