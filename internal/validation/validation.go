// Package validation enforces the field-level business rules a payload must
// satisfy before it reaches storage. Uniqueness is not checked here: it is
// enforced by database constraints and surfaced as a conflict, a distinct
// error kind from the format violations this package produces.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Error is a field-format violation with a machine-readable reason code.
type Error struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// Reason codes surfaced to callers.
const (
	ReasonIllegalTitleCharacter = "illegal_title_character"
	ReasonNameContainsSpace     = "name_contains_whitespace"
	ReasonPaymentExceedsAmount  = "payment_due_exceeds_amount"
	ReasonInvalidPhone          = "invalid_phone_format"
	ReasonEmptyTitle            = "empty_title"
	ReasonInvalidRole           = "invalid_role"
)

var phonePattern = regexp.MustCompile(`^\+?1?\d{9,15}$`)

// NormalizeTitle validates and normalizes a contract or event title. Titles
// end up in URLs, so only alphanumerics and spaces are accepted; spaces are
// stored as underscores. Underscores are accepted on input so that an
// already-normalized title passes unchanged (idempotency).
func NormalizeTitle(field, title string) (string, error) {
	if title == "" {
		return "", &Error{Field: field, Reason: ReasonEmptyTitle}
	}
	var b strings.Builder
	b.Grow(len(title))
	for _, ch := range title {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '_':
			b.WriteRune(ch)
		case ch == ' ':
			b.WriteByte('_')
		default:
			return "", &Error{Field: field, Reason: ReasonIllegalTitleCharacter}
		}
	}
	return b.String(), nil
}

// ValidateClientName rejects first or last names containing whitespace; the
// name pair is the client's natural key and must be URL-safe.
func ValidateClientName(field, name string) error {
	if strings.ContainsFunc(name, unicode.IsSpace) {
		return &Error{Field: field, Reason: ReasonNameContainsSpace}
	}
	return nil
}

// ValidateContractPayment rejects a payment due greater than the total
// amount. Equal values pass.
func ValidateContractPayment(amount, paymentDue float64) error {
	if paymentDue > amount {
		return &Error{Field: "paymentDue", Reason: ReasonPaymentExceedsAmount}
	}
	return nil
}

// ValidatePhone checks the international phone format. Empty is allowed:
// phone is optional on users.
func ValidatePhone(phone string) error {
	if phone == "" {
		return nil
	}
	if !phonePattern.MatchString(phone) {
		return &Error{Field: "phone", Reason: ReasonInvalidPhone}
	}
	return nil
}
