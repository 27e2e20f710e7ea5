// Package apperr holds the error classes shared by the core components.
// Each class maps to one response code at the HTTP boundary.
package apperr

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrDuplicateIdentity = errors.New("duplicate identity")
	ErrInvalidToken      = errors.New("invalid token")
	ErrNotFound          = errors.New("not found")
	ErrProfileIncomplete = errors.New("profile incomplete")
	ErrInvalidFormat     = errors.New("invalid image format")
	ErrTooLowResolution  = errors.New("image resolution too low")
	ErrTooLarge          = errors.New("upload too large")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrSessionExpired    = errors.New("session expired")
)

// ValidationError reports malformed or missing user input.
type ValidationError struct {
	Field   string
	Reason  string
	Details []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	if e.Field != "" {
		fmt.Fprintf(&b, "%s: ", e.Field)
	}
	b.WriteString(e.Reason)
	if len(e.Details) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.Details, "; "))
	}
	return b.String()
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Duplicate wraps ErrDuplicateIdentity with the clashing field name.
func Duplicate(field string) error {
	return errors.Wrapf(ErrDuplicateIdentity, "%s already exists", field)
}

func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
