// Package store implements the component repositories on top of gorm.
// Every statement auto-commits; there are no cross-statement transactions.
package store

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"nutrivision-go/internal/apperr"
)

// translate maps gorm sentinel errors onto the application taxonomy.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrap(apperr.ErrNotFound, op)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Wrap(apperr.Duplicate("email or username"), op)
	default:
		return errors.Wrap(err, op)
	}
}
