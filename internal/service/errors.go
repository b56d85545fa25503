package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrValidation        = errors.New("validation")         // 400
	ErrNotFound          = errors.New("not found")          // 404
	ErrForbidden         = errors.New("forbidden")          // 403
	ErrInvalidTransition = errors.New("invalid transition") // 409
	ErrConflict          = errors.New("conflict")           // 409
	ErrInternal          = errors.New("internal")           // 500
)

// ErrSweepInProgress is returned when another maintenance sweep holds the
// guard.
var ErrSweepInProgress = fmt.Errorf("%w: sweep already running", ErrConflict)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uuid.UUID
	Admin  bool
}

func storeErr(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	}
	return fmt.Errorf("%w: %s: %w", ErrInternal, op, err)
}
