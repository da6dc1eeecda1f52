package repository

import (
	"errors"
	"fmt"
	"strings"

	"tourops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is wrapped by every lookup of a missing id.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidInput wraps validation failures.
	ErrInvalidInput = errors.New("invalid input")
	// ErrBackendUnavailable marks a remote backend that could not be opened.
	// The selector logs it and falls back to the local store.
	ErrBackendUnavailable = errors.New("remote backend unavailable")
)

// DuplicateNameError is returned when another record of the same kind
// already holds the normalized name.
type DuplicateNameError struct {
	Kind model.Kind
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Kind, e.Name)
}

// IsDuplicateName reports whether err carries a DuplicateNameError.
func IsDuplicateName(err error) bool {
	var dup *DuplicateNameError
	return errors.As(err, &dup)
}

// NotFound builds the error for a missing record.
func NotFound(kind model.Kind, id uuid.UUID) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

// ItemNotFound builds the error for a line item missing from a tour.
func ItemNotFound(table string, tourID, itemID uuid.UUID) error {
	return fmt.Errorf("%s %s of tour %s: %w", table, itemID, tourID, ErrNotFound)
}

// IsUniqueViolation reports whether a storage error comes from a unique
// index. gorm translates the postgres error; the pure-Go sqlite driver only
// carries it in the message.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
