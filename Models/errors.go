package Models

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Error taxonomy shared by every mutating operation. Handlers map these to
// HTTP statuses at the boundary; nothing below the boundary touches fiber.
var (
	ErrValidation  = errors.New("datos inválidos")
	ErrNotFound    = errors.New("recurso no encontrado")
	ErrConflict    = errors.New("conflicto con el estado actual")
	ErrUnavailable = errors.New("servicio externo no disponible")
)

// ValidationError wraps ErrValidation with a human-readable, user-facing
// message (single field or a joined list).
func ValidationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// NotFoundError tags which entity failed to resolve.
func NotFoundError(entity string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, entity)
}

// ConflictError wraps ErrConflict with the business-rule that was violated.
func ConflictError(msg string) error {
	return fmt.Errorf("%w: %s", ErrConflict, msg)
}

// UnavailableError marks a dependency outage with a user-facing message.
func UnavailableError(msg string) error {
	return fmt.Errorf("%w: %s", ErrUnavailable, msg)
}

// IsUniqueViolation reports whether err is a unique-constraint failure from
// either backing driver (sqlite or postgres).
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "SQLSTATE 23505")
}

// MapDBError collapses a persistence error into the taxonomy. conflictMsg is
// the user-facing message used when the error is a unique violation.
func MapDBError(err error, entity, conflictMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFoundError(entity)
	case IsUniqueViolation(err):
		return ConflictError(conflictMsg)
	default:
		return err
	}
}
