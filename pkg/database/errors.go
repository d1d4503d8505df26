package database

import (
	"database/sql"
	stderrors "errors"
	"strings"

	"github.com/lib/pq"
	"github.com/cheftrack/cheftrack-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error.
func MapPQError(err error) *errors.AppError {
	var pqErr *pq.Error
	if !stderrors.As(err, &pqErr) {
		return nil
	}

	switch pqErr.Code {
	// Check constraint violation (23514)
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation (23505)
	case "23505":
		return errors.Conflict(formatConstraintMessage(pqErr))

	// Foreign key violation (23503)
	case "23503":
		return errors.BadRequest("referenced record does not exist")

	// Not null violation (23502)
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	// Numeric value out of range (22003) or datetime field overflow (22008)
	case "22003", "22008":
		col := pqErr.Column
		if col == "" {
			col = "request"
		}
		return errors.Validation(map[string]string{
			col: "value is out of range",
		})

	// Invalid text representation (22P02), e.g. a malformed UUID in a path
	case "22P02":
		return errors.BadRequest("invalid identifier format")

	default:
		return nil
	}
}

// MapError maps driver errors for a named resource. sql.ErrNoRows becomes
// NotFound, PostgreSQL errors go through MapPQError, anything else is
// returned unchanged.
func MapError(err error, resource string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NotFound(resource)
	}
	if appErr := MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}

// mapCheckConstraint maps specific CHECK constraint names to user-friendly messages.
func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "quantity"):
		return errors.Validation(map[string]string{
			"quantity": "must be greater than or equal to 0",
		})

	case strings.Contains(constraint, "price"):
		return errors.Validation(map[string]string{
			"price": "must be greater than or equal to 0",
		})

	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}

// formatConstraintMessage creates a user-friendly message for unique constraint violations.
func formatConstraintMessage(pqErr *pq.Error) string {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "barcode"):
		return "a product with this barcode already exists"
	case strings.Contains(constraint, "email"), strings.Contains(constraint, "username"):
		return "an account with this email already exists"
	default:
		return "a record with these values already exists"
	}
}
