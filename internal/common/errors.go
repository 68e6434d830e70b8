package common

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Domain failure kinds. Handlers branch on these with errors.Is to choose a
// status code and user-facing message; repositories and services never
// collapse them into a generic error.
var (
	// ErrDuplicateRecord: an attendance record already exists for the
	// organization on that calendar day. User-correctable, not retryable as-is.
	ErrDuplicateRecord = errors.New("attendance already recorded for this date")

	// ErrNotFound: the referenced organization, record or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSchemaMissing: a query needs a table or index the store does not have
	// yet. Operator-correctable (apply schema.sql); distinct from transient
	// failures because the remediation differs entirely.
	ErrSchemaMissing = errors.New("required schema object is missing")

	// ErrStoreUnavailable: transport or availability failure. Safe to retry
	// reads with backoff; creates must re-check for duplicates first.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError marks a caller-supplied value outside its domain range.
// Rejected before any store call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// ClassifyStoreError maps a pgx error onto the domain taxonomy, keeping the
// operation name in the message for logs. Unrecognized errors pass through
// wrapped so nothing is silently swallowed.
func ClassifyStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return fmt.Errorf("%s: %w", op, ErrDuplicateRecord)
		case pgErr.Code == "42P01" || pgErr.Code == "42703" || pgErr.Code == "42704":
			return fmt.Errorf("%s: %s: %w", op, pgErr.Message, ErrSchemaMissing)
		case strings.HasPrefix(pgErr.Code, "08"), pgErr.Code == "57P01", pgErr.Code == "53300":
			return fmt.Errorf("%s: %w", op, ErrStoreUnavailable)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrStoreUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}
