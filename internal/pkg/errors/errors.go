package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrValidation indicates malformed caller input.
	ErrValidation = errors.New("validation")
	// ErrTypeMismatch indicates a value that cannot be coerced to its attribute's declared type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrNotFound indicates a missing entity, attribute, relation or user.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness or concurrency conflict.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized indicates a failed or missing credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrStorage indicates an underlying persistence failure.
	ErrStorage = errors.New("storage")
)

// Validation tags an error as caller input validation failure.
func Validation(format string, args ...any) error {
	return errors.Join(ErrValidation, fmt.Errorf(format, args...))
}

// TypeMismatch tags an error as a failed type coercion.
func TypeMismatch(format string, args ...any) error {
	return errors.Join(ErrTypeMismatch, fmt.Errorf(format, args...))
}

// NotFound tags an error as a missing resource.
func NotFound(format string, args ...any) error {
	return errors.Join(ErrNotFound, fmt.Errorf(format, args...))
}

// Conflict tags an error as a uniqueness conflict.
func Conflict(format string, args ...any) error {
	return errors.Join(ErrConflict, fmt.Errorf(format, args...))
}

// Unauthorized tags an error as an auth failure.
func Unauthorized(format string, args ...any) error {
	return errors.Join(ErrUnauthorized, fmt.Errorf(format, args...))
}

// Storage tags an error as a persistence failure.
func Storage(format string, args ...any) error {
	return errors.Join(ErrStorage, fmt.Errorf(format, args...))
}

// MapError classifies infrastructure failures into the taxonomy above.
// Errors already tagged pass through unchanged.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrTypeMismatch),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrStorage):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Join(ErrNotFound, fmt.Errorf("%s: %w", op, err))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return errors.Join(ErrConflict, fmt.Errorf("%s: %w", op, err))
		case "23503":
			return errors.Join(ErrValidation, fmt.Errorf("%s: %w", op, err))
		}
	}

	return errors.Join(ErrStorage, fmt.Errorf("%s: %w", op, err))
}

// IsUniqueViolation reports whether err is a storage-level uniqueness conflict.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.TrimSpace(pgErr.Code) == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// sqlite reports constraint failures as plain strings
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
