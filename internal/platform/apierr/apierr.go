package apierr

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/opencampus/registrar-backend/internal/pkg/errors"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromError maps the domain error taxonomy onto an HTTP status. Already
// wrapped *Error values pass through.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return New(http.StatusBadRequest, "validation_failed", err)
	case errors.Is(err, apperrors.ErrTypeMismatch):
		return New(http.StatusBadRequest, "type_mismatch", err)
	case errors.Is(err, apperrors.ErrNotFound):
		return New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, apperrors.ErrConflict):
		return New(http.StatusConflict, "conflict", err)
	case errors.Is(err, apperrors.ErrUnauthorized):
		return New(http.StatusUnauthorized, "unauthorized", err)
	default:
		return New(http.StatusInternalServerError, "internal", err)
	}
}
