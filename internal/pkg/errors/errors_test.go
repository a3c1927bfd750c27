package errors

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestMapErrorClassifies(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"record not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"pg unique violation", &pgconn.PgError{Code: "23505"}, ErrConflict},
		{"pg fk violation", &pgconn.PgError{Code: "23503"}, ErrValidation},
		{"unknown failure", errors.New("disk on fire"), ErrStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError("op", tt.in)
			if !errors.Is(got, tt.want) {
				t.Fatalf("MapError(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMapErrorPassesTaggedErrorsThrough(t *testing.T) {
	tagged := NotFound("entity %s does not exist", "x")
	if got := MapError("op", tagged); got != tagged {
		t.Fatalf("tagged error was re-wrapped: %v", got)
	}
	if MapError("op", nil) != nil {
		t.Fatalf("MapError(nil) != nil")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want bool
	}{
		{"pg 23505", &pgconn.PgError{Code: "23505"}, true},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, true},
		{"sqlite message", errors.New("UNIQUE constraint failed: attribute.name"), true},
		{"other pg code", &pgconn.PgError{Code: "23503"}, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.in); got != tt.want {
				t.Fatalf("IsUniqueViolation(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
