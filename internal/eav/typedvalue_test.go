package eav

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/opencampus/registrar-backend/internal/pkg/errors"
	"github.com/opencampus/registrar-backend/internal/types"
)

func TestCoerceByDeclaredType(t *testing.T) {
	tests := []struct {
		name string
		dt   types.DataType
		raw  any
		want any
	}{
		{"string", types.DataTypeString, "Alice", "Alice"},
		{"empty string kept", types.DataTypeString, "", ""},
		{"text", types.DataTypeText, "long form notes", "long form notes"},
		{"number from float", types.DataTypeNumber, 3.8, 3.8},
		{"number from int", types.DataTypeNumber, 12, float64(12)},
		{"number from numeric string", types.DataTypeNumber, "42.5", 42.5},
		{"zero number kept", types.DataTypeNumber, 0, float64(0)},
		{"bool true", types.DataTypeBoolean, true, true},
		{"bool false kept", types.DataTypeBoolean, false, false},
		{"bool from string", types.DataTypeBoolean, "false", false},
		{"email", types.DataTypeEmail, "alice@example.edu", "alice@example.edu"},
		{"empty email allowed", types.DataTypeEmail, "", ""},
		{"phone", types.DataTypePhone, "+15550101", "+15550101"},
		{"url", types.DataTypeURL, "https://example.edu", "https://example.edu"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tv, err := Coerce(tt.dt, tt.raw)
			if err != nil {
				t.Fatalf("Coerce(%s, %v): %v", tt.dt, tt.raw, err)
			}
			if got := tv.Interface(); got != tt.want {
				t.Fatalf("Coerce(%s, %v) = %v (%T), want %v (%T)",
					tt.dt, tt.raw, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestCoerceDates(t *testing.T) {
	tv, err := Coerce(types.DataTypeDate, "2026-03-01")
	if err != nil {
		t.Fatalf("Coerce date: %v", err)
	}
	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if tv.Time == nil || !tv.Time.Equal(want) {
		t.Fatalf("Coerce date = %v, want %v", tv.Time, want)
	}

	tv, err = Coerce(types.DataTypeDate, "2026-03-01T15:04:05Z")
	if err != nil {
		t.Fatalf("Coerce date from timestamp: %v", err)
	}
	if tv.Time == nil || !tv.Time.Equal(want) {
		t.Fatalf("Coerce date did not truncate to midnight: got %v", tv.Time)
	}

	tv, err = Coerce(types.DataTypeDateTime, "2026-03-01T15:04:05Z")
	if err != nil {
		t.Fatalf("Coerce datetime: %v", err)
	}
	wantTS := time.Date(2026, 3, 1, 15, 4, 5, 0, time.UTC)
	if tv.Time == nil || !tv.Time.Equal(wantTS) {
		t.Fatalf("Coerce datetime = %v, want %v", tv.Time, wantTS)
	}
}

func TestCoerceRejectsMismatches(t *testing.T) {
	tests := []struct {
		name string
		dt   types.DataType
		raw  any
	}{
		{"number from word", types.DataTypeNumber, "not-a-number"},
		{"number from bool", types.DataTypeNumber, true},
		{"bool from word", types.DataTypeBoolean, "yes"},
		{"bool from number", types.DataTypeBoolean, 1.0},
		{"string from number", types.DataTypeString, 7.0},
		{"email without at sign", types.DataTypeEmail, "not-an-email"},
		{"date from garbage", types.DataTypeDate, "last tuesday"},
		{"nil value", types.DataTypeString, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Coerce(tt.dt, tt.raw)
			if err == nil {
				t.Fatalf("Coerce(%s, %v) succeeded, want type mismatch", tt.dt, tt.raw)
			}
			if !errors.Is(err, apperrors.ErrTypeMismatch) {
				t.Fatalf("Coerce(%s, %v) = %v, want ErrTypeMismatch", tt.dt, tt.raw, err)
			}
		})
	}
}

func TestCoerceUnknownDataType(t *testing.T) {
	_, err := Coerce(types.DataType("BLOB"), "x")
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("Coerce with unknown data type = %v, want ErrValidation", err)
	}
}

func TestApplyClearsOtherColumns(t *testing.T) {
	row := &types.AttributeValue{}

	tv, err := Coerce(types.DataTypeNumber, 3.5)
	if err != nil {
		t.Fatalf("Coerce: %v", err)
	}
	tv.Apply(row)
	if row.ValueNumber == nil || *row.ValueNumber != 3.5 {
		t.Fatalf("ValueNumber = %v, want 3.5", row.ValueNumber)
	}

	// Overwriting with a different type must leave exactly one column set.
	tv, err = Coerce(types.DataTypeBoolean, false)
	if err != nil {
		t.Fatalf("Coerce: %v", err)
	}
	tv.Apply(row)
	if row.ValueNumber != nil || row.ValueString != nil || row.ValueDate != nil {
		t.Fatalf("stale columns survived overwrite: %+v", row)
	}
	if row.ValueBool == nil || *row.ValueBool != false {
		t.Fatalf("ValueBool = %v, want false", row.ValueBool)
	}
}

// FromRow must pick the column from the declared type, so false, 0 and ""
// survive a store/read round trip instead of being dropped as empty.
func TestFromRowPreservesZeroValues(t *testing.T) {
	tests := []struct {
		name string
		dt   types.DataType
		raw  any
	}{
		{"false boolean", types.DataTypeBoolean, false},
		{"zero number", types.DataTypeNumber, float64(0)},
		{"empty string", types.DataTypeString, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tv, err := Coerce(tt.dt, tt.raw)
			if err != nil {
				t.Fatalf("Coerce: %v", err)
			}
			row := &types.AttributeValue{}
			tv.Apply(row)
			got := FromRow(tt.dt, row)
			if got != tt.raw {
				t.Fatalf("FromRow(%s) = %v, want %v", tt.dt, got, tt.raw)
			}
		})
	}
}

func TestFromRowEmptyColumn(t *testing.T) {
	row := &types.AttributeValue{}
	if got := FromRow(types.DataTypeNumber, row); got != nil {
		t.Fatalf("FromRow on empty row = %v, want nil", got)
	}

	// A row whose populated column does not match the declared type reads
	// as unset rather than leaking the wrong column.
	s := "stale"
	row.ValueString = &s
	if got := FromRow(types.DataTypeNumber, row); got != nil {
		t.Fatalf("FromRow with mismatched column = %v, want nil", got)
	}
}
