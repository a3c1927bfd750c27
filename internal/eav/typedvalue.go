package eav

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/opencampus/registrar-backend/internal/pkg/errors"
	"github.com/opencampus/registrar-backend/internal/types"
)

// TypedValue is the tagged-union representation of one attribute value.
// Exactly one of the slot fields is set, the one matching DataType. The
// value is never held as an untyped blob resolved by truthiness.
type TypedValue struct {
	DataType types.DataType
	String   *string
	Number   *float64
	Bool     *bool
	Time     *time.Time
}

// Interface returns the plain Go value for API payloads: string, float64,
// bool or time.Time.
func (tv TypedValue) Interface() any {
	switch {
	case tv.String != nil:
		return *tv.String
	case tv.Number != nil:
		return *tv.Number
	case tv.Bool != nil:
		return *tv.Bool
	case tv.Time != nil:
		return *tv.Time
	}
	return nil
}

// Coerce converts raw caller input into the typed slot declared by dt.
// JSON decoding hands numbers over as float64 and json.Number; numeric
// strings are accepted for NUMBER and "true"/"false" for BOOLEAN, matching
// what form-encoded clients send. Impossible coercions return ErrTypeMismatch.
func Coerce(dt types.DataType, raw any) (TypedValue, error) {
	tv := TypedValue{DataType: dt}
	if !dt.Valid() {
		return tv, apperrors.Validation("unrecognized data type %q", string(dt))
	}
	if raw == nil {
		return tv, apperrors.TypeMismatch("nil value for %s attribute", dt)
	}

	switch dt {
	case types.DataTypeString, types.DataTypeText, types.DataTypePhone, types.DataTypeURL:
		s, ok := raw.(string)
		if !ok {
			return tv, apperrors.TypeMismatch("%T is not a string", raw)
		}
		tv.String = &s

	case types.DataTypeEmail:
		s, ok := raw.(string)
		if !ok {
			return tv, apperrors.TypeMismatch("%T is not a string", raw)
		}
		if s != "" && !strings.Contains(s, "@") {
			return tv, apperrors.TypeMismatch("%q is not an email address", s)
		}
		tv.String = &s

	case types.DataTypeNumber:
		n, err := toFloat(raw)
		if err != nil {
			return tv, err
		}
		tv.Number = &n

	case types.DataTypeBoolean:
		switch v := raw.(type) {
		case bool:
			tv.Bool = &v
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "true":
				b := true
				tv.Bool = &b
			case "false":
				b := false
				tv.Bool = &b
			default:
				return tv, apperrors.TypeMismatch("%q is not a boolean", v)
			}
		default:
			return tv, apperrors.TypeMismatch("%T is not a boolean", raw)
		}

	case types.DataTypeDate, types.DataTypeDateTime:
		t, err := toTime(raw)
		if err != nil {
			return tv, err
		}
		if dt == types.DataTypeDate {
			t = t.UTC().Truncate(24 * time.Hour)
		}
		tv.Time = &t
	}

	return tv, nil
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, apperrors.TypeMismatch("%q is not a number", v)
		}
		return n, nil
	}
	return 0, apperrors.TypeMismatch("%T is not a number", raw)
}

func toTime(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, nil
		}
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t, nil
		}
		return time.Time{}, apperrors.TypeMismatch("%q is not an RFC 3339 timestamp or date", v)
	}
	return time.Time{}, apperrors.TypeMismatch("%T is not a timestamp", raw)
}

// Apply writes tv into the matching typed column of row, clearing the
// others so an overwrite with a different type leaves exactly one slot set.
func (tv TypedValue) Apply(row *types.AttributeValue) {
	row.ValueString = tv.String
	row.ValueNumber = tv.Number
	row.ValueBool = tv.Bool
	row.ValueDate = tv.Time
}

// FromRow reads the typed value out of a stored row, selecting the column
// by the attribute's declared DataType — never by truthiness, so false, 0
// and "" survive the round trip.
func FromRow(dt types.DataType, row *types.AttributeValue) any {
	switch dt {
	case types.DataTypeString, types.DataTypeText, types.DataTypeEmail,
		types.DataTypePhone, types.DataTypeURL:
		if row.ValueString != nil {
			return *row.ValueString
		}
	case types.DataTypeNumber:
		if row.ValueNumber != nil {
			return *row.ValueNumber
		}
	case types.DataTypeBoolean:
		if row.ValueBool != nil {
			return *row.ValueBool
		}
	case types.DataTypeDate, types.DataTypeDateTime:
		if row.ValueDate != nil {
			return *row.ValueDate
		}
	}
	return nil
}
