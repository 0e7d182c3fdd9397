// Package record holds the untyped row shape shared by list screens and data-entry forms.
package record

import (
	"fmt"
	"strconv"
	"strings"
)

// Record maps field names to scalar values: string, number, bool or nil.
type Record map[string]any

// Clone returns a shallow copy. Values are scalars, so the copy is independent.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Text returns the display text of field, "" when absent or nil.
func (r Record) Text(field string) string {
	return Text(r[field])
}

// Number returns the numeric value of field.
func (r Record) Number(field string) (float64, bool) {
	return Number(r[field])
}

// Blank reports whether field is absent, nil or whitespace.
func (r Record) Blank(field string) bool {
	return IsBlank(r[field])
}

// Text formats a scalar value.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// Number converts numeric values, and strings that parse as numbers.
func Number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// IsNumeric reports whether v is a Go numeric type. Numeric strings are not.
func IsNumeric(v any) bool {
	switch v.(type) {
	case float64, float32, int, int64, int32:
		return true
	}
	return false
}

// IsBlank reports whether v is nil, a nil pointer or a whitespace-only string.
func IsBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case *string:
		return t == nil || strings.TrimSpace(*t) == ""
	}
	return false
}
