package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidNumber is returned when a numeric field cannot be read as a number.
var ErrInvalidNumber = errors.New("payload: invalid number")

// FieldError ties a conversion failure to the state key that caused it.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("payload: field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Present reports whether an optional value counts as supplied: non-empty
// strings and non-zero numbers do, as does any other non-nil value.
func Present(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case int:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case uint:
		return v != 0
	case uint64:
		return v != 0
	case float32:
		return v != 0 && !math.IsNaN(float64(v))
	case float64:
		return v != 0 && !math.IsNaN(v)
	case json.Number:
		f, err := v.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}

// IntParser converts a raw state value into an integer.
type IntParser func(value any) (int64, error)

// ParseInt reads value as a number and truncates it toward zero. Strings are
// trimmed and parsed as decimal floats; anything unreadable is
// ErrInvalidNumber.
func ParseInt(value any) (int64, error) {
	var f float64
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return fromUint(uint64(v))
	case uint64:
		return fromUint(v)
	case float32:
		f = float64(v)
	case float64:
		f = v
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		parsed, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, v.String())
		}
		f = parsed
	case string:
		trimmed := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return i, nil
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, v)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidNumber, value)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidNumber, f)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	truncated := math.Trunc(f)
	if truncated >= math.MaxInt64 || truncated < math.MinInt64 {
		return 0, fmt.Errorf("%w: %v out of range", ErrInvalidNumber, f)
	}
	return int64(truncated), nil
}

func fromUint(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d out of range", ErrInvalidNumber, v)
	}
	return int64(v), nil
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
