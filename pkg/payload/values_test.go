package payload

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestPresent(t *testing.T) {
	cases := []struct {
		value any
		want  bool
	}{
		{nil, false},
		{"", false},
		{"0", true},
		{" ", true},
		{0, false},
		{int64(3), true},
		{0.0, false},
		{math.NaN(), false},
		{-1.5, true},
		{json.Number("0"), false},
		{json.Number("12"), true},
		{false, false},
		{true, true},
	}
	for _, tc := range cases {
		if got := Present(tc.value); got != tc.want {
			t.Fatalf("Present(%#v) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestParseInt(t *testing.T) {
	cases := []struct {
		value any
		want  int64
	}{
		{"42", 42},
		{" 42 ", 42},
		{"-90.9", -90},
		{"1e3", 1000},
		{45.7, 45},
		{int64(-3), -3},
		{json.Number("17"), 17},
		{json.Number("17.9"), 17},
	}
	for _, tc := range cases {
		got, err := ParseInt(tc.value)
		if err != nil {
			t.Fatalf("ParseInt(%#v): %v", tc.value, err)
		}
		if got != tc.want {
			t.Fatalf("ParseInt(%#v) = %d, want %d", tc.value, got, tc.want)
		}
	}

	for _, bad := range []any{"abc", "", "12abc", math.Inf(1), true, []string{"1"}} {
		if _, err := ParseInt(bad); !errors.Is(err, ErrInvalidNumber) {
			t.Fatalf("ParseInt(%#v) expected ErrInvalidNumber, got %v", bad, err)
		}
	}
}

func TestParseInt_Int64Bounds(t *testing.T) {
	within := []struct {
		value any
		want  int64
	}{
		{"9223372036854775807", math.MaxInt64},
		{"-9223372036854775808", math.MinInt64},
		{json.Number("9223372036854775807"), math.MaxInt64},
		{uint64(math.MaxInt64), math.MaxInt64},
	}
	for _, tc := range within {
		got, err := ParseInt(tc.value)
		if err != nil {
			t.Fatalf("ParseInt(%#v): %v", tc.value, err)
		}
		if got != tc.want {
			t.Fatalf("ParseInt(%#v) = %d, want %d", tc.value, got, tc.want)
		}
	}

	outside := []any{
		"9223372036854775808",
		"9.3e18",
		"-1e19",
		float64(math.MaxInt64),
		json.Number("9223372036854775808"),
		uint64(math.MaxUint64),
	}
	for _, value := range outside {
		got, err := ParseInt(value)
		if !errors.Is(err, ErrInvalidNumber) {
			t.Fatalf("ParseInt(%#v) = %d, %v; want ErrInvalidNumber", value, got, err)
		}
	}
}
