// Package validation checks form values against the constraints declared on
// the layout: required fields, numeric bounds and steps, and date formats.
// The same rules back the terminal prompts and server-side form handling.
package validation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-assetform/pkg/form"
)

// DateLayout is the accepted format for date inputs.
const DateLayout = "2006-01-02"

// Issue is a validation error for one field.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result captures validation outcomes for a whole layout.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// FieldErrors groups issue messages by field, or returns nil when valid.
func (r Result) FieldErrors() map[string][]string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make(map[string][]string, len(r.Issues))
	for _, issue := range r.Issues {
		out[issue.Field] = append(out[issue.Field], issue.Message)
	}
	return out
}

// Source is the read side of form state.
type Source interface {
	String(name string) string
}

// Check validates every field of layout against src, in drawing order.
func Check(layout form.Layout, src Source) Result {
	result := Result{Valid: true}
	if src == nil {
		return result
	}
	for _, field := range layout.Fields() {
		if err := CheckValue(field, src.String(field.Name)); err != nil {
			result.Valid = false
			result.Issues = append(result.Issues, Issue{Field: field.Name, Message: err.Error()})
		}
	}
	return result
}

// CheckValue validates one raw input for field.
func CheckValue(field form.Field, raw string) error {
	value := strings.TrimSpace(raw)
	if value == "" {
		if field.Required {
			return fmt.Errorf("%s is required", field.Label)
		}
		return nil
	}

	switch field.Kind {
	case form.InputNumber:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s must be a number", field.Label)
		}
		if lo, err := strconv.ParseFloat(field.Min, 64); err == nil && n < lo {
			return fmt.Errorf("%s must be at least %s", field.Label, field.Min)
		}
		if hi, err := strconv.ParseFloat(field.Max, 64); err == nil && n > hi {
			return fmt.Errorf("%s must be at most %s", field.Label, field.Max)
		}
		if field.Step == "1" && n != float64(int64(n)) {
			return fmt.Errorf("%s must be a whole number", field.Label)
		}
	case form.InputDate:
		if _, err := time.Parse(DateLayout, value); err != nil {
			return fmt.Errorf("%s must be a date (YYYY-MM-DD)", field.Label)
		}
	}
	return nil
}
