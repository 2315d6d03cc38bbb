package render

import (
	"maps"
	"slices"
	"strings"
)

// HiddenField is an input the page carries back to the server untouched.
type HiddenField struct {
	Name  string
	Value string
}

// CSRFToken is the hidden field holding a forgery token under name.
func CSRFToken(name, token string) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: token}
}

// MergeHiddenFields layers fields over base without modifying it. Blank
// names are dropped; a nil map is returned when nothing is left.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	merged := map[string]string{}
	put := func(name, value string) {
		if name = strings.TrimSpace(name); name != "" {
			merged[name] = value
		}
	}
	for name, value := range base {
		put(name, value)
	}
	for _, field := range fields {
		put(field.Name, field.Value)
	}
	if len(merged) == 0 {
		return nil
	}
	return merged
}

// SortedHiddenFields returns fields ordered by name.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}
	out := make([]HiddenField, 0, len(fields))
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			out = append(out, HiddenField{Name: trimmed, Value: fields[name]})
		}
	}
	return out
}
