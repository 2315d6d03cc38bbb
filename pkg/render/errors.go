package render

import (
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-assetform/pkg/form"
	"github.com/goliatone/go-assetform/pkg/payload"
)

// ReportersField is the error key used for problems with reporter rows.
const ReportersField = "reporters"

// ErrorMapping splits an error payload into field-level and form-level
// messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors appends extras to existing, trimmed and without
// duplicates.
func MergeFormErrors(existing []string, extras ...string) []string {
	return normalizeMessages(append(slices.Clone(existing), extras...))
}

// MapErrorPayload maps a ledger or validator error payload onto the layout's
// fields. Keys may be dotted paths or JSON pointers and may name either a form
// field ("weight") or a record property ("properties.location"). Proposal
// errors land on the reporters list; anything else becomes a form-level
// message so nothing is lost.
func MapErrorPayload(layout form.Layout, errs map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(errs) == 0 {
		mapping.Fields = nil
		return mapping
	}

	known := make(map[string]string)
	for _, field := range layout.Fields() {
		known[field.Name] = field.Name
	}
	for _, m := range payload.DefaultMappings() {
		if _, ok := known[m.Key]; ok {
			known[m.Property] = m.Key
		}
	}
	known[ReportersField] = ReportersField
	known["receivingAgent"] = ReportersField
	known["proposals"] = ReportersField
	known["recordId"] = form.FieldSerialNumber

	for rawPath, messages := range errs {
		messages = normalizeMessages(messages)
		if len(messages) == 0 {
			continue
		}
		field, ok := resolveErrorPath(rawPath, known)
		if !ok {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		mapping.Fields[field] = append(mapping.Fields[field], messages...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func resolveErrorPath(raw string, known map[string]string) (string, bool) {
	if isFormLevelKey(raw) {
		return "", false
	}
	for _, segment := range pathSegments(raw) {
		if isWrapperSegment(segment) {
			continue
		}
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		field, ok := known[segment]
		return field, ok
	}
	return "", false
}

func pathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimLeft(clean, "#$./")
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func isWrapperSegment(segment string) bool {
	switch strings.ToLower(segment) {
	case "body", "request", "data", "payload", "payloads", "record", "properties":
		return true
	default:
		return false
	}
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "batch", "__all__", "non_field_errors":
		return true
	default:
		return false
	}
}

func normalizeMessages(messages []string) []string {
	var out []string
	for _, message := range messages {
		message = strings.TrimSpace(message)
		if message != "" && !slices.Contains(out, message) {
			out = append(out, message)
		}
	}
	return out
}
