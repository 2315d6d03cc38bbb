package server

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-assetform/pkg/form"
	"github.com/goliatone/go-assetform/pkg/validation"
)

const reporterPrefix = form.ReportersKey + "."

// parseFormValues reads the layout's fields and the indexed reporter rows
// ("reporters.N.id", "reporters.N.input", "reporters.N.properties") from a
// posted form. Blank fields are omitted. Rows come back in index order.
func parseFormValues(values url.Values, layout form.Layout) (map[string]any, []form.ReporterEntry) {
	fields := make(map[string]any)
	for _, field := range layout.Fields() {
		raw := strings.TrimSpace(values.Get(field.Name))
		if raw == "" {
			continue
		}
		fields[field.Name] = raw
	}

	rows := make(map[int]*form.ReporterEntry)
	for key, vals := range values {
		if !strings.HasPrefix(key, reporterPrefix) {
			continue
		}
		rest := strings.TrimPrefix(key, reporterPrefix)
		idxRaw, attr, ok := strings.Cut(rest, ".")
		if !ok {
			continue
		}
		idx, err := strconv.Atoi(idxRaw)
		if err != nil || idx < 0 {
			continue
		}
		row, exists := rows[idx]
		if !exists {
			row = &form.ReporterEntry{Properties: []string{}}
			rows[idx] = row
		}
		switch attr {
		case "id":
			row.ID = strings.TrimSpace(first(vals))
		case "input":
			row.Input = strings.TrimSpace(first(vals))
		case "properties":
			row.Properties = cleanProperties(vals)
		}
	}

	indexes := make([]int, 0, len(rows))
	for idx := range rows {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	out := make([]form.ReporterEntry, 0, len(indexes))
	for _, idx := range indexes {
		out = append(out, *rows[idx])
	}
	return fields, out
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// cleanProperties keeps known authorizable properties in the order offered.
func cleanProperties(vals []string) []string {
	selected := make(map[string]bool, len(vals))
	for _, v := range vals {
		selected[strings.TrimSpace(v)] = true
	}
	out := []string{}
	for _, option := range form.AuthorizableProperties() {
		if selected[option.Value] {
			out = append(out, option.Value)
		}
	}
	return out
}

// fieldErrors applies the layout's constraints to state.
func fieldErrors(layout form.Layout, state *form.State) map[string][]string {
	return validation.Check(layout, state).FieldErrors()
}
