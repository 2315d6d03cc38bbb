package render

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/goliatone/go-assetform/pkg/agents"
	"github.com/goliatone/go-assetform/pkg/form"
)

// View is the read-only model a renderer draws: the layout, the current
// values and reporter rows, and the choices offered to the user.
type View struct {
	Layout     form.Layout
	Values     map[string]any
	Reporters  []form.ReporterEntry
	Agents     []agents.Agent
	Properties []form.PropertyOption
}

// NewView snapshots state for rendering with the given layout.
func NewView(layout form.Layout, state *form.State) View {
	view := View{
		Layout:     layout,
		Properties: form.AuthorizableProperties(),
	}
	if state == nil {
		return view
	}
	view.Values = state.Values()
	view.Reporters = state.Reporters()
	view.Agents = state.Agents()
	return view
}

// Value returns the named value as display text.
func (v View) Value(name string) string {
	raw, ok := v.Values[name]
	if !ok || raw == nil {
		return ""
	}
	return displayValue(raw)
}

func displayValue(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}
