package render

import theme "github.com/goliatone/go-theme"

// RenderOptions carry per-request data renderers use without mutating the
// view.
type RenderOptions struct {
	// Action and Method describe where the form posts. Method defaults to POST.
	Action string
	Method string
	// Errors holds field-level feedback keyed by field name.
	Errors map[string][]string
	// FormErrors holds messages that do not belong to a single field.
	FormErrors []string
	// HiddenFields are emitted as hidden inputs, sorted by name.
	HiddenFields map[string]string
	// Submitting disables the submit control while a batch is pending.
	Submitting bool
	// Theme is the resolved theme configuration, if any.
	Theme *theme.RendererConfig
}
