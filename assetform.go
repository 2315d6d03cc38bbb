// Package assetform is the top-level entry point for the Track New Asset
// form: it re-exports the orchestrator and the embedded templates, stylesheet
// and API description so simple callers need a single import.
package assetform

import (
	"context"

	"github.com/goliatone/go-assetform/pkg/form"
	"github.com/goliatone/go-assetform/pkg/orchestrator"
	"github.com/goliatone/go-assetform/pkg/render"
)

// RenderOptions describes per-request overrides such as server-side errors.
type RenderOptions = render.RenderOptions

// State is the mutable form model.
type State = form.State

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// RenderHTML draws state as the HTML form using an orchestrator built from
// options.
func RenderHTML(ctx context.Context, state *form.State, opts render.RenderOptions, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Render(ctx, "html", state, opts)
}

// Track builds and submits state in one call, returning the new asset's
// route.
func Track(ctx context.Context, state *form.State, options ...orchestrator.Option) (string, error) {
	return orchestrator.New(options...).Track(ctx, state)
}
