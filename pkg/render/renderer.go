package render

import (
	"context"
)

// Renderer converts a form View into a byte representation (HTML, JSON from a
// terminal session, and so on).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view View, options RenderOptions) ([]byte, error)
}
