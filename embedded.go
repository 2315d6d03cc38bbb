package assetform

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-assetform/pkg/openapi"
	"github.com/goliatone/go-assetform/pkg/renderers/html"
)

// EmbeddedTemplates exposes the built-in HTML templates so callers can reuse
// or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// AssetsFS exposes the default stylesheet.
//
// Typical mount:
//
//	mux.Handle("/static/",
//	  http.StripPrefix("/static/",
//	    http.FileServerFS(assetform.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return html.AssetsFS()
}

// APISpec returns the embedded OpenAPI description of the JSON endpoints.
func APISpec() []byte {
	return openapi.Spec()
}

// LoadAPI parses and validates the embedded OpenAPI description.
func LoadAPI(ctx context.Context) (*openapi.Document, error) {
	return openapi.LoadEmbedded(ctx)
}
