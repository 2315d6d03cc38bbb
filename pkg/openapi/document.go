package openapi

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed assetform.yaml
var embeddedSpec []byte

// Spec returns a copy of the embedded API document.
func Spec() []byte {
	return append([]byte(nil), embeddedSpec...)
}

// Document is a loaded and validated OpenAPI description.
type Document struct {
	spec *openapi3.T
}

// Load parses raw (JSON or YAML) and validates it. External references are
// not followed.
func Load(ctx context.Context, raw []byte) (*Document, error) {
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: false,
	}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("openapi: validate: %w", err)
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return nil, errors.New("openapi: document does not contain any paths")
	}
	return &Document{spec: spec}, nil
}

// LoadEmbedded loads the API document shipped with the module.
func LoadEmbedded(ctx context.Context) (*Document, error) {
	return Load(ctx, embeddedSpec)
}

// Title returns info.title.
func (d *Document) Title() string {
	if d == nil || d.spec == nil || d.spec.Info == nil {
		return ""
	}
	return d.spec.Info.Title
}

// RequestSchema returns the JSON request body schema of the operation at
// method and path.
func (d *Document) RequestSchema(method, path string) (*openapi3.Schema, error) {
	if d == nil || d.spec == nil {
		return nil, errors.New("openapi: document is nil")
	}
	item := d.spec.Paths.Find(path)
	if item == nil {
		return nil, fmt.Errorf("openapi: path %q not found", path)
	}
	op := item.GetOperation(method)
	if op == nil {
		return nil, fmt.Errorf("openapi: %s %s not found", method, path)
	}
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil, fmt.Errorf("openapi: %s %s has no request body", method, path)
	}
	media := op.RequestBody.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil, fmt.Errorf("openapi: %s %s has no JSON schema", method, path)
	}
	return media.Schema.Value, nil
}
