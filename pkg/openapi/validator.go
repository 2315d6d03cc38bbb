package openapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// AssetsPath is the JSON endpoint that creates assets.
const AssetsPath = "/api/assets"

// ValidationError reports every schema violation in a request body, keyed by
// JSON pointer ("/latitude", "/reporters/0/key"). Problems with the body as a
// whole use the empty key.
type ValidationError struct {
	Errors map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		label := k
		if label == "" {
			label = "body"
		}
		parts = append(parts, label+": "+strings.Join(e.Errors[k], "; "))
	}
	return "openapi: invalid request: " + strings.Join(parts, ", ")
}

// Validator checks request bodies against one operation's schema.
type Validator struct {
	schema *openapi3.Schema
}

// NewValidator binds a validator to the request schema of method and path.
func NewValidator(doc *Document, method, path string) (*Validator, error) {
	schema, err := doc.RequestSchema(method, path)
	if err != nil {
		return nil, err
	}
	return &Validator{schema: schema}, nil
}

// NewAssetValidator validates POST /api/assets bodies.
func NewAssetValidator(doc *Document) (*Validator, error) {
	return NewValidator(doc, http.MethodPost, AssetsPath)
}

// Validate decodes raw as JSON and checks it against the schema. Schema
// violations are returned as *ValidationError.
func (v *Validator) Validate(raw []byte) error {
	if v == nil || v.schema == nil {
		return errors.New("openapi: validator is nil")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body any
	if err := dec.Decode(&body); err != nil {
		return &ValidationError{Errors: map[string][]string{"": {fmt.Sprintf("malformed JSON: %v", err)}}}
	}

	err := v.schema.VisitJSON(body, openapi3.MultiErrors())
	if err == nil {
		return nil
	}

	out := &ValidationError{Errors: make(map[string][]string)}
	collect(err, out.Errors)
	return out
}

func collect(err error, dest map[string][]string) {
	switch e := err.(type) {
	case openapi3.MultiError:
		for _, inner := range e {
			collect(inner, dest)
		}
	case *openapi3.SchemaError:
		pointer := ""
		if path := e.JSONPointer(); len(path) > 0 {
			pointer = "/" + strings.Join(path, "/")
		}
		reason := e.Reason
		if reason == "" {
			reason = e.Error()
		}
		dest[pointer] = append(dest[pointer], reason)
	default:
		dest[""] = append(dest[""], err.Error())
	}
}
