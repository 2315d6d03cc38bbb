package transaction

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-assetform/pkg/ledger"
)

// Submitter hands a batch of payloads to the ledger. When wait is true the
// call returns only after the batch is committed or rejected.
type Submitter interface {
	Submit(ctx context.Context, payloads []ledger.Payload, wait bool) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, payloads []ledger.Payload, wait bool) error

// Submit implements Submitter.
func (fn SubmitterFunc) Submit(ctx context.Context, payloads []ledger.Payload, wait bool) error {
	return fn(ctx, payloads, wait)
}

// RejectionError is returned when the ledger refuses a batch. Errors is keyed
// by the offending payload path (for example "properties.weight") and feeds
// render.MapErrorPayload.
type RejectionError struct {
	Status  int                 `json:"-"`
	Message string              `json:"error"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func (e *RejectionError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "batch rejected"
	}
	if len(e.Errors) == 0 {
		return fmt.Sprintf("transaction: %s (status %d)", msg, e.Status)
	}
	keys := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("transaction: %s (status %d): %s", msg, e.Status, strings.Join(keys, ", "))
}

// StatusCode exposes the HTTP status reported by the ledger.
func (e *RejectionError) StatusCode() int {
	return e.Status
}
