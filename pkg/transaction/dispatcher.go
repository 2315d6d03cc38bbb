package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/goliatone/go-assetform/pkg/ledger"
)

// ErrSubmissionInFlight is returned when Submit is called while a batch from
// the same dispatcher is still pending.
var ErrSubmissionInFlight = errors.New("transaction: submission already in flight")

// Status is the dispatcher's position in the submission lifecycle.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusConfirmed  Status = "confirmed"
	StatusNavigated  Status = "navigated"
	StatusFailed     Status = "failed"
)

// Navigator changes the client-visible route after a successful submission.
type Navigator interface {
	SetRoute(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

// SetRoute implements Navigator.
func (fn NavigatorFunc) SetRoute(path string) { fn(path) }

// Observer receives one call per finished submission.
type Observer interface {
	ObserveSubmission(duration time.Duration, payloads int, err error)
}

// AssetRoute is the detail route of a record.
func AssetRoute(recordID string) string {
	return "/assets/" + url.PathEscape(recordID)
}

// Dispatcher submits a record and its proposals as one batch. One dispatcher
// belongs to one form instance.
type Dispatcher struct {
	submitter Submitter
	navigator Navigator
	observer  Observer
	logger    *slog.Logger
	route     func(recordID string) string
	listeners []func(Status)
	now       func() time.Time

	mu      sync.Mutex
	status  Status
	lastErr error
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithNavigator sets the route target used after a confirmed submission.
func WithNavigator(nav Navigator) DispatcherOption {
	return func(d *Dispatcher) {
		d.navigator = nav
	}
}

// WithObserver registers a submission observer.
func WithObserver(observer Observer) DispatcherOption {
	return func(d *Dispatcher) {
		d.observer = observer
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithRoute overrides how a record id becomes a route.
func WithRoute(fn func(recordID string) string) DispatcherOption {
	return func(d *Dispatcher) {
		if fn != nil {
			d.route = fn
		}
	}
}

// WithStatusListener is called on every status transition, for example to
// disable the submit control while a batch is pending.
func WithStatusListener(fn func(Status)) DispatcherOption {
	return func(d *Dispatcher) {
		if fn != nil {
			d.listeners = append(d.listeners, fn)
		}
	}
}

// WithClock overrides the clock used for submission timings.
func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// NewDispatcher constructs a Dispatcher in the idle state.
func NewDispatcher(submitter Submitter, options ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		submitter: submitter,
		logger:    slog.Default(),
		route:     AssetRoute,
		now:       time.Now,
		status:    StatusIdle,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(d)
	}
	return d
}

// Status returns the current lifecycle status.
func (d *Dispatcher) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// LastError returns the error of the most recent failed submission.
func (d *Dispatcher) LastError() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// Submit sends [record, proposals...] with wait=true and, once committed,
// routes to the record's detail page. A failed submission returns the
// dispatcher to idle so the user can retry; nothing is retried automatically.
func (d *Dispatcher) Submit(ctx context.Context, record ledger.RecordPayload, proposals []ledger.ProposalPayload) error {
	if d == nil || d.submitter == nil {
		return errors.New("transaction: dispatcher has no submitter")
	}

	d.mu.Lock()
	if d.status == StatusSubmitting {
		d.mu.Unlock()
		return ErrSubmissionInFlight
	}
	d.status = StatusSubmitting
	d.lastErr = nil
	d.mu.Unlock()
	d.emit(StatusSubmitting)

	payloads := make([]ledger.Payload, 0, len(proposals)+1)
	payloads = append(payloads, record)
	for _, proposal := range proposals {
		payloads = append(payloads, proposal)
	}

	start := d.now()
	err := d.submitter.Submit(ctx, payloads, true)
	if d.observer != nil {
		d.observer.ObserveSubmission(d.now().Sub(start), len(payloads), err)
	}

	if err != nil {
		d.logger.Warn("asset submission failed", "record", record.RecordID, "payloads", len(payloads), "error", err)
		d.transition(StatusFailed, err)
		d.transition(StatusIdle, err)
		return fmt.Errorf("transaction: submit %s: %w", record.RecordID, err)
	}

	d.logger.Info("asset submitted", "record", record.RecordID, "payloads", len(payloads))
	d.transition(StatusConfirmed, nil)

	route := d.route(record.RecordID)
	if d.navigator != nil {
		d.navigator.SetRoute(route)
	}
	d.transition(StatusNavigated, nil)
	return nil
}

func (d *Dispatcher) transition(status Status, err error) {
	d.mu.Lock()
	d.status = status
	if err != nil {
		d.lastErr = err
	}
	d.mu.Unlock()
	d.emit(status)
}

func (d *Dispatcher) emit(status Status) {
	for _, fn := range d.listeners {
		fn(status)
	}
}
