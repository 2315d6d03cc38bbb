package transaction

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-assetform/pkg/ledger"
)

type recordingSubmitter struct {
	mu      sync.Mutex
	batches [][]ledger.Payload
	waits   []bool
	err     error
	release chan struct{}
	entered chan struct{}
}

func (s *recordingSubmitter) Submit(ctx context.Context, payloads []ledger.Payload, wait bool) error {
	s.mu.Lock()
	s.batches = append(s.batches, payloads)
	s.waits = append(s.waits, wait)
	s.mu.Unlock()
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.err
}

type routeRecorder struct {
	routes []string
}

func (r *routeRecorder) SetRoute(path string) {
	r.routes = append(r.routes, path)
}

func sampleRecord() ledger.RecordPayload {
	return ledger.RecordPayload{
		Action:     ledger.ActionCreateRecord,
		RecordID:   "LOT1",
		RecordType: "asset",
		Properties: []ledger.PropertyValue{{Name: "type", DataType: ledger.DataTypeString, StringValue: "chicken"}},
	}
}

func sampleProposals() []ledger.ProposalPayload {
	return []ledger.ProposalPayload{
		{Action: ledger.ActionCreateProposal, RecordID: "LOT1", ReceivingAgent: "K1", Role: ledger.RoleReporter, Properties: []string{"weight"}},
		{Action: ledger.ActionCreateProposal, RecordID: "LOT1", ReceivingAgent: "K2", Role: ledger.RoleReporter, Properties: []string{"location"}},
	}
}

func TestDispatcherSubmit_SendsOneBatchAndNavigates(t *testing.T) {
	sub := &recordingSubmitter{}
	nav := &routeRecorder{}
	var statuses []Status
	d := NewDispatcher(sub, WithNavigator(nav), WithStatusListener(func(s Status) {
		statuses = append(statuses, s)
	}))

	if err := d.Submit(context.Background(), sampleRecord(), sampleProposals()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	want := []ledger.Payload{sampleRecord(), sampleProposals()[0], sampleProposals()[1]}
	if len(sub.batches) != 1 {
		t.Fatalf("expected one batch, got %d", len(sub.batches))
	}
	if diff := cmp.Diff(want, sub.batches[0]); diff != "" {
		t.Fatalf("batch mismatch (-want +got):\n%s", diff)
	}
	if !sub.waits[0] {
		t.Fatalf("expected wait=true")
	}
	if diff := cmp.Diff([]string{"/assets/LOT1"}, nav.routes); diff != "" {
		t.Fatalf("routes mismatch (-want +got):\n%s", diff)
	}
	wantStatuses := []Status{StatusSubmitting, StatusConfirmed, StatusNavigated}
	if diff := cmp.Diff(wantStatuses, statuses); diff != "" {
		t.Fatalf("status transitions mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatcherSubmit_FailureReturnsToIdleWithoutNavigating(t *testing.T) {
	cause := errors.New("ledger offline")
	sub := &recordingSubmitter{err: cause}
	nav := &routeRecorder{}
	var statuses []Status
	d := NewDispatcher(sub, WithNavigator(nav), WithStatusListener(func(s Status) {
		statuses = append(statuses, s)
	}))

	err := d.Submit(context.Background(), sampleRecord(), nil)
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if len(nav.routes) != 0 {
		t.Fatalf("unexpected navigation %v", nav.routes)
	}
	if d.Status() != StatusIdle {
		t.Fatalf("expected idle after failure, got %s", d.Status())
	}
	if !errors.Is(d.LastError(), cause) {
		t.Fatalf("expected last error recorded, got %v", d.LastError())
	}
	if diff := cmp.Diff([]Status{StatusSubmitting, StatusFailed, StatusIdle}, statuses); diff != "" {
		t.Fatalf("status transitions mismatch (-want +got):\n%s", diff)
	}

	sub.err = nil
	if err := d.Submit(context.Background(), sampleRecord(), nil); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(sub.batches) != 2 {
		t.Fatalf("expected retry to submit, got %d batches", len(sub.batches))
	}
}

func TestDispatcherSubmit_RejectsWhileInFlight(t *testing.T) {
	sub := &recordingSubmitter{
		release: make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	d := NewDispatcher(sub)

	done := make(chan error, 1)
	go func() {
		done <- d.Submit(context.Background(), sampleRecord(), nil)
	}()

	select {
	case <-sub.entered:
	case <-time.After(time.Second):
		t.Fatalf("first submission did not start")
	}

	if d.Status() != StatusSubmitting {
		t.Fatalf("expected submitting, got %s", d.Status())
	}
	if err := d.Submit(context.Background(), sampleRecord(), nil); !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("expected ErrSubmissionInFlight, got %v", err)
	}

	close(sub.release)
	if err := <-done; err != nil {
		t.Fatalf("first submission: %v", err)
	}
	if len(sub.batches) != 1 {
		t.Fatalf("expected only one batch, got %d", len(sub.batches))
	}
}

type observerFunc func(time.Duration, int, error)

func (fn observerFunc) ObserveSubmission(d time.Duration, n int, err error) { fn(d, n, err) }

func TestDispatcherSubmit_ObservesDuration(t *testing.T) {
	ticks := []time.Time{time.Unix(0, 0), time.Unix(2, 0)}
	clock := func() time.Time {
		next := ticks[0]
		ticks = ticks[1:]
		return next
	}
	var gotDuration time.Duration
	var gotPayloads int
	d := NewDispatcher(&recordingSubmitter{},
		WithClock(clock),
		WithObserver(observerFunc(func(dur time.Duration, n int, err error) {
			gotDuration, gotPayloads = dur, n
		})),
	)

	if err := d.Submit(context.Background(), sampleRecord(), sampleProposals()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if gotDuration != 2*time.Second || gotPayloads != 3 {
		t.Fatalf("unexpected observation duration=%s payloads=%d", gotDuration, gotPayloads)
	}
}

func TestDispatcherSubmit_CustomRouteAndEscaping(t *testing.T) {
	nav := &routeRecorder{}
	d := NewDispatcher(&recordingSubmitter{}, WithNavigator(NavigatorFunc(nav.SetRoute)))

	record := sampleRecord()
	record.RecordID = "LOT 1/a"
	if err := d.Submit(context.Background(), record, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if diff := cmp.Diff([]string{"/assets/LOT%201%2Fa"}, nav.routes); diff != "" {
		t.Fatalf("routes mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatcherSubmit_NoSubmitter(t *testing.T) {
	if err := NewDispatcher(nil).Submit(context.Background(), sampleRecord(), nil); err == nil {
		t.Fatalf("expected error without submitter")
	}
}
