package agents

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestClient_FetchesAgentsWithPublicKey(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/agents" {
			http.NotFound(w, r)
			return
		}
		gotKey = r.Header.Get(PublicKeyHeader)
		_ = json.NewEncoder(w).Encode(sampleAgents)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL+"/api/", WithPublicKey("02aa"), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	list, err := client.Agents(context.Background())
	if err != nil {
		t.Fatalf("agents: %v", err)
	}
	if diff := cmp.Diff(sampleAgents, list); diff != "" {
		t.Fatalf("agents mismatch (-want +got):\n%s", diff)
	}
	if gotKey != "02aa" {
		t.Fatalf("expected public key header, got %q", gotKey)
	}
}

func TestClient_UnexpectedStatusIsRejectError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Agents(context.Background())
	var rejected *RejectError
	if !errors.As(err, &rejected) || rejected.StatusCode() != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 RejectError, got %v", err)
	}
	if !strings.Contains(err.Error(), "nope") {
		t.Fatalf("expected upstream body in error, got %v", err)
	}
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatalf("expected error for empty base url")
	}
}

type countingDirectory struct {
	calls atomic.Int32
	list  []Agent
}

func (c *countingDirectory) Agents(context.Context) ([]Agent, error) {
	c.calls.Add(1)
	return c.list, nil
}

func (c *countingDirectory) PublicKey() string { return "02aa" }

type recordingObserver struct{ fetches int }

func (r *recordingObserver) ObserveDirectoryFetch(time.Duration, error) { r.fetches++ }

func TestCachedDirectory_ServesWithinTTL(t *testing.T) {
	inner := &countingDirectory{list: sampleAgents}
	now := time.Unix(1700000000, 0)
	observer := &recordingObserver{}
	cached := NewCachedDirectory(inner,
		WithTTL(time.Minute),
		WithClock(func() time.Time { return now }),
		WithObserver(observer),
	)

	for i := 0; i < 3; i++ {
		if _, err := cached.Agents(context.Background()); err != nil {
			t.Fatalf("agents: %v", err)
		}
	}
	if got := inner.calls.Load(); got != 1 {
		t.Fatalf("expected 1 upstream call, got %d", got)
	}

	now = now.Add(2 * time.Minute)
	if _, err := cached.Agents(context.Background()); err != nil {
		t.Fatalf("agents: %v", err)
	}
	if got := inner.calls.Load(); got != 2 {
		t.Fatalf("expected refresh after ttl, got %d calls", got)
	}

	cached.Invalidate()
	if _, err := cached.Agents(context.Background()); err != nil {
		t.Fatalf("agents: %v", err)
	}
	if got := inner.calls.Load(); got != 3 {
		t.Fatalf("expected refresh after invalidate, got %d calls", got)
	}
	if observer.fetches != 3 {
		t.Fatalf("expected 3 observed fetches, got %d", observer.fetches)
	}
	if cached.PublicKey() != "02aa" {
		t.Fatalf("public key not forwarded")
	}
}

func TestCachedDirectory_ReturnsCopies(t *testing.T) {
	cached := NewCachedDirectory(&countingDirectory{list: []Agent{{Name: "A", Key: "1"}}})

	first, _ := cached.Agents(context.Background())
	first[0].Name = "mutated"

	second, _ := cached.Agents(context.Background())
	if second[0].Name != "A" {
		t.Fatalf("cache entry was mutated through returned slice")
	}
}

// gatedDirectory blocks each fetch until release is closed and fails if the
// fetch context ends first.
type gatedDirectory struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (g *gatedDirectory) Agents(ctx context.Context) ([]Agent, error) {
	g.calls.Add(1)
	g.started <- struct{}{}
	select {
	case <-g.release:
		return sampleAgents, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *gatedDirectory) PublicKey() string { return "02aa" }

func TestCachedDirectory_CancelledCallerDoesNotFailSharedFetch(t *testing.T) {
	inner := &gatedDirectory{started: make(chan struct{}, 2), release: make(chan struct{})}
	cached := NewCachedDirectory(inner)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cached.Agents(ctx)
		firstErr <- err
	}()
	<-inner.started

	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller: expected context.Canceled, got %v", err)
	}

	type result struct {
		list []Agent
		err  error
	}
	second := make(chan result, 1)
	go func() {
		list, err := cached.Agents(context.Background())
		second <- result{list, err}
	}()
	close(inner.release)

	got := <-second
	if got.err != nil {
		t.Fatalf("live caller: %v", got.err)
	}
	if diff := cmp.Diff(sampleAgents, got.list); diff != "" {
		t.Fatalf("agents mismatch (-want +got):\n%s", diff)
	}
	if calls := inner.calls.Load(); calls != 1 {
		t.Fatalf("expected one shared upstream fetch, got %d", calls)
	}
}
