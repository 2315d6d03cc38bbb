package transaction

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-assetform/pkg/ledger"
)

func TestClientSubmit_PostsBatch(t *testing.T) {
	var (
		gotPath  string
		gotQuery string
		gotKey   string
		gotBody  map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("X-Public-Key")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL+"/",
		WithPublicKey("PUB"),
		WithClientClock(func() time.Time { return time.UnixMilli(1700000000000) }),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	payloads := []ledger.Payload{sampleRecord(), sampleProposals()[0]}
	if err := client.Submit(context.Background(), payloads, true); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if gotPath != "/transactions" || gotQuery != "wait=true" {
		t.Fatalf("unexpected endpoint %s?%s", gotPath, gotQuery)
	}
	if gotKey != "PUB" {
		t.Fatalf("unexpected public key header %q", gotKey)
	}
	if gotBody["timestamp"] != float64(1700000000000) {
		t.Fatalf("unexpected timestamp %v", gotBody["timestamp"])
	}
	list, _ := gotBody["payloads"].([]any)
	if len(list) != 2 {
		t.Fatalf("expected two payloads, got %v", gotBody["payloads"])
	}
	first, _ := list[0].(map[string]any)
	second, _ := list[1].(map[string]any)
	if first["action"] != "CREATE_RECORD" || second["action"] != "CREATE_PROPOSAL" {
		t.Fatalf("unexpected payload order %v", list)
	}
}

func TestClientSubmit_NoWaitOmitsQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL)
	if err := client.Submit(context.Background(), []ledger.Payload{sampleRecord()}, false); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if gotQuery != "" {
		t.Fatalf("expected no query, got %q", gotQuery)
	}
}

func TestClientSubmit_DecodesRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid record","errors":{"properties.weight":["must be positive"]}}`))
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL)
	err := client.Submit(context.Background(), []ledger.Payload{sampleRecord()}, true)

	var rejection *RejectionError
	if !errors.As(err, &rejection) {
		t.Fatalf("expected RejectionError, got %v", err)
	}
	want := &RejectionError{
		Status:  http.StatusBadRequest,
		Message: "invalid record",
		Errors:  map[string][]string{"properties.weight": {"must be positive"}},
	}
	if diff := cmp.Diff(want, rejection); diff != "" {
		t.Fatalf("rejection mismatch (-want +got):\n%s", diff)
	}
}

func TestClientSubmit_PlainTextRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "ledger unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL)
	err := client.Submit(context.Background(), []ledger.Payload{sampleRecord()}, true)

	var rejection *RejectionError
	if !errors.As(err, &rejection) {
		t.Fatalf("expected RejectionError, got %v", err)
	}
	if rejection.StatusCode() != http.StatusServiceUnavailable || rejection.Message != "ledger unavailable" {
		t.Fatalf("unexpected rejection %#v", rejection)
	}
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatalf("expected error for empty base url")
	}
}

func TestClientSubmit_EmptyBatch(t *testing.T) {
	client, _ := NewClient("http://ledger.invalid")
	if err := client.Submit(context.Background(), nil, true); err == nil {
		t.Fatalf("expected error for empty batch")
	}
}
