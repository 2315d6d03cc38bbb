package transaction

import (
	"errors"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusObserver_RecordsOutcomes(t *testing.T) {
	reg := promclient.NewRegistry()
	obs, err := NewPrometheusObserver("test", reg)
	if err != nil {
		t.Fatalf("new observer: %v", err)
	}

	obs.ObserveSubmission(time.Second, 3, nil)
	obs.ObserveSubmission(time.Second, 1, &RejectionError{Status: 400})
	obs.ObserveSubmission(time.Second, 1, errors.New("boom"))
	obs.ObserveDirectoryFetch(time.Millisecond, nil)

	if got := testutil.ToFloat64(obs.payloads); got != 3 {
		t.Fatalf("expected 3 submitted payloads, got %v", got)
	}
	for _, tc := range []struct {
		op, outcome string
		want        float64
	}{
		{"submit", "ok", 1},
		{"submit", "rejected", 1},
		{"submit", "error", 1},
		{"agents", "ok", 1},
	} {
		if got := testutil.ToFloat64(obs.outcomes.WithLabelValues(tc.op, tc.outcome)); got != tc.want {
			t.Fatalf("%s/%s = %v, want %v", tc.op, tc.outcome, got, tc.want)
		}
	}
}

func TestPrometheusObserver_ReusesRegisteredCollectors(t *testing.T) {
	reg := promclient.NewRegistry()
	first, err := NewPrometheusObserver("test", reg)
	if err != nil {
		t.Fatalf("first observer: %v", err)
	}
	second, err := NewPrometheusObserver("test", reg)
	if err != nil {
		t.Fatalf("second observer: %v", err)
	}

	first.ObserveSubmission(time.Second, 2, nil)
	if got := testutil.ToFloat64(second.payloads); got != 2 {
		t.Fatalf("expected shared counter, got %v", got)
	}
}

func TestPrometheusObserver_NilSafe(t *testing.T) {
	var obs *PrometheusObserver
	obs.ObserveSubmission(time.Second, 1, nil)
	obs.ObserveDirectoryFetch(time.Second, nil)
}
