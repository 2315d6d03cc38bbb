package transaction

import (
	"errors"
	"fmt"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-assetform/pkg/agents"
)

// PrometheusObserver exports submission and agent directory metrics.
type PrometheusObserver struct {
	duration *promclient.HistogramVec
	outcomes *promclient.CounterVec
	payloads promclient.Counter
}

// NewPrometheusObserver registers the assetform collectors on reg, reusing
// collectors that are already registered under the same names.
func NewPrometheusObserver(namespace string, reg promclient.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "assetform"
	}
	if reg == nil {
		reg = promclient.DefaultRegisterer
	}

	duration := promclient.NewHistogramVec(promclient.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Latency of ledger submissions and agent directory fetches.",
		Buckets:   promclient.DefBuckets,
	}, []string{"operation"})
	outcomes := promclient.NewCounterVec(promclient.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Count of ledger operations by outcome.",
	}, []string{"operation", "outcome"})
	payloads := promclient.NewCounter(promclient.CounterOpts{
		Namespace: namespace,
		Name:      "submitted_payloads_total",
		Help:      "Payloads included in committed batches.",
	})

	var err error
	o := &PrometheusObserver{}
	if o.duration, err = register(reg, duration); err != nil {
		return nil, fmt.Errorf("transaction: register duration histogram: %w", err)
	}
	if o.outcomes, err = register(reg, outcomes); err != nil {
		return nil, fmt.Errorf("transaction: register outcome counter: %w", err)
	}
	if o.payloads, err = register[promclient.Counter](reg, payloads); err != nil {
		return nil, fmt.Errorf("transaction: register payload counter: %w", err)
	}
	return o, nil
}

func register[C promclient.Collector](reg promclient.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are promclient.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveSubmission implements Observer.
func (o *PrometheusObserver) ObserveSubmission(duration time.Duration, payloads int, err error) {
	if o == nil {
		return
	}
	o.record("submit", duration, outcome(err))
	if err == nil {
		o.payloads.Add(float64(payloads))
	}
}

// ObserveDirectoryFetch implements agents.Observer.
func (o *PrometheusObserver) ObserveDirectoryFetch(duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.record("agents", duration, outcome(err))
}

func (o *PrometheusObserver) record(op string, duration time.Duration, result string) {
	o.duration.WithLabelValues(op).Observe(duration.Seconds())
	o.outcomes.WithLabelValues(op, result).Inc()
}

func outcome(err error) string {
	var rejection *RejectionError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &rejection):
		return "rejected"
	default:
		return "error"
	}
}

var (
	_ Observer        = (*PrometheusObserver)(nil)
	_ agents.Observer = (*PrometheusObserver)(nil)
)
