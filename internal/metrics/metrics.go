package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the workspace counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	mutations       *prometheus.CounterVec
	persists        prometheus.Counter
	persistFailures prometheus.Counter
	drops           *prometheus.CounterVec
	requests        *prometheus.CounterVec
}

// New creates the counters and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promark_document_mutations_total",
				Help: "Document mutations applied, by operation.",
			},
			[]string{"op"},
		),
		persists: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "promark_persist_writes_total",
			Help: "Document snapshots written to the store.",
		}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "promark_persist_failures_total",
			Help: "Store writes that failed and were absorbed.",
		}),
		drops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promark_drops_total",
				Help: "Dropped files by outcome.",
			},
			[]string{"outcome"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
	}

	for _, c := range []prometheus.Collector{m.mutations, m.persists, m.persistFailures, m.drops, m.requests} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Mutation(op string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op).Inc()
}

func (m *Metrics) Persisted() {
	if m == nil {
		return
	}
	m.persists.Inc()
}

func (m *Metrics) PersistFailed() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

// Drop records a drop outcome: rejected, queued, applied or failed.
func (m *Metrics) Drop(outcome string) {
	if m == nil {
		return
	}
	m.drops.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Request(method, path, status string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, path, status).Inc()
}
