package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the scan token module.
type Metrics struct {
	Issued          prometheus.Counter
	ConsumeOutcomes *prometheus.CounterVec
	ReplaysDetected prometheus.Counter
}

// New creates and registers all scan token metrics.
func New() *Metrics {
	return &Metrics{
		Issued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trustgate_tokens_issued_total",
			Help: "Total scan tokens issued",
		}),
		ConsumeOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trustgate_token_consume_outcomes_total",
			Help: "Consumption attempt outcomes by status",
		}, []string{"status"}),
		ReplaysDetected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trustgate_token_replays_total",
			Help: "Payload replays caught by the scan log window",
		}),
	}
}

// IncrementConsume records a consumption outcome.
func (m *Metrics) IncrementConsume(status string) {
	if m != nil {
		m.ConsumeOutcomes.WithLabelValues(status).Inc()
	}
}

// IncrementIssued records a successful issuance.
func (m *Metrics) IncrementIssued() {
	if m != nil {
		m.Issued.Inc()
	}
}

// IncrementReplay records a replay caught by the scan log.
func (m *Metrics) IncrementReplay() {
	if m != nil {
		m.ReplaysDetected.Inc()
	}
}
