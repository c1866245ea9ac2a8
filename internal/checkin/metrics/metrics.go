package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the check-in pipeline.
type Metrics struct {
	Decisions  *prometheus.CounterVec
	RiskScores prometheus.Histogram
}

// New creates and registers all check-in metrics.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trustgate_checkin_decisions_total",
			Help: "Check-in decisions by mode and outcome",
		}, []string{"mode", "decision"}),
		RiskScores: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "trustgate_checkin_risk_score",
			Help:    "Distribution of computed risk scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
	}
}

// ObserveDecision records one adjudicated check-in.
func (m *Metrics) ObserveDecision(mode, decision string, score float64) {
	if m != nil {
		m.Decisions.WithLabelValues(mode, decision).Inc()
		m.RiskScores.Observe(score)
	}
}
