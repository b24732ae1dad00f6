package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// VerificationMetrics counts consultation verification outcomes
type VerificationMetrics struct {
	Decisions *prometheus.CounterVec
	Scores    prometheus.Histogram
}

// NewVerificationMetrics registers the collectors with reg
func NewVerificationMetrics(reg prometheus.Registerer) *VerificationMetrics {
	factory := promauto.With(reg)
	return &VerificationMetrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "consultation_verifications_total",
			Help: "Total number of consultation verification decisions",
		}, []string{"outcome", "reason"}),
		Scores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "consultation_verification_score",
			Help:    "Scores returned by the verification provider",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		}),
	}
}

func (m *VerificationMetrics) observe(d VerificationDecision) {
	if m == nil {
		return
	}
	outcome := "rejected"
	if d.Allowed {
		outcome = "allowed"
	}
	m.Decisions.WithLabelValues(outcome, string(d.Reason)).Inc()
	if d.Score != nil {
		m.Scores.Observe(*d.Score)
	}
}
