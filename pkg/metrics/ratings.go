package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	RatingCreated = "created"
	RatingUpdated = "updated"
	RatingDeleted = "deleted"
)

// RatingMetrics counts rating writes by outcome.
type RatingMetrics struct {
	submissions *prometheus.CounterVec
}

func NewRatingMetrics(reg prometheus.Registerer) *RatingMetrics {
	if reg == nil {
		return &RatingMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rating_submissions_total",
		Help: "Rating writes by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(submissions)
	return &RatingMetrics{submissions: submissions}
}

func (m *RatingMetrics) Inc(outcome string) {
	if m == nil || m.submissions == nil {
		return
	}
	m.submissions.WithLabelValues(normalizeLabel(outcome)).Inc()
}
