package waitlist

import (
	"errors"

	apperrors "github.com/akeren/multiverse-waitlist/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeCreated   = "created"
	outcomeDuplicate = "duplicate"
	outcomeInvalid   = "invalid"
	outcomeError     = "error"
)

type submissionMetrics struct {
	outcomes *prometheus.CounterVec
}

// newSubmissionMetrics reuses an already registered counter so the controller can be mounted on a shared registry.
func newSubmissionMetrics(reg prometheus.Registerer) *submissionMetrics {
	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waitlist_submissions_total",
			Help: "Waitlist submissions by outcome.",
		},
		[]string{"outcome"},
	)

	if reg != nil {
		if err := reg.Register(counter); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
					counter = existing
				}
			}
		}
	}

	for _, outcome := range []string{outcomeCreated, outcomeDuplicate, outcomeInvalid, outcomeError} {
		counter.WithLabelValues(outcome)
	}

	return &submissionMetrics{outcomes: counter}
}

func (m *submissionMetrics) observe(outcome string) {
	m.outcomes.WithLabelValues(outcome).Inc()
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return outcomeCreated
	case IsDuplicate(err):
		return outcomeDuplicate
	case apperrors.IsType(err, apperrors.ErrorTypeInvalidRequest):
		return outcomeInvalid
	default:
		return outcomeError
	}
}
