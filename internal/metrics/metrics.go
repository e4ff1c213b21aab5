package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	askOutcome = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resyasks",
			Name:      "ask_outcome_total",
			Help:      "Count of processed asks by outcome.",
		},
		[]string{"outcome"},
	)

	platformErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resyasks",
			Name:      "platform_errors_total",
			Help:      "Count of failed reservation platform calls by operation.",
		},
		[]string{"op"},
	)

	venueResolution = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resyasks",
			Name:      "venue_resolution_total",
			Help:      "Count of venue name lookups by result.",
		},
		[]string{"result"},
	)

	passDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "resyasks",
			Name:      "pass_duration_seconds",
			Help:      "Duration of one engine pass over a credential context.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(askOutcome, platformErrors, venueResolution, passDuration)
	})
}

func IncAskOutcome(outcome string) {
	askOutcome.WithLabelValues(outcome).Inc()
}

func IncPlatformError(op string) {
	platformErrors.WithLabelValues(op).Inc()
}

func IncVenueResolution(result string) {
	venueResolution.WithLabelValues(result).Inc()
}

func ObservePass(d time.Duration) {
	passDuration.Observe(d.Seconds())
}
