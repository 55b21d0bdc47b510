// Package detectmetrics provides Prometheus metrics instrumentation for the
// detection engine's identify call path.
package detectmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	identifyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "protodetect_identify_total",
			Help: "Total number of identify calls",
		},
		[]string{"direction", "result"}, // result: matched, unknown
	)

	identifyDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "protodetect_identify_duration_seconds",
			Help:    "identify call duration in seconds",
			Buckets: []float64{0.000001, 0.00001, 0.0001, 0.001, 0.01, 0.1},
		},
		[]string{"direction"},
	)

	signaturesRegistered = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "protodetect_signatures_registered",
			Help: "Number of signatures registered per direction after the last Finalize",
		},
		[]string{"direction"},
	)
)

// RecordIdentify records one identify call's outcome and latency.
func RecordIdentify(direction string, matched bool, elapsed time.Duration) {
	result := "unknown"
	if matched {
		result = "matched"
	}
	identifyTotal.WithLabelValues(direction, result).Inc()
	identifyDurationSeconds.WithLabelValues(direction).Observe(elapsed.Seconds())
}

// SetSignaturesRegistered records the signature count for direction,
// typically called once after Finalize.
func SetSignaturesRegistered(direction string, count int) {
	signaturesRegistered.WithLabelValues(direction).Set(float64(count))
}

// Timer returns a function that records elapsed time on call. matched is
// read when the returned function runs, so callers can set it any time
// before Identify returns and defer the result.
func Timer(direction string, matched *bool) func() {
	start := time.Now()
	return func() {
		RecordIdentify(direction, *matched, time.Since(start))
	}
}
