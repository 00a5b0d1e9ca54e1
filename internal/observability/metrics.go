package observability

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
)

var (
	registerOnce sync.Once

	decodeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bitsctl",
			Subsystem: "decode",
			Name:      "total",
			Help:      "Transmissions decoded, by outcome.",
		},
		[]string{"outcome"},
	)
	evalErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bitsctl",
			Subsystem: "eval",
			Name:      "errors_total",
			Help:      "Decoded transmissions whose value could not be computed.",
		},
	)
	decodeBits = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "bitsctl",
			Subsystem: "decode",
			Name:      "bits",
			Help:      "Bits consumed by the root packet of a transmission.",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 8),
		},
	)
	decodeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "bitsctl",
			Subsystem: "decode",
			Name:      "duration_seconds",
			Help:      "Transmission decode duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(decodeTotal, evalErrors, decodeBits, decodeDuration)
	})
}

// RecordDecode counts one decode attempt. bits is ignored unless the
// outcome is OutcomeOK.
func RecordDecode(outcome string, bits int, duration time.Duration) {
	RegisterMetrics()
	decodeTotal.WithLabelValues(outcome).Inc()
	decodeDuration.Observe(duration.Seconds())
	if outcome == OutcomeOK {
		decodeBits.Observe(float64(bits))
	}
}

// RecordEvalFailure counts a decoded transmission whose value could not
// be computed. The decode itself was already counted as OutcomeOK.
func RecordEvalFailure() {
	RegisterMetrics()
	evalErrors.Inc()
}

// WriteMetricsFile dumps the default registry in the text exposition
// format, replacing path atomically.
func WriteMetricsFile(path string) error {
	RegisterMetrics()
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
