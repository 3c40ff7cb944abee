package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the evidence engine. All methods are
// safe on a nil receiver.
type Metrics struct {
	// Lifecycle transitions by operation and outcome
	Operations *prometheus.CounterVec

	// Records that failed integrity verification on load
	IntegrityFailures prometheus.Counter

	// Backdating delay of newly created records, in days
	DaysDelayed prometheus.Histogram

	// Pack builds and their sizes
	PacksBuilt      prometheus.Counter
	PackRecordCount prometheus.Histogram

	// Snapshot load latency
	SnapshotLatency prometheus.Histogram
}

// New registers the evidence metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "evidentia_operations_total",
			Help: "Evidence operations by name and outcome",
		}, []string{"operation", "outcome"}), // outcome: "ok" or an error code

		IntegrityFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "evidentia_integrity_failures_total",
			Help: "Stored records or ledgers that failed integrity verification",
		}),

		DaysDelayed: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "evidentia_record_days_delayed",
			Help:    "Days between logical date and capture for new records",
			Buckets: []float64{0, 1, 2, 3, 7, 14, 30, 90},
		}),

		PacksBuilt: f.NewCounter(prometheus.CounterOpts{
			Name: "evidentia_packs_built_total",
			Help: "Submission packs built",
		}),

		PackRecordCount: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "evidentia_pack_record_count",
			Help:    "Records referenced by each built pack",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),

		SnapshotLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "evidentia_snapshot_duration_seconds",
			Help:    "Duration of loading and verifying a profile snapshot",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncOperation records one operation outcome.
func (m *Metrics) IncOperation(operation, outcome string) {
	if m != nil {
		m.Operations.WithLabelValues(operation, outcome).Inc()
	}
}

func (m *Metrics) AddIntegrityFailures(n int) {
	if m != nil && n > 0 {
		m.IntegrityFailures.Add(float64(n))
	}
}

func (m *Metrics) ObserveDaysDelayed(days int) {
	if m != nil {
		m.DaysDelayed.Observe(float64(days))
	}
}

func (m *Metrics) ObservePack(records int) {
	if m != nil {
		m.PacksBuilt.Inc()
		m.PackRecordCount.Observe(float64(records))
	}
}

func (m *Metrics) ObserveSnapshotLatency(d time.Duration) {
	if m != nil {
		m.SnapshotLatency.Observe(d.Seconds())
	}
}
