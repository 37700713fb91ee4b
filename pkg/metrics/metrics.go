package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/williamokano/gfs_rotator/pkg/rotation"
)

// Metrics contains the Prometheus collectors fed by rotation reports
type Metrics struct {
	classified    *prometheus.GaugeVec
	pruned        *prometheus.CounterVec
	pruneFailures *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	lastRotation  *prometheus.GaugeVec
}

// New registers the rotation collectors on reg under namespace
func New(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		classified: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "backups_classified",
				Help:      "Backups per retention tier in the latest rotation",
			},
			[]string{"database", "store", "tier"},
		),

		pruned: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backups_pruned_total",
				Help:      "Total number of backups deleted by rotation",
			},
			[]string{"database", "store"},
		),

		pruneFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "prune_failures_total",
				Help:      "Total number of backups rotation failed to delete",
			},
			[]string{"database", "store"},
		),

		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rotation_duration_seconds",
				Help:      "Duration of a rotation run against one store",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"database", "store"},
		),

		lastRotation: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_rotation_timestamp_seconds",
				Help:      "Unix time of the latest completed rotation",
			},
			[]string{"database", "store"},
		),
	}
}

// Observe records a rotation report. Dry runs update the tier gauges only.
func (m *Metrics) Observe(report rotation.Report) {
	if m == nil {
		return
	}

	labels := prometheus.Labels{"database": report.Database, "store": report.Store}

	if report.Classified != nil {
		for tier, n := range rotation.CountByTier(report.Classified) {
			m.classified.WithLabelValues(report.Database, report.Store, string(tier)).Set(float64(n))
		}
	}

	m.duration.With(labels).Observe(report.Duration.Seconds())

	if report.DryRun {
		return
	}

	m.pruned.With(labels).Add(float64(len(report.Deleted)))
	m.pruneFailures.With(labels).Add(float64(len(report.Failed)))
	m.lastRotation.With(labels).Set(float64(report.Started.Add(report.Duration).Unix()))
}
