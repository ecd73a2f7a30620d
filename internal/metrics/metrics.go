package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "weathersnapshot"

// Run statuses used as the status label on RunsTotal.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics holds the collectors for snapshot runs on a private registry, so
// a one-shot process exports only what it recorded.
type Metrics struct {
	Registry *prometheus.Registry

	RunsTotal          *prometheus.CounterVec
	ConnectAttempts    prometheus.Counter
	ReadingsFetched    prometheus.Gauge
	QualityFlags       *prometheus.CounterVec
	NewestReadingAge   prometheus.Gauge
	LastSuccess        prometheus.Gauge
	RunDurationSeconds prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total snapshot runs by outcome",
			},
			[]string{"status"},
		),

		ConnectAttempts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connect_attempts_total",
			Help:      "Total database connection attempts",
		}),

		ReadingsFetched: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "readings_fetched",
			Help:      "Readings returned by the last fetch",
		}),

		QualityFlags: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "quality_flags_total",
				Help:      "Quality flags raised on fetched readings",
			},
			[]string{"flag"},
		),

		NewestReadingAge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "newest_reading_age_seconds",
			Help:      "Age of the newest fetched reading",
		}),

		LastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}),

		RunDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Snapshot run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 15, 30, 60},
		}),
	}
}

// ObserveRun records the outcome and duration of one run.
func (m *Metrics) ObserveRun(err error, started, finished time.Time) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	} else {
		m.LastSuccess.Set(float64(finished.Unix()))
	}
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDurationSeconds.Observe(finished.Sub(started).Seconds())
}

// WriteTextfile writes the registry in the text exposition format for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
