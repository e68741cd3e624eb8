package scheduler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/notexe/dailybell/internal/reminder"
)

// Metrics holds the scheduler's Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	scans        prometheus.Counter
	scanErrors   prometheus.Counter
	fired        *prometheus.CounterVec
	scanDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		scans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dailybell",
			Name:      "scans_total",
			Help:      "Number of completed reminder sweeps.",
		}),
		scanErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dailybell",
			Name:      "scan_errors_total",
			Help:      "Number of sweeps whose result could not be persisted.",
		}),
		fired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dailybell",
			Name:      "reminders_fired_total",
			Help:      "Number of reminders fired, by repeat mode.",
		}, []string{"repeat"}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dailybell",
			Name:      "scan_duration_seconds",
			Help:      "Time spent sweeping and persisting the reminder collection.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}
	reg.MustRegister(m.scans, m.scanErrors, m.fired, m.scanDuration)
	return m
}

func (m *Metrics) observeScan(d time.Duration, fired []reminder.Fired, err error) {
	if m == nil {
		return
	}
	m.scans.Inc()
	m.scanDuration.Observe(d.Seconds())
	if err != nil {
		m.scanErrors.Inc()
	}
	for _, f := range fired {
		m.fired.WithLabelValues(string(f.Repeat)).Inc()
	}
}
