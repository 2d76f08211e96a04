package sync

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts sync cycles and the documents they touch.
type Metrics struct {
	cycles    *prometheus.CounterVec
	documents *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewMetrics creates the sync metrics and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cloudsync_sync_cycles_total",
			Help: "Counter for sync cycles by resource type, cloud and outcome.",
		}, []string{"resource_type", "cloud", "outcome"}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cloudsync_sync_documents_total",
			Help: "Counter for documents updated, deleted or inserted by sync cycles.",
		}, []string{"resource_type", "cloud", "action"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cloudsync_sync_cycle_duration_seconds",
			Help:    "Duration of sync cycles.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"resource_type", "cloud"}),
	}
	if reg != nil {
		reg.MustRegister(m.cycles, m.documents, m.duration)
	}
	return m
}

// observe records one finished cycle.
func (m *Metrics) observe(resourceType, cloud string, updated, deleted, inserted int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.cycles.WithLabelValues(resourceType, cloud, outcome).Inc()
	m.duration.WithLabelValues(resourceType, cloud).Observe(elapsed.Seconds())
	if err != nil {
		return
	}
	m.documents.WithLabelValues(resourceType, cloud, "updated").Add(float64(updated))
	m.documents.WithLabelValues(resourceType, cloud, "deleted").Add(float64(deleted))
	m.documents.WithLabelValues(resourceType, cloud, "inserted").Add(float64(inserted))
}
