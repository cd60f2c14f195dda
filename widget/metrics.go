package widget

import (
	"time"

	"github.com/indieinfra/dropper/dropzone"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Metrics counts upload outcomes and rejected files. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	uploadsTotal   *prometheus.CounterVec
	uploadDuration prometheus.Histogram
	rejectedTotal  *prometheus.CounterVec
}

// NewMetrics registers the widget collectors on reg. A nil registry uses
// prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "dropper"
	}

	factory := promauto.With(reg)

	return &Metrics{
		uploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Total number of settled uploads by outcome",
		}, []string{"outcome"}),

		uploadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_duration_seconds",
			Help:      "Time from request start to settlement in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		rejectedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_rejected_total",
			Help:      "Total number of dropped files rejected by the zone, by reason",
		}, []string{"code"}),
	}
}

func (m *Metrics) observeUpload(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.uploadsTotal.WithLabelValues(outcome).Inc()
	m.uploadDuration.Observe(d.Seconds())
}

func (m *Metrics) observeRejection(code dropzone.ErrorCode) {
	if m == nil {
		return
	}
	m.rejectedTotal.WithLabelValues(string(code)).Inc()
}
