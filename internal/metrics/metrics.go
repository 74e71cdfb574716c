package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors of one process. A nil *Metrics is valid and
// records nothing, which keeps tests free of registry plumbing.
type Metrics struct {
	PipelineRuns   *prometheus.CounterVec
	Contacts       *prometheus.CounterVec
	UpstreamErrors *prometheus.CounterVec
	Inference      *prometheus.HistogramVec
	Notifications  *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		PipelineRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contactgw_pipeline_runs_total",
				Help: "Normalization runs by the stage that produced the result",
			},
			[]string{"path"}, // ai|rules
		),
		Contacts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contactgw_contacts_total",
				Help: "Contacts accepted or rejected by cleaning path",
			},
			[]string{"outcome", "path"}, // accepted|rejected , ai|rules
		),
		UpstreamErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contactgw_upstream_errors_total",
				Help: "Bulk AI pass failures that triggered the rule-based fallback",
			},
			[]string{"reason"}, // backend|malformed|empty
		),
		Inference: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "contactgw_inference_seconds",
				Help:    "Latency of single-shot completion calls",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 90},
			},
			[]string{"backend", "result"}, // ok|error
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contactgw_notifications_total",
				Help: "Missing-phone notifications by channel and result",
			},
			[]string{"channel", "result"}, // smtp|outbox , ok|error
		),
	}
}

func (m *Metrics) MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		m.PipelineRuns,
		m.Contacts,
		m.UpstreamErrors,
		m.Inference,
		m.Notifications,
	)
}

func (m *Metrics) ObserveRun(path string, accepted, rejected int) {
	if m == nil {
		return
	}
	m.PipelineRuns.WithLabelValues(path).Inc()
	m.Contacts.WithLabelValues("accepted", path).Add(float64(accepted))
	m.Contacts.WithLabelValues("rejected", path).Add(float64(rejected))
}

func (m *Metrics) ObserveUpstreamError(reason string) {
	if m == nil {
		return
	}
	m.UpstreamErrors.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveInference(backend string, started time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Inference.WithLabelValues(backend, result).Observe(time.Since(started).Seconds())
}

func (m *Metrics) ObserveNotification(channel string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Notifications.WithLabelValues(channel, result).Inc()
}
