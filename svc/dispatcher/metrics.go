package dispatcher

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Metrics are the dispatcher's Prometheus collectors.
type Metrics struct {
	dispatched   *prometheus.CounterVec
	sendDuration *prometheus.HistogramVec
	panics       prometheus.Counter
}

// MustNewMetrics registers the collectors with reg, plus a queue depth gauge
// reading depth on every scrape. Registration errors panic.
func MustNewMetrics(reg prometheus.Registerer, namespace string, depth func() int) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		dispatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "dispatcher",
				Name:      "notifications_total",
				Help:      "Notifications processed, by channel and outcome.",
			},
			[]string{"channel", "status"},
		),
		sendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "dispatcher",
				Name:      "send_duration_seconds",
				Help:      "Time spent in the channel sender.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
			},
			[]string{"channel"},
		),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatcher",
			Name:      "recovered_panics_total",
			Help:      "Panics recovered while processing a notification.",
		}),
	}

	collectors := []prometheus.Collector{m.dispatched, m.sendDuration, m.panics}
	if depth != nil {
		collectors = append(collectors, prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "dispatcher",
				Name:      "queue_depth",
				Help:      "Notifications waiting in the queue.",
			},
			func() float64 { return float64(depth()) },
		))
	}
	reg.MustRegister(collectors...)
	return m
}

func (m *Metrics) observe(l notifications.Log) {
	if m == nil {
		return
	}
	m.dispatched.WithLabelValues(l.Channel.String(), string(l.Status)).Inc()
}

func (m *Metrics) observeSend(ch notifications.Channel, d time.Duration) {
	if m == nil {
		return
	}
	m.sendDuration.WithLabelValues(ch.String()).Observe(d.Seconds())
}

func (m *Metrics) observePanic() {
	if m == nil {
		return
	}
	m.panics.Inc()
}
