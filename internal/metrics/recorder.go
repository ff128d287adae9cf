// Package metrics exposes Prometheus collectors for the reply engine and
// the HTTP server that serves them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "shamstagram"

// Recorder owns the engine collectors. It satisfies reply.Observer and
// transform.Observer.
type Recorder struct {
	repliesScheduled *prometheus.CounterVec
	repliesFinished  *prometheus.CounterVec
	replyDelay       *prometheus.HistogramVec
	transforms       *prometheus.CounterVec
	reg              prometheus.Registerer
}

// NewRegistry returns a registry with the Go runtime, process and build
// info collectors already registered.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewRecorder creates the engine collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		repliesScheduled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "replies_scheduled_total",
				Help:      "Total number of bot replies scheduled by target kind",
			},
			[]string{"kind"},
		),
		repliesFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "replies_total",
				Help:      "Total number of bot replies by target kind and outcome (saved, skipped, failed, cancelled)",
			},
			[]string{"kind", "outcome"},
		),
		replyDelay: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "reply_delay_seconds",
				Help:      "Delay bot replies were scheduled with",
				Buckets:   []float64{1, 2, 3, 5, 8, 10, 15, 20, 30, 60},
			},
			[]string{"kind"},
		),
		transforms: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transform_total",
				Help:      "Total number of text transforms by provider and result (ok, fallback, error)",
			},
			[]string{"provider", "result"},
		),
		reg: reg,
	}

	reg.MustRegister(r.repliesScheduled, r.repliesFinished, r.replyDelay, r.transforms)
	return r
}

// RegisterPending exposes a gauge that reads the number of pending replies
// from fn at scrape time.
func (r *Recorder) RegisterPending(fn func() int) {
	r.reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "replies_pending",
			Help:      "Bot replies waiting for their delay to elapse",
		},
		func() float64 { return float64(fn()) },
	))
}

// ReplyScheduled implements reply.Observer.
func (r *Recorder) ReplyScheduled(kind string, delay time.Duration) {
	r.repliesScheduled.WithLabelValues(kind).Inc()
	r.replyDelay.WithLabelValues(kind).Observe(delay.Seconds())
}

// ReplyFinished implements reply.Observer.
func (r *Recorder) ReplyFinished(kind, outcome string) {
	r.repliesFinished.WithLabelValues(kind, outcome).Inc()
}

// TransformDone implements transform.Observer.
func (r *Recorder) TransformDone(provider, result string) {
	r.transforms.WithLabelValues(provider, result).Inc()
}
