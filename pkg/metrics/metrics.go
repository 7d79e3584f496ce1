package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "trafficmon"

// Metrics holds every collector the service reports.
type Metrics struct {
	// PipelineOutcomes counts pipeline runs by origin and ack status.
	PipelineOutcomes *prometheus.CounterVec
	SinkErrors       *prometheus.CounterVec
	DedupErrors      prometheus.Counter

	// Async sink decorator.
	BatchSize     prometheus.Histogram
	BufferFill    prometheus.Gauge
	Dropped       prometheus.Counter
	InsertLatency *prometheus.HistogramVec

	// BreakerState is 0 when closed, 1 when half-open and 2 when open.
	BreakerState *prometheus.GaugeVec

	Purged      prometheus.Counter
	PurgeErrors prometheus.Counter

	RateLimited prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		PipelineOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_outcomes_total",
			Help:      "Requests handled by the logging pipeline by origin and outcome.",
		}, []string{"origin", "status"}),

		SinkErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Failed record inserts.",
		}, []string{"origin"}),

		DedupErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dedup_errors_total",
			Help:      "Dedup store failures; the request was logged anyway.",
		}),

		BatchSize: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sink_batch_size",
			Help:      "Records written per async batch.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),

		BufferFill: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sink_buffer_records",
			Help:      "Records waiting in the async sink buffer.",
		}),

		Dropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_dropped_total",
			Help:      "Records dropped because the async buffer was full.",
		}),

		InsertLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sink_insert_duration_seconds",
			Help:      "Latency of sink inserts.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"status"}),

		BreakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sink_breaker_state",
			Help:      "Circuit breaker state of the sink (0=closed, 1=half-open, 2=open).",
		}, []string{"name"}),

		Purged: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retention_purged_total",
			Help:      "Records removed by the retention job.",
		}),

		PurgeErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retention_errors_total",
			Help:      "Retention runs that failed after all attempts.",
		}),

		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "beacon_rate_limited_total",
			Help:      "Beacon calls refused by the per-IP rate limiter.",
		}),
	}
}

// ObserveOutcome implements requestlog.Observer.
func (m *Metrics) ObserveOutcome(origin, status string) {
	m.PipelineOutcomes.WithLabelValues(origin, status).Inc()
}

func (m *Metrics) ObserveSinkError(origin string) {
	m.SinkErrors.WithLabelValues(origin).Inc()
}

func (m *Metrics) ObserveDedupError() {
	m.DedupErrors.Inc()
}

// ObserveInsert records the latency of one sink write.
func (m *Metrics) ObserveInsert(d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.InsertLatency.WithLabelValues(status).Observe(d.Seconds())
}

func (m *Metrics) ObserveBatch(size int) { m.BatchSize.Observe(float64(size)) }

func (m *Metrics) SetBuffered(n int) { m.BufferFill.Set(float64(n)) }

func (m *Metrics) ObserveDropped() { m.Dropped.Inc() }

func (m *Metrics) SetBreakerState(name string, state int) {
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}

func (m *Metrics) ObservePurge(n int64, err error) {
	if err != nil {
		m.PurgeErrors.Inc()
		return
	}
	m.Purged.Add(float64(n))
}

func (m *Metrics) ObserveRateLimited() { m.RateLimited.Inc() }

// RegisterRuntime adds the Go runtime and process collectors to reg.
func RegisterRuntime(reg prometheus.Registerer) {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
