package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	sessionsStarted  *prometheus.CounterVec
	sessionsFinished *prometheus.CounterVec
	ticksTotal       *prometheus.CounterVec
	tradesTotal      *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	lastPrice        *prometheus.GaugeVec
	compositeScore   *prometheus.HistogramVec
	latency          *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		sessionsStarted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oilsim_sessions_started_total",
				Help: "Total number of simulation sessions started",
			},
			[]string{"scenario"},
		),
		sessionsFinished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oilsim_sessions_finished_total",
				Help: "Total number of simulation sessions finished",
			},
			[]string{"scenario"},
		),
		ticksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oilsim_ticks_total",
				Help: "Total number of simulation ticks advanced",
			},
			[]string{"scenario"},
		),
		tradesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oilsim_trades_total",
				Help: "Total number of trade intents, split by outcome",
			},
			[]string{"scenario", "outcome"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oilsim_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "oilsim_last_price",
				Help: "Last simulated price per scenario",
			},
			[]string{"scenario"},
		),
		compositeScore: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oilsim_composite_score",
				Help:    "Distribution of final composite scores",
				Buckets: prometheus.LinearBuckets(20, 10, 9),
			},
			[]string{"scenario"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oilsim_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSessionStarted counts a new session.
func (r *Recorder) RecordSessionStarted(scenario string) {
	r.sessionsStarted.WithLabelValues(scenario).Inc()
}

// RecordSessionFinished counts a finished session and observes its score.
func (r *Recorder) RecordSessionFinished(scenario string, composite int) {
	r.sessionsFinished.WithLabelValues(scenario).Inc()
	r.compositeScore.WithLabelValues(scenario).Observe(float64(composite))
}

// RecordTick counts one simulation advance.
func (r *Recorder) RecordTick(scenario string) {
	r.ticksTotal.WithLabelValues(scenario).Inc()
}

// RecordTrade counts a trade intent by outcome.
func (r *Recorder) RecordTrade(scenario string, executed bool) {
	outcome := "rejected"
	if executed {
		outcome = "executed"
	}
	r.tradesTotal.WithLabelValues(scenario, outcome).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the latest simulated price.
func (r *Recorder) RecordLastPrice(scenario string, price float64) {
	r.lastPrice.WithLabelValues(scenario).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
