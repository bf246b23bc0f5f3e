// Package metrics records wizard activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-strategy-wizard/pkg/strategy"
	"github.com/goliatone/go-strategy-wizard/pkg/wizard"
)

const namespace = "strategy_wizard"

// Recorder implements wizard.Observer on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	steps       *prometheus.CounterVec
	strategies  *prometheus.CounterVec
	submissions *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	requests    *prometheus.CounterVec
}

var _ wizard.Observer = (*Recorder)(nil)

// New registers the wizard collectors plus the Go and process collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "step_transitions_total",
				Help:      "Wizard step transitions",
			},
			[]string{"from", "to"},
		),
		strategies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "strategy_selected_total",
				Help:      "Strategy selections by key",
			},
			[]string{"strategy"},
		),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "submissions_total",
				Help:      "Simulation submissions by outcome",
			},
			[]string{"outcome"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "submission_duration_seconds",
				Help:      "Time spent waiting for the simulation backend",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Web UI requests by route and status",
			},
			[]string{"route", "code"},
		),
	}
	r.registry.MustRegister(
		r.steps,
		r.strategies,
		r.submissions,
		r.latency,
		r.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) StepAdvanced(from, to wizard.Step) {
	r.steps.WithLabelValues(strconv.Itoa(int(from)), strconv.Itoa(int(to))).Inc()
}

func (r *Recorder) StrategySelected(key strategy.Key) {
	r.strategies.WithLabelValues(key.String()).Inc()
}

func (r *Recorder) SubmissionFinished(outcome string, elapsed time.Duration) {
	r.submissions.WithLabelValues(outcome).Inc()
	r.latency.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// RequestServed counts one web UI response.
func (r *Recorder) RequestServed(route string, code int) {
	r.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Registry exposes the underlying registry, mostly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
