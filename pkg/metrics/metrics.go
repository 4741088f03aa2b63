// Package metrics exposes wizard activity as Prometheus collectors.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/waggy/go-wizard/pkg/wizard"
)

const namespace = "waggy_wizard"

// Recorder owns the wizard collectors and the registry they live in.
type Recorder struct {
	registry *prometheus.Registry

	transitions     *prometheus.CounterVec
	backendCalls    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	completions     prometheus.Counter
	httpInFlight    prometheus.Gauge
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New registers the wizard collectors on a fresh registry. With
// includeRuntime the Go and process collectors are added as well.
func New(includeRuntime bool) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transitions_total",
				Help:      "Controller status transitions.",
			},
			[]string{"from", "to"},
		),
		backendCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "backend",
				Name:      "calls_total",
				Help:      "Backend calls by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		backendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "backend",
				Name:      "call_duration_seconds",
				Help:      "Duration of backend calls.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"operation"},
		),
		completions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "completions_total",
				Help:      "Wizards marked complete.",
			},
		),
		httpInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "inflight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"method", "route"},
		),
	}

	r.registry.MustRegister(
		r.transitions,
		r.backendCalls,
		r.backendDuration,
		r.completions,
		r.httpInFlight,
		r.httpRequests,
		r.httpDuration,
	)
	if includeRuntime {
		r.registry.MustRegister(
			prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
			prometheus.NewGoCollector(),
		)
	}
	return r
}

// Registry exposes the underlying registry, mostly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registered collectors in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Hooks returns controller hooks that feed the collectors.
func (r *Recorder) Hooks() wizard.Hooks {
	return wizard.Hooks{
		OnTransition: func(_ context.Context, e *wizard.TransitionEvent) {
			r.transitions.WithLabelValues(e.From.String(), e.To.String()).Inc()
			if e.To == wizard.StatusCompleted {
				r.completions.Inc()
			}
		},
		OnBackendCall: func(_ context.Context, e *wizard.BackendCallEvent) {
			r.backendCalls.WithLabelValues(e.Operation, outcome(e.Err)).Inc()
			r.backendDuration.WithLabelValues(e.Operation).Observe(e.Duration.Seconds())
		},
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case wizard.IsValidation(err):
		return "invalid"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

// Instrument wraps next with HTTP request metrics. route maps a request to
// a low-cardinality label; nil uses the first path segment.
func (r *Recorder) Instrument(route func(*http.Request) string, next http.Handler) http.Handler {
	if route == nil {
		route = firstSegment
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		r.httpInFlight.Inc()
		defer r.httpInFlight.Dec()

		next.ServeHTTP(rec, req)

		label := route(req)
		method := strings.ToUpper(req.Method)
		r.httpRequests.WithLabelValues(method, label, strconv.Itoa(rec.status)).Inc()
		r.httpDuration.WithLabelValues(method, label).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func firstSegment(req *http.Request) string {
	trimmed := strings.Trim(req.URL.Path, "/")
	if trimmed == "" {
		return "/"
	}
	head, _, _ := strings.Cut(trimmed, "/")
	return "/" + head
}
