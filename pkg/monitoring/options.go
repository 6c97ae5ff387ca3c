package monitoring

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultSlowRenderThreshold is one frame at 60fps.
const DefaultSlowRenderThreshold = 16 * time.Millisecond

// Options configures a Monitor.
type Options struct {
	// SlowRenderThreshold marks renders that took longer as slow.
	SlowRenderThreshold time.Duration

	// ReportToLog logs errors and slow renders.
	ReportToLog bool

	Logger *slog.Logger

	// Registry receives the Prometheus collectors. Nil disables
	// Prometheus metrics.
	Registry prometheus.Registerer

	// Namespace is the metrics namespace (default: "lego").
	Namespace string

	// ConstLabels are added to every metric.
	ConstLabels prometheus.Labels

	// Buckets are the render duration histogram buckets.
	Buckets []float64

	// TracerName enables a span per render from the global tracer
	// provider when non-empty.
	TracerName string

	now func() time.Time
}

// Option configures a Monitor.
type Option func(*Options)

// WithSlowRenderThreshold sets the slow render threshold.
func WithSlowRenderThreshold(d time.Duration) Option {
	return func(o *Options) { o.SlowRenderThreshold = d }
}

// WithReportToLog logs errors and slow renders through logger.
func WithReportToLog(logger *slog.Logger) Option {
	return func(o *Options) {
		o.ReportToLog = true
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithRegistry registers Prometheus collectors with reg.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(o *Options) { o.Registry = reg }
}

// WithNamespace sets the metrics namespace.
func WithNamespace(ns string) Option {
	return func(o *Options) { o.Namespace = ns }
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(o *Options) { o.ConstLabels = labels }
}

// WithBuckets sets the render duration buckets.
func WithBuckets(buckets []float64) Option {
	return func(o *Options) { o.Buckets = buckets }
}

// WithTracing starts a span named "lego.render" per render.
func WithTracing(tracerName string) Option {
	return func(o *Options) { o.TracerName = tracerName }
}

// withClock replaces time.Now.
func withClock(now func() time.Time) Option {
	return func(o *Options) { o.now = now }
}

func defaultOptions() Options {
	return Options{
		SlowRenderThreshold: DefaultSlowRenderThreshold,
		Logger:              slog.Default(),
		Namespace:           "lego",
		Buckets:             []float64{.0005, .001, .0025, .005, .01, .016, .025, .05, .1, .25},
		now:                 time.Now,
	}
}
