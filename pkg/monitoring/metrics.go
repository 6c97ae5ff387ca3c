package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Prometheus collectors.
type metrics struct {
	renders        *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	slowRenders    *prometheus.CounterVec
	errors         *prometheus.CounterVec
	active         prometheus.Gauge
}

func newMetrics(o Options) *metrics {
	factory := promauto.With(o.Registry)
	return &metrics{
		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   o.Namespace,
			Name:        "renders_total",
			Help:        "Total number of component renders",
			ConstLabels: o.ConstLabels,
		}, []string{"tag"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   o.Namespace,
			Name:        "render_duration_seconds",
			Help:        "Component render duration in seconds",
			ConstLabels: o.ConstLabels,
			Buckets:     o.Buckets,
		}, []string{"tag"}),

		slowRenders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   o.Namespace,
			Name:        "slow_renders_total",
			Help:        "Renders slower than the slow render threshold",
			ConstLabels: o.ConstLabels,
		}, []string{"tag"}),

		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   o.Namespace,
			Name:        "errors_total",
			Help:        "Caught runtime errors by category",
			ConstLabels: o.ConstLabels,
		}, []string{"category"}),

		active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   o.Namespace,
			Name:        "active_components",
			Help:        "Number of mounted component instances",
			ConstLabels: o.ConstLabels,
		}),
	}
}
