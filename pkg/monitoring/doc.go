// Package monitoring tracks render performance and errors.
//
// A Monitor installs itself through renderer hooks:
//
//	mon := monitoring.New(
//	    monitoring.WithRegistry(prometheus.DefaultRegisterer),
//	    monitoring.WithTracing("my-app"),
//	)
//	app, err := lego.New(lego.WithHooks(mon.Hooks(render.Hooks{})))
//
// It keeps in-memory statistics (render count, slow renders, error count,
// per-tag count and average duration) available through Snapshot and
// Handler. With a registry it also exports Prometheus metrics:
//
//	lego_renders_total{tag}
//	lego_render_duration_seconds{tag}
//	lego_slow_renders_total{tag}
//	lego_errors_total{category}
//	lego_active_components
//
// With tracing enabled each render is an OpenTelemetry span from the
// global tracer provider; errors caught during the render are recorded on
// it.
package monitoring
