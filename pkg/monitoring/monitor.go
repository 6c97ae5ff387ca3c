package monitoring

import (
	"context"
	"maps"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/legodom/lego/pkg/dom"
	"github.com/legodom/lego/pkg/render"
)

// ComponentStats aggregates the renders of one tag.
type ComponentStats struct {
	Count uint64        `json:"count"`
	Total time.Duration `json:"totalNs"`
	Avg   time.Duration `json:"avgNs"`
}

// Snapshot is a copy of the collected statistics.
type Snapshot struct {
	Renders     uint64                    `json:"renders"`
	Errors      uint64                    `json:"errors"`
	SlowRenders uint64                    `json:"slowRenders"`
	Components  map[string]ComponentStats `json:"components"`
}

type inflight struct {
	start time.Time
	span  trace.Span
}

// Monitor tracks render timing and errors. It plugs into a renderer
// through Hooks and is safe for concurrent use.
type Monitor struct {
	opts    Options
	metrics *metrics
	tracer  trace.Tracer

	mu       sync.Mutex
	snap     Snapshot
	inflight map[*dom.Node]inflight
}

// New creates a monitor.
func New(opts ...Option) *Monitor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	m := &Monitor{
		opts:     o,
		snap:     Snapshot{Components: make(map[string]ComponentStats)},
		inflight: make(map[*dom.Node]inflight),
	}
	if o.Registry != nil {
		m.metrics = newMetrics(o)
	}
	if o.TracerName != "" {
		m.tracer = otel.Tracer(o.TracerName)
	}
	return m
}

// Hooks returns renderer hooks that record into m and then call next.
func (m *Monitor) Hooks(next render.Hooks) render.Hooks {
	return render.Hooks{
		OnRenderStart: func(el *dom.Node) {
			m.RenderStart(el)
			if next.OnRenderStart != nil {
				next.OnRenderStart(el)
			}
		},
		OnRenderEnd: func(el *dom.Node) {
			m.RenderEnd(el)
			if next.OnRenderEnd != nil {
				next.OnRenderEnd(el)
			}
		},
		OnError: func(err error, category render.Category, el *dom.Node) {
			m.Error(err, category, el)
			if next.OnError != nil {
				next.OnError(err, category, el)
			}
		},
	}
}

// RenderStart marks the start of a render of el.
func (m *Monitor) RenderStart(el *dom.Node) {
	f := inflight{start: m.opts.now()}
	if m.tracer != nil {
		_, f.span = m.tracer.Start(context.Background(), "lego.render",
			trace.WithAttributes(attribute.String("lego.tag", tagOf(el))))
	}
	m.mu.Lock()
	m.inflight[el] = f
	m.mu.Unlock()
}

// RenderEnd records the render of el started by RenderStart.
func (m *Monitor) RenderEnd(el *dom.Node) {
	m.mu.Lock()
	f, ok := m.inflight[el]
	delete(m.inflight, el)
	m.mu.Unlock()
	if !ok {
		return
	}
	d := m.opts.now().Sub(f.start)
	if f.span != nil {
		f.span.SetAttributes(attribute.Int64("lego.duration_us", d.Microseconds()))
		f.span.End()
	}
	m.Record(tagOf(el), d)
}

// Record adds one render of tag that took d.
func (m *Monitor) Record(tag string, d time.Duration) {
	slow := d > m.opts.SlowRenderThreshold

	m.mu.Lock()
	m.snap.Renders++
	if slow {
		m.snap.SlowRenders++
	}
	s := m.snap.Components[tag]
	s.Count++
	s.Total += d
	s.Avg = s.Total / time.Duration(s.Count)
	m.snap.Components[tag] = s
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.renders.WithLabelValues(tag).Inc()
		m.metrics.renderDuration.WithLabelValues(tag).Observe(d.Seconds())
		if slow {
			m.metrics.slowRenders.WithLabelValues(tag).Inc()
		}
	}
	if slow && m.opts.ReportToLog {
		m.opts.Logger.Warn("slow render", "tag", tag, "duration", d)
	}
}

// Error counts a caught error.
func (m *Monitor) Error(err error, category render.Category, el *dom.Node) {
	m.mu.Lock()
	m.snap.Errors++
	f, rendering := m.inflight[el]
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.errors.WithLabelValues(string(category)).Inc()
	}
	if rendering && f.span != nil {
		f.span.RecordError(err)
		f.span.SetStatus(codes.Error, err.Error())
	}
	if m.opts.ReportToLog {
		m.opts.Logger.Error("component error", "category", category, "tag", tagOf(el), "error", err)
	}
}

// SetActive publishes the number of mounted instances.
func (m *Monitor) SetActive(n int) {
	if m.metrics != nil {
		m.metrics.active.Set(float64(n))
	}
}

// Snapshot returns a copy of the statistics.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.snap
	s.Components = maps.Clone(m.snap.Components)
	return s
}

// Reset clears the statistics. Prometheus counters are not reset.
func (m *Monitor) Reset() {
	m.mu.Lock()
	m.snap = Snapshot{Components: make(map[string]ComponentStats)}
	m.mu.Unlock()
}

func tagOf(el *dom.Node) string {
	if el == nil {
		return ""
	}
	return strings.ToLower(el.Tag)
}
