package live

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// metrics holds the Prometheus metrics of a Handler. A nil *metrics
// records nothing.
type metrics struct {
	activeSessions prometheus.Gauge
	messagesTotal  *prometheus.CounterVec
	messageTime    *prometheus.HistogramVec
	pushesTotal    prometheus.Counter
	socketErrors   *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}
	factory := promauto.With(reg)
	return &metrics{
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "lego",
			Subsystem: "live",
			Name:      "sessions",
			Help:      "Number of live sessions, connected or awaiting connection",
		}),
		messagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lego",
			Subsystem: "live",
			Name:      "messages_total",
			Help:      "Client messages handled, by type and status",
		}, []string{"type", "status"}),
		messageTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lego",
			Subsystem: "live",
			Name:      "message_duration_seconds",
			Help:      "Time to apply a client message",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type"}),
		pushesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "lego",
			Subsystem: "live",
			Name:      "pushes_total",
			Help:      "HTML updates sent to clients",
		}),
		socketErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lego",
			Subsystem: "live",
			Name:      "websocket_errors_total",
			Help:      "WebSocket errors by kind",
		}, []string{"kind"}),
	}
}

func (m *metrics) sessionOpened() {
	if m != nil {
		m.activeSessions.Inc()
	}
}

func (m *metrics) sessionClosed() {
	if m != nil {
		m.activeSessions.Dec()
	}
}

func (m *metrics) message(typ string, d time.Duration, err error) {
	if m == nil {
		return
	}
	switch typ {
	case TypeEvent, TypeNavigate, TypeBack, TypeForward:
	default:
		typ = "unknown"
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.messagesTotal.WithLabelValues(typ, status).Inc()
	m.messageTime.WithLabelValues(typ).Observe(d.Seconds())
}

func (m *metrics) pushed() {
	if m != nil {
		m.pushesTotal.Inc()
	}
}

func (m *metrics) socketError(kind string) {
	if m != nil {
		m.socketErrors.WithLabelValues(kind).Inc()
	}
}

// startSpan starts a span for one client message. With no tracer it
// returns a no-op span.
func startSpan(tracer trace.Tracer, session string, msg ClientMessage) trace.Span {
	if tracer == nil {
		return trace.SpanFromContext(context.Background())
	}
	attrs := []attribute.KeyValue{
		attribute.String("lego.session_id", session),
		attribute.String("lego.message_type", msg.Type),
	}
	if msg.Event != "" {
		attrs = append(attrs, attribute.String("lego.event", msg.Event))
	}
	if msg.URL != "" {
		attrs = append(attrs, attribute.String("lego.url", msg.URL))
	}
	_, span := tracer.Start(context.Background(), "lego.live."+msg.Type,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...))
	return span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func newTracer(name string) trace.Tracer {
	if name == "" {
		return nil
	}
	return otel.Tracer(name)
}
