package live

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/legodom/lego"
)

// DefaultSocketPath is where the client connects.
const DefaultSocketPath = "/_lego/ws"

// Factory builds the App of one session. It must pass opts to lego.New
// and keep the default loop host. It runs before the App's loop starts,
// so it may define components and load the page directly.
type Factory func(r *http.Request, opts ...lego.Option) (*lego.App, error)

// Config configures a Handler.
type Config struct {
	Factory Factory

	// Title is the page title.
	Title string

	// Head is extra content for the page head.
	Head templ.Component

	// SocketPath is the WebSocket endpoint. Default: "/_lego/ws".
	SocketPath string

	// SessionTTL is how long a rendered page may take to connect.
	// Default: 30 seconds.
	SessionTTL time.Duration

	// ReadTimeout is the maximum time between client messages, pongs
	// included. Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout bounds one write. Default: 10 seconds.
	WriteTimeout time.Duration

	// PingInterval is the keepalive period. It must be shorter than
	// ReadTimeout. Default: 25 seconds.
	PingInterval time.Duration

	// CheckOrigin validates the WebSocket origin. If nil, the request
	// origin must match its host.
	CheckOrigin func(r *http.Request) bool

	// Registry receives the session metrics. Nil disables them.
	Registry prometheus.Registerer

	// TracerName names the OpenTelemetry tracer that spans client
	// messages. Empty disables tracing.
	TracerName string

	Logger *slog.Logger
}

// DefaultConfig returns a Config with default timeouts.
func DefaultConfig() Config {
	return Config{
		SocketPath:   DefaultSocketPath,
		SessionTTL:   30 * time.Second,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Second,
		PingInterval: 25 * time.Second,
	}
}

// Handler serves live pages and their WebSocket endpoint.
type Handler struct {
	cfg      Config
	logger   *slog.Logger
	upgrader websocket.Upgrader
	router   chi.Router
	metrics  *metrics
	tracer   trace.Tracer

	mu       sync.Mutex
	sessions map[string]*Session
}

// New creates a handler. Zero fields of cfg take their defaults.
func New(cfg Config) *Handler {
	d := DefaultConfig()
	if cfg.SocketPath == "" {
		cfg.SocketPath = d.SocketPath
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = d.SessionTTL
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = d.ReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = d.WriteTimeout
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = d.PingInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	h := &Handler{
		cfg:    cfg,
		logger: cfg.Logger.With("component", "live"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     cfg.CheckOrigin,
		},
		sessions: make(map[string]*Session),
		metrics:  newMetrics(cfg.Registry),
		tracer:   newTracer(cfg.TracerName),
	}
	r := chi.NewRouter()
	r.Get(cfg.SocketPath, h.serveSocket)
	r.Get("/*", h.servePage)
	h.router = r
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// Sessions returns the number of live sessions, connected or not.
func (h *Handler) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close ends every session.
func (h *Handler) Close() {
	h.mu.Lock()
	all := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		all = append(all, s)
	}
	h.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
}

func (h *Handler) servePage(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Factory == nil {
		http.Error(w, "no application", http.StatusInternalServerError)
		return
	}
	s := &Session{
		ID:   uuid.NewString(),
		h:    h,
		out:  make(chan ServerMessage, 32),
		done: make(chan struct{}),
	}
	s.logger = h.logger.With("session", s.ID)

	app, err := h.cfg.Factory(r, lego.WithOnFlush(s.schedulePush))
	if err != nil {
		h.logger.Error("session factory failed", "error", err)
		http.Error(w, "application failed to start", http.StatusInternalServerError)
		return
	}
	s.app = app
	app.Start()

	body, err := s.prepare(r.Context(), r.URL.RequestURI())
	if err != nil {
		app.Stop()
		h.logger.Error("page render failed", "error", err, "path", r.URL.Path)
		http.Error(w, "page render failed", http.StatusInternalServerError)
		return
	}

	h.mu.Lock()
	s.expiry = time.AfterFunc(h.cfg.SessionTTL, func() {
		if !s.claimed.Load() {
			s.logger.Debug("unclaimed session expired")
			s.Close()
		}
	})
	h.sessions[s.ID] = s
	h.mu.Unlock()
	h.metrics.sessionOpened()

	templ.Handler(Shell(ShellData{
		Title:     h.cfg.Title,
		SessionID: s.ID,
		Socket:    h.cfg.SocketPath,
		Head:      h.cfg.Head,
		Body:      body,
	})).ServeHTTP(w, r)
}

func (h *Handler) serveSocket(w http.ResponseWriter, r *http.Request) {
	s := h.claim(r.URL.Query().Get("session"))
	if s == nil {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		h.metrics.socketError("upgrade")
		s.Close()
		return
	}
	s.serve(conn)
}

// claim hands a session to its WebSocket. A session is claimed once.
func (h *Handler) claim(id string) *Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	if !ok || !s.claimed.CompareAndSwap(false, true) {
		return nil
	}
	if s.expiry != nil {
		s.expiry.Stop()
	}
	return s
}

func (h *Handler) remove(s *Session) {
	h.mu.Lock()
	delete(h.sessions, s.ID)
	h.mu.Unlock()
}

// errNoDocument is returned when a factory produced an App without a
// mounted document.
var errNoDocument = errors.New("live: factory did not mount a document")

func runOn(ctx context.Context, app *lego.App, fn func() error) error {
	var err error
	if derr := app.Do(ctx, func() { err = fn() }); derr != nil {
		return derr
	}
	return err
}
