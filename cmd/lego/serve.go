package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/legodom/lego"
	"github.com/legodom/lego/internal/errors"
	"github.com/legodom/lego/pkg/live"
	"github.com/legodom/lego/pkg/monitoring"
	"github.com/legodom/lego/pkg/render"
	"github.com/legodom/lego/pkg/router"
	"github.com/legodom/lego/pkg/scheduler"
)

func serveCmd(opts *options) *cobra.Command {
	var (
		addr   string
		static bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the page over HTTP",
		Long: `Serve the project page.

By default every page load starts a live session: the page is rendered on
the server and kept in sync with the browser over WebSocket. With --static
each request is rendered once and the connection ends there.

With server.metrics enabled, Prometheus metrics are served at /metrics and
render statistics at /debug/lego.

Examples:
  lego serve
  lego serve --addr=:8080
  lego serve --static`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts, addr, static)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from config)")
	cmd.Flags().BoolVar(&static, "static", false, "Render each request once instead of serving live sessions")

	return cmd
}

func runServe(cmd *cobra.Command, opts *options, addr string, static bool) error {
	p, err := loadProject(opts.dir)
	if err != nil {
		return err
	}
	if addr != "" {
		p.cfg.Server.Addr = addr
	}
	if static {
		p.cfg.Server.Live = false
	}
	logger := opts.logger(os.Stderr)

	mon := newMonitor(p, logger)
	handler, closeLive := p.handler(mon, logger)
	defer closeLive()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              p.cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	w := cmd.ErrOrStderr()
	fmt.Fprint(w, headerStyle.Render(banner))
	success(w, "Serving %s on http://%s", p.cfg.PagePath(), p.cfg.Server.Addr)
	if p.cfg.Server.Live {
		info(w, "live sessions over %s", live.DefaultSocketPath)
	} else {
		info(w, "static rendering")
	}
	if p.cfg.Server.Metrics {
		info(w, "metrics at /metrics, render stats at /debug/lego")
	}

	select {
	case err := <-errCh:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return errors.New("L082").WithDetail(p.cfg.Server.Addr).Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	fmt.Fprintln(w, dimStyle.Render("\n  Shutting down..."))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newMonitor(p *project, logger *slog.Logger) *monitoring.Monitor {
	mc := p.cfg.Monitoring
	opts := []monitoring.Option{monitoring.WithSlowRenderThreshold(mc.SlowRender)}
	if mc.Log {
		opts = append(opts, monitoring.WithReportToLog(logger))
	}
	if p.cfg.Server.Metrics {
		opts = append(opts, monitoring.WithRegistry(prometheus.DefaultRegisterer))
	}
	if mc.Tracing != "" {
		opts = append(opts, monitoring.WithTracing(mc.Tracing))
	}
	return monitoring.New(opts...)
}

// handler builds the HTTP handler for the project. The returned function
// ends live sessions.
func (p *project) handler(mon *monitoring.Monitor, logger *slog.Logger) (http.Handler, func()) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	if p.cfg.Server.Metrics {
		r.Handle("/metrics", promhttp.Handler())
		r.Mount("/debug/lego", mon.Handler())
	}

	runtime := []lego.Option{
		lego.WithLogger(logger),
		lego.WithHooks(mon.Hooks(render.Hooks{})),
	}

	if !p.cfg.Server.Live {
		r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
			html, err := p.renderStatic(req, mon, runtime)
			if stderrors.Is(err, router.ErrNoRoute) {
				http.NotFound(w, req)
				return
			}
			if err != nil {
				logger.Error("render failed", "path", req.URL.Path, "error", err)
				http.Error(w, "render failed", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = fmt.Fprint(w, html)
		})
		return r, func() {}
	}

	lc := live.Config{
		Factory: func(_ *http.Request, opts ...lego.Option) (*lego.App, error) {
			return p.newApp(append(opts, runtime...)...)
		},
		Title:      p.cfg.Name,
		TracerName: p.cfg.Monitoring.Tracing,
		Logger:     logger,
	}
	if p.cfg.Server.Metrics {
		lc.Registry = prometheus.DefaultRegisterer
	}
	lh := live.New(lc)
	r.Mount("/", lh)
	return r, lh.Close
}

// renderStatic renders the page for one request. Without routes every
// path renders the bare page.
func (p *project) renderStatic(req *http.Request, mon *monitoring.Monitor, runtime []lego.Option) (string, error) {
	host := scheduler.NewManualHost()
	app, err := p.newApp(append(runtime, lego.WithHost(host))...)
	if err != nil {
		return "", err
	}
	var navErr error
	if len(p.cfg.Routes) > 0 {
		_ = app.Navigate(req.Context(), req.URL.RequestURI(),
			router.OnDone(func(err error) { navErr = err }))
	}
	settle(req.Context(), host, 20*time.Millisecond)
	if navErr != nil {
		return "", navErr
	}
	mon.SetActive(app.ActiveCount())
	return app.HTML()
}
