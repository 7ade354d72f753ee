package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sockgate/sockgate/internal/domain/event"
)

// Dispatcher is the inbound port the transport drives: one event in, one
// response out.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev *event.InboundEvent) (event.Response, error)
}

// Transport is the inbound adapter that receives gateway-forwarded HTTP
// requests, maps them to InboundEvents, and renders Responses.
type Transport struct {
	dispatcher      Dispatcher
	addr            string
	basePath        string
	logger          *slog.Logger
	registry        *prometheus.Registry
	metrics         *Metrics
	server          *http.Server
	shutdownTimeout time.Duration
	healthChecker   *HealthChecker
}

// Option is a functional option for configuring Transport.
type Option func(*Transport)

// WithAddr sets the listen address for the HTTP server.
// Default is "127.0.0.1:8080" (localhost only).
func WithAddr(addr string) Option {
	return func(t *Transport) {
		t.addr = addr
	}
}

// WithBasePath sets the path prefix gateway events arrive under.
// Default is "/ws/"; the slug is the segment after it.
func WithBasePath(basePath string) Option {
	return func(t *Transport) {
		t.basePath = basePath
	}
}

// WithLogger sets the logger for the transport.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}

// WithShutdownTimeout bounds graceful shutdown. Default is 10 seconds.
func WithShutdownTimeout(d time.Duration) Option {
	return func(t *Transport) {
		t.shutdownTimeout = d
	}
}

// WithHealthChecker sets the health checker for the /health endpoint.
func WithHealthChecker(hc *HealthChecker) Option {
	return func(t *Transport) {
		t.healthChecker = hc
	}
}

// NewTransport creates a Transport wrapping the given dispatcher.
func NewTransport(dispatcher Dispatcher, opts ...Option) *Transport {
	t := &Transport{
		dispatcher:      dispatcher,
		addr:            "127.0.0.1:8080",
		basePath:        "/ws/",
		logger:          slog.Default(),
		shutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}

	t.registry = prometheus.NewRegistry()
	t.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	t.metrics = NewMetrics(t.registry)

	return t
}

// Metrics returns the transport's metric set. Useful for tests.
func (t *Transport) Metrics() *Metrics {
	return t.metrics
}

// Handler builds the full HTTP handler: event dispatch under the base
// path, plus /health and /metrics.
func (t *Transport) Handler() http.Handler {
	mux := http.NewServeMux()

	eventHandler := http.Handler(http.HandlerFunc(t.handleEvent))
	eventHandler = RequestIDMiddleware(t.logger)(eventHandler)
	mux.Handle(t.basePath, eventHandler)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if t.healthChecker != nil {
			t.healthChecker.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{}))

	return mux
}

// Start begins accepting HTTP connections. It blocks until the context is
// cancelled or the server fails, then shuts down gracefully within the
// configured timeout.
func (t *Transport) Start(ctx context.Context) error {
	t.server = &http.Server{
		Addr:              t.addr,
		Handler:           t.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- t.server.ListenAndServe()
	}()

	t.logger.Info("gateway transport listening", "addr", t.addr, "base_path", t.basePath)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), t.shutdownTimeout)
		defer cancel()
		if err := t.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		// Drain the serve error; ErrServerClosed is the expected result.
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// handleEvent maps the request to an InboundEvent, dispatches it, and
// renders the result.
func (t *Transport) handleEvent(w http.ResponseWriter, r *http.Request) {
	logger := LoggerFromContext(r.Context())

	ev, err := eventFromRequest(r, t.basePath)
	if err != nil {
		logger.Warn("rejected malformed request", "status_code", 400, "error", err)
		t.metrics.RejectionsTotal.WithLabelValues("malformed_request").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	resp, err := t.dispatcher.Dispatch(r.Context(), ev)
	t.metrics.DispatchDuration.WithLabelValues(ev.Slug()).Observe(time.Since(start).Seconds())

	if err != nil {
		logger.Error("dispatch failed", "slug", ev.Slug(), "error", err)
		outcome := writeDispatchError(w, err)
		t.metrics.EventsTotal.WithLabelValues(ev.Slug(), outcome).Inc()
		t.metrics.RejectionsTotal.WithLabelValues(outcome).Inc()
		return
	}

	outcome := "ok"
	switch resp.Status() {
	case event.StatusBadRequest:
		outcome = "bad_request"
		t.metrics.RejectionsTotal.WithLabelValues(outcome).Inc()
	case event.StatusMethodNotAllowed:
		outcome = "method_not_allowed"
		t.metrics.RejectionsTotal.WithLabelValues(outcome).Inc()
	case event.StatusOK:
		switch ev.Slug() {
		case event.SlugConnect:
			t.metrics.ActiveConnections.Inc()
		case event.SlugDisconnect:
			t.metrics.ActiveConnections.Dec()
		}
	}
	t.metrics.EventsTotal.WithLabelValues(ev.Slug(), outcome).Inc()

	writeResponse(w, resp)
}
