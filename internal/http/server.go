package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fyrsmithlabs/depthbudget/internal/budget"
	"github.com/fyrsmithlabs/depthbudget/internal/config"
	"github.com/fyrsmithlabs/depthbudget/internal/logging"
	"github.com/fyrsmithlabs/depthbudget/internal/sweep"
	"github.com/fyrsmithlabs/depthbudget/internal/telemetry"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// maxBodySize bounds request bodies.
const maxBodySize = "1M"

// Server provides HTTP endpoints for depthbudget.
type Server struct {
	echo     *echo.Echo
	runner   *sweep.Runner
	logger   *logging.Logger
	config   *Config
	tel      *telemetry.Telemetry
	version  string
	prom     *promMetrics
	limiters *clientLimiters
}

// Option configures a Server.
type Option func(*Server)

// WithTelemetry reports telemetry health on /health and records OTEL
// request metrics through its meter.
func WithTelemetry(t *telemetry.Telemetry) Option {
	return func(s *Server) {
		s.tel = t
	}
}

// WithVersion sets the version reported on /health.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// NewServer creates a new HTTP server.
func NewServer(runner *sweep.Runner, logger *logging.Logger, cfg *Config, opts ...Option) (*Server, error) {
	if runner == nil {
		return nil, fmt.Errorf("runner cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = NewDefaultConfig()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:   e,
		runner: runner,
		logger: logger.Named("http"),
		config: cfg,
		prom:   newPromMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.RateLimit > 0 {
		s.limiters = newClientLimiters(cfg.RateLimit, cfg.RateBurst)
	}

	otelMetrics := NewHTTPMetrics(s.tel.Meter(httpInstrumentationName), s.logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			ctx := logging.WithRequestID(req.Context(), id)
			ctx = logging.WithLogger(ctx, s.logger)
			c.SetRequest(req.WithContext(ctx))
		},
	}))
	e.Use(s.requestLogger())
	e.Use(otelMetrics.MetricsMiddleware())
	e.Use(s.prom.middleware())
	e.Use(middleware.BodyLimit(maxBodySize))

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.prom.registry, promhttp.HandlerOpts{})))

	v1 := s.echo.Group("/api/v1", s.rateLimitMiddleware())
	v1.GET("/policies", s.handlePolicies)
	v1.POST("/run", s.handleRun)
	v1.POST("/sweep", s.handleSweep)
}

// requestLogger logs each request after it completes.
func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
				err = nil
			}

			s.logger.Info(c.Request().Context(), "http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
			)
			return err
		}
	}
}

// handleHealth returns liveness and telemetry state.
func (s *Server) handleHealth(c echo.Context) error {
	resp := HealthResponse{Status: "ok", Version: s.version}
	if s.tel != nil {
		h := s.tel.Health()
		resp.Telemetry = &h
	}
	return c.JSON(http.StatusOK, resp)
}

// handlePolicies lists the canonical policy names.
func (s *Server) handlePolicies(c echo.Context) error {
	return c.JSON(http.StatusOK, PoliciesResponse{Policies: budget.Policies()})
}

// handleRun performs a single run.
func (s *Server) handleRun(c echo.Context) error {
	var req RunRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	p, err := budget.ParsePolicy(req.Policy)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	n := uint64(config.DefaultBranching)
	if req.Branching != nil {
		n = *req.Branching
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	start := time.Now()
	res, err := s.runner.Run(ctx, p, n, req.Budget, budget.WithNodeLimit(s.nodeLimit(req.NodeLimit)))
	if err != nil {
		return s.runError(err)
	}
	s.prom.nodesTotal.WithLabelValues(p.String()).Add(float64(res.Nodes))

	return c.JSON(http.StatusOK, RunResponse{
		Count:           res.Nodes,
		Result:          res,
		DurationSeconds: time.Since(start).Seconds(),
	})
}

// handleSweep runs a bounded sweep and returns the report.
func (s *Server) handleSweep(c echo.Context) error {
	var req SweepRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	cfg := sweep.NewDefaultConfig()
	if len(req.Policies) > 0 {
		cfg.Policies = req.Policies
	}
	if req.Branching != nil {
		cfg.Branching = *req.Branching
	}
	cfg.From = req.From
	cfg.To = req.To
	cfg.NodeLimit = s.config.NodeLimit

	if err := cfg.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if s.config.MaxSweepWidth > 0 && cfg.Width() > s.config.MaxSweepWidth {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("sweep width %d exceeds maximum %d", cfg.Width(), s.config.MaxSweepWidth))
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	report, err := s.runner.Sweep(ctx, cfg)
	if err != nil {
		return s.runError(err)
	}
	for _, series := range report.Series {
		s.prom.nodesTotal.WithLabelValues(series.Policy.String()).Add(float64(series.Nodes))
	}

	return c.JSON(http.StatusOK, report)
}

// requestContext bounds the request context by the configured timeout.
func (s *Server) requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	ctx := c.Request().Context()
	if s.config.RequestTimeout > 0 {
		return context.WithTimeout(ctx, s.config.RequestTimeout)
	}
	return context.WithCancel(ctx)
}

// nodeLimit returns the effective per-run node limit for a request.
func (s *Server) nodeLimit(requested uint64) uint64 {
	limit := s.config.NodeLimit
	if requested > 0 && (limit == 0 || requested < limit) {
		limit = requested
	}
	return limit
}

// runError maps run failures to HTTP errors.
func (s *Server) runError(err error) error {
	switch {
	case errors.Is(err, budget.ErrUnknownPolicy):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, budget.ErrNodeLimitExceeded):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "run did not finish within the request timeout")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "run failed").SetInternal(err)
	}
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server. It returns http.ErrServerClosed after
// Shutdown.
func (s *Server) Start() error {
	addr := s.config.Addr()
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
