package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"kommunicate-mcp-go/internal/mcp"
	"kommunicate-mcp-go/internal/session"
	"kommunicate-mcp-go/internal/telemetry"
	"kommunicate-mcp-go/internal/tools"
	kommunicatetools "kommunicate-mcp-go/internal/tools/kommunicate"
	"kommunicate-mcp-go/pkg/kommunicate"
)

// Name is reported to MCP clients as serverInfo.name.
const Name = "kommunicate-mcp"

const instructions = "Tools for the Kommunicate customer messaging platform: " +
	"create conversations, send messages, change conversation status or assignee, " +
	"and read or update user details."

// Server owns every long-lived component of the MCP server.
type Server struct {
	cfg    Config
	logger zerolog.Logger

	registry  *prometheus.Registry
	metrics   *telemetry.Metrics
	catalog   *telemetry.ToolRegistryWrapper
	sessions  *session.DefaultManager
	cleanup   *session.CleanupService
	collector *telemetry.SystemMetricsCollector
	info      mcp.ServerInfo
	router    chi.Router

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option customizes New.
type Option func(*options)

type options struct {
	doer kommunicate.Doer
}

// WithDoer replaces the HTTP client used for Kommunicate API calls.
func WithDoer(doer kommunicate.Doer) Option {
	return func(o *options) {
		o.doer = doer
	}
}

// New wires the Kommunicate client, tool catalog, sessions, metrics and
// HTTP routes.
func New(cfg Config, version string, logger zerolog.Logger, opts ...Option) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewMetrics(registry)

	doer := o.doer
	if doer == nil {
		doer = &http.Client{Timeout: cfg.Kommunicate.Timeout}
	}
	client, err := kommunicate.NewClient(cfg.Kommunicate, telemetry.NewInstrumentedDoer(doer, metrics), logger)
	if err != nil {
		return nil, fmt.Errorf("create kommunicate client: %w", err)
	}

	toolRegistry := tools.NewRegistry()
	if err := kommunicatetools.Register(toolRegistry, client); err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}
	for _, def := range toolRegistry.Definitions() {
		logger.Debug().Str("tool", def.Name).Msg("Registered tool")
	}
	logger.Info().
		Int("tools", toolRegistry.Len()).
		Str("base_url", client.BaseURL()).
		Msg("Tool catalog ready")

	store := session.NewMemoryStore(logger)
	sessions := session.NewDefaultManager(store, session.ManagerConfig{
		SessionTimeout: cfg.SessionTimeout,
		Observer:       telemetry.NewSessionObserver(metrics),
	}, logger)

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  metrics,
		catalog:  telemetry.NewToolRegistryWrapper(toolRegistry, metrics, logger),
		sessions: sessions,
		cleanup: session.NewCleanupService(sessions, session.CleanupConfig{
			CleanupInterval: cfg.CleanupInterval,
		}, logger),
		collector: telemetry.NewSystemMetricsCollector(metrics, logger, cfg.MetricsInterval),
		info: mcp.ServerInfo{
			Name:         Name,
			Version:      version,
			Instructions: instructions,
		},
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	mcpHandler := mcp.NewHandler(s.catalog, s.sessions, mcp.HandlerConfig{
		Info:           s.info,
		RequireSession: s.cfg.RequireSession,
	}, s.logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(telemetry.HTTPMetricsMiddleware(s.metrics))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", session.HeaderName, "Mcp-Protocol-Version"},
		ExposedHeaders:   []string{session.HeaderName},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))

	r.Post("/mcp", mcpHandler.ServeHTTP)
	r.Delete("/mcp", mcpHandler.ServeHTTP)
	r.Get("/mcp", mcpHandler.ServeHTTP)

	return r
}

// Handler returns the HTTP handler for the MCP endpoint and its companions.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Catalog returns the instrumented tool catalog shared by both transports.
func (s *Server) Catalog() mcp.ToolCatalog {
	return s.catalog
}

// Info returns the identity reported to MCP clients.
func (s *Server) Info() mcp.ServerInfo {
	return s.info
}

// Sessions returns the session manager.
func (s *Server) Sessions() session.Manager {
	return s.sessions
}

// Start launches the background session cleanup and runtime sampling.
func (s *Server) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	s.cleanup.Start(ctx)
	go func(done chan struct{}) {
		defer close(done)
		s.collector.Run(ctx)
	}(s.done)
}

// Stop halts the background work started by Start.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}

	s.cleanup.Stop()
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}

// ServeStdio serves the tool catalog over stdin/stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.catalog, s.info, s.logger)
}
