// Package server exposes the conversational controller over HTTP: the chat
// endpoint, health and metrics, and direct tool endpoints for debugging
// without a conversation.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/kopihaus/barista-agent/agent/engine"
	"github.com/kopihaus/barista-agent/agent/telemetry"
	"github.com/kopihaus/barista-agent/agent/tool"
)

// Config is the HTTP listener configuration.
type Config struct {
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"PORT" default:"8080"`
	Debug           bool          `envconfig:"DEBUG" default:"false"`
	RatePerSecond   float64       `envconfig:"RATE_PER_SECOND" split_words:"true" default:"20"`
	RateBurst       int           `envconfig:"RATE_BURST" split_words:"true" default:"40"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" split_words:"true" default:"10s"`
}

type Server struct {
	cfg      Config
	engine   *engine.Engine
	recorder *telemetry.Recorder
	registry *prometheus.Registry
	tools    map[string]tool.Tool
	router   *gin.Engine
}

func New(
	cfg Config,
	eng *engine.Engine,
	recorder *telemetry.Recorder,
	registry *prometheus.Registry,
	tools map[string]tool.Tool,
) (*Server, error) {
	if eng == nil {
		return nil, errors.New("decision engine is required")
	}
	if recorder == nil {
		return nil, errors.New("telemetry recorder is required")
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if tools == nil {
		tools = map[string]tool.Tool{}
	}

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:      cfg,
		engine:   eng,
		recorder: recorder,
		registry: registry,
		tools:    tools,
	}
	s.router = s.buildRouter()
	return s, nil
}

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(rateLimitMiddleware(s.cfg.RatePerSecond, s.cfg.RateBurst))

	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	router.GET("/metrics/summary", s.handleMetricsSummary)

	router.POST("/chat", s.handleChat)

	toolGroup := router.Group("/tools")
	{
		toolGroup.POST("/calculator", s.handleCalculatorTool)
		toolGroup.GET("/products", s.handleProductsTool)
		toolGroup.GET("/outlets", s.handleOutletsTool)
	}

	return router
}

// Router exposes the handler tree for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	log.Info().Msg("http server stopped")
	return <-errCh
}
