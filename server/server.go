package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/scoutkit/logger"
	"github.com/kbukum/scoutkit/server/middleware"
)

// Server is the HTTP server hosting the OpenAI-compatible API. It is
// backed by Gin and wrapped with h2c so HTTP/2 cleartext clients share
// the port.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     Config
	log        *logger.Logger
}

// New creates a Server around the given gateway, with the standard
// middleware stack and routes applied.
func New(cfg Config, gw *Gateway) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	}
	handler := h2c.NewHandler(engine, h2s)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s := &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     handler,
			ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Second,
			// WriteTimeout covers streaming completions end to end.
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
		},
		engine: engine,
		config: cfg,
		log:    logger.WithComponent("server"),
	}

	s.applyMiddleware(gw)
	s.registerRoutes(gw)
	return s
}

func (s *Server) applyMiddleware(gw *Gateway) {
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.CORS(s.config.CORS))
	s.engine.Use(middleware.RequestLogger(s.log))
	s.engine.Use(middleware.Telemetry(gw.metrics))
	if s.config.RateLimit > 0 {
		s.engine.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerMinute: s.config.RateLimit,
			KeyFunc:           middleware.UserBasedKey,
		}))
	}
	auth := s.config.Auth
	if len(auth.SkipPaths) == 0 {
		auth.SkipPaths = []string{"/health"}
	}
	s.engine.Use(middleware.Auth(auth))
}

func (s *Server) registerRoutes(gw *Gateway) {
	s.engine.POST("/v1/chat/completions", gw.ChatCompletions)
	s.engine.GET("/v1/models", gw.Models)
	s.engine.GET("/health", gw.Health)
}

// Engine returns the underlying Gin engine, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start binds the port and begins serving. It returns once the
// listener is bound; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", map[string]any{"error": err.Error()})
		}
	}()

	s.log.Info("HTTP server started", map[string]any{"addr": s.httpServer.Addr})
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("HTTP server shut down")
	return nil
}
