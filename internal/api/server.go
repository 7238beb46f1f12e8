package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rplus-dev/rplus/internal/logging"
)

// Represents the rplusd API server
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	listener   net.Listener
	startTime  time.Time
}

// NewServer validates config and builds the router. The port is bound by
// Start.
func NewServer(config *Config) (*Server, error) {
	if config == nil {
		return nil, fmt.Errorf("api config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid api config: %w", err)
	}

	s := &Server{
		config:    *config,
		startTime: time.Now(),
	}
	s.router = s.newRouter()
	return s, nil
}

// NewServerWithListener creates a server that serves on an already bound
// listener. The daemon binds early so port conflicts surface before any
// background work starts. The server owns the listener from here on.
func NewServerWithListener(config *Config, listener net.Listener) (*Server, error) {
	if listener == nil {
		return nil, fmt.Errorf("listener cannot be nil")
	}
	s, err := NewServer(config)
	if err != nil {
		return nil, err
	}
	s.listener = listener
	return s, nil
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) newRouter() *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// Configure Gin logging only if not already configured by CLI tools
	if !logging.IsConfiguredByCLI() {
		gin.DefaultWriter = logging.NewLevelWriter("INFO", "gin")
		gin.DefaultErrorWriter = logging.NewLevelWriter("ERROR", "gin")
	}

	router := gin.New()
	router.Use(s.loggingMiddleware())
	router.Use(s.corsMiddleware())
	router.Use(gin.Recovery())

	s.setupRoutes(router)
	return router
}

// Start binds the listener if needed and serves in the background.
func (s *Server) Start() error {
	if s.listener == nil {
		addr := net.JoinHostPort(s.config.BindAddr, strconv.Itoa(s.config.BindPort))
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to bind to %s: %w", addr, err)
		}
		s.listener = listener
	}

	logging.Info("Starting HTTP API server on %s", s.listener.Addr())

	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.EffectiveWriteTimeout(),
		IdleTimeout:  s.config.IdleTimeout,
	}

	listener := s.listener
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("HTTP server failed: %v", err)
		}
	}()

	logging.Success("HTTP API server started successfully")
	return nil
}

// Addr returns the address being served, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down HTTP API server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}
