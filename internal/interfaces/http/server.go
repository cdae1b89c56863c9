// Package http provides the HTTP server adapter for the application layer.
// This is a thin adapter layer that translates HTTP requests to application
// service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tjpa/agil-workflow/internal/application/port"
	"github.com/tjpa/agil-workflow/internal/application/service"
	appwf "github.com/tjpa/agil-workflow/internal/application/workflow"
	"github.com/tjpa/agil-workflow/internal/domain/entity"
	"github.com/tjpa/agil-workflow/internal/infrastructure/identity"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config                ServerConfig
	httpServer            *http.Server
	router                *gin.Engine
	engine                appwf.Engine
	solicitationService   service.SolicitationService
	accountabilityService service.AccountabilityService
	inboxService          service.InboxService
	reportService         service.ReportService
	identity              port.IdentityProvider
	logger                Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	engine appwf.Engine,
	solicitationService service.SolicitationService,
	accountabilityService service.AccountabilityService,
	inboxService service.InboxService,
	reportService service.ReportService,
	identityProvider port.IdentityProvider,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config:                config,
		router:                router,
		engine:                engine,
		solicitationService:   solicitationService,
		accountabilityService: accountabilityService,
		inboxService:          inboxService,
		reportService:         reportService,
		identity:              identityProvider,
		logger:                logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(identityMiddleware())
}

// identityMiddleware copies the forwarded identity headers into the request
// context so handlers can resolve the acting user when a request body omits
// the actor fields.
func identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader("X-User-ID"); id != "" {
			user := &entity.User{
				ID:   id,
				Name: c.GetHeader("X-User-Name"),
				Role: c.GetHeader("X-User-Role"),
			}
			c.Request = c.Request.WithContext(identity.WithUser(c.Request.Context(), user))
		}
		c.Next()
	}
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(
		s.engine,
		s.solicitationService,
		s.accountabilityService,
		s.inboxService,
		s.reportService,
		s.identity,
		s.logger,
	)

	// Health check
	s.router.GET("/health", handlers.HealthCheck)

	// API routes
	api := s.router.Group("/api")
	{
		// Solicitations
		api.POST("/solicitations", handlers.CreateSolicitation)
		api.GET("/solicitations/:id", handlers.GetSolicitation)
		api.POST("/solicitations/:id/transition", handlers.Transition)
		api.GET("/solicitations/:id/triggers", handlers.PermittedTriggers)
		api.POST("/solicitations/:id/assign", handlers.AssignAnalyst)

		// Accountabilities
		api.GET("/accountabilities/:id", handlers.GetAccountability)
		api.POST("/accountabilities/:id/items", handlers.AddItem)
		api.DELETE("/accountabilities/:id/items/:itemID", handlers.RemoveItem)
		api.POST("/accountabilities/:id/risk", handlers.ReevaluateRisk)
		api.POST("/accountabilities/:id/assign", handlers.AssignAccountabilityAnalyst)

		// Module dashboards
		api.GET("/inbox/:module", handlers.Inbox)
		api.GET("/queue/:module", handlers.Queue)
		api.GET("/reports/queue/:module", handlers.ExportQueue)
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
