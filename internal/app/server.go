// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"chantier_backend/internal/access"
	"chantier_backend/internal/config"
	"chantier_backend/internal/jobs"
	"chantier_backend/internal/middleware"
	"chantier_backend/internal/session"
	"chantier_backend/internal/shared"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	clientSiteSyncJob *jobs.ClientSiteSyncJob
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	sessionHandler *session.Handler,
	accessHandler *access.Handler,
	clientSiteSyncJob *jobs.ClientSiteSyncJob,
	identities shared.IdentityStore,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := NewRouter(cfg, logger, identities, sessionHandler, accessHandler)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:        httpServer,
		router:            router,
		cfg:               cfg,
		logger:            logger,
		clientSiteSyncJob: clientSiteSyncJob,
	}, nil
}

// NewRouter wires global middleware and every route group onto a fresh engine.
func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	identities shared.IdentityStore,
	sessionHandler *session.Handler,
	accessHandler *access.Handler,
) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	authMW := middleware.AuthMiddleware(identities, logger.Named("AuthMiddleware"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "store": cfg.StoreDriver})
	})

	v1 := router.Group("/api/v1")
	sessionHandler.RegisterRoutes(v1, authMW)
	accessHandler.RegisterRoutes(v1, authMW)

	return router
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	if s.clientSiteSyncJob != nil {
		if err := s.clientSiteSyncJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start client site sync job", zap.Error(err))
		}
	} else {
		s.logger.Info("Client site sync job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.clientSiteSyncJob != nil {
		s.clientSiteSyncJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
