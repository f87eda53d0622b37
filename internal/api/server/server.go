package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "speech-relay/docs" // Generated swagger docs
	"speech-relay/internal/api/handlers"
	"speech-relay/internal/api/middleware"
	"speech-relay/internal/api/routes"
	"speech-relay/internal/app/metrics"
	"speech-relay/web"
)

// Config represents API server configuration
type Config struct {
	Host           string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	Environment    string
	UploadDir      string
	MaxUploadBytes int64
}

// Server represents the API server
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer creates a new API server
func NewServer(
	config Config,
	transcriber handlers.Transcriber,
	mt *metrics.Metrics,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
) (*Server, error) {
	assets, err := web.FileSystem()
	if err != nil {
		return nil, err
	}

	// Set Gin mode based on environment
	if config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogging(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Metrics(mt))

	// Upload page
	router.Use(static.Serve("/", assets))

	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	transcribeHandler := handlers.NewTranscribeHandler(transcriber, config.UploadDir, logger)
	api := router.Group("/api")
	routes.RegisterRoutes(api, transcribeHandler, config.MaxUploadBytes)

	// Swagger documentation routes
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", config.Host, config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{
		config:     config,
		router:     router,
		httpServer: httpServer,
		logger:     logger,
	}, nil
}

// Start listens in the background. Listener failures are sent on the
// returned channel.
func (s *Server) Start() <-chan error {
	s.logger.Info("Starting API server",
		zap.String("host", s.config.Host),
		zap.String("port", s.config.Port),
		zap.String("environment", s.config.Environment),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Failed to start server", zap.Error(err))
			errCh <- err
		}
		close(errCh)
	}()

	return errCh
}

// URL returns the browser address of the upload page
func (s *Server) URL() string {
	return fmt.Sprintf("http://%s/", s.httpServer.Addr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	s.logger.Info("API server shutdown complete")
	return nil
}

// Router returns the Gin router (useful for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
