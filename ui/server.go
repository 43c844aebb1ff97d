// Package ui serves the upload page and the analysis report over HTTP.
package ui

import (
	"fmt"
	"html/template"
	"net/http"

	"fininsight/app"
	"fininsight/internal"
	"fininsight/internal/config"
	"fininsight/internal/dataset"
	"fininsight/ui/middleware"

	"github.com/gin-gonic/gin"
)

// Server represents the web server for the analysis UI
type Server struct {
	router    *gin.Engine
	templates *template.Template
	service   *app.AnalysisService
	storage   dataset.FileStorage
	cfg       *config.Config
	logger    *internal.Logger
}

// NewServer creates a server with parsed templates, middleware and routes
func NewServer(cfg *config.Config, service *app.AnalysisService, storage dataset.FileStorage, logger *internal.Logger) (*Server, error) {
	if logger == nil {
		logger = internal.Discard
	}
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:    gin.New(),
		templates: templates,
		service:   service,
		storage:   storage,
		cfg:       cfg,
		logger:    logger.With("ui"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger(), gin.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.LimitBody(s.cfg.Limits.MaxUploadBytes, tooLargeMessage))
	s.router.MaxMultipartMemory = 32 << 20
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.POST("/", s.handleUploadForm)
	s.router.GET("/results", s.handleResults)
	s.router.Static(s.cfg.Paths.PlotURLPrefix, s.cfg.Paths.PlotDir)
}

// Handler exposes the router for tests and custom listeners
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("starting fininsight UI on http://%s", addr)
	return s.router.Run(addr)
}
