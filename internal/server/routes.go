package server

import (
	"context"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"outreach/internal/config"
	"outreach/internal/handlers"
	"outreach/internal/handlers/api"
	"outreach/internal/middleware"
	"outreach/internal/pipeline"
	"outreach/internal/records"
)

// Dependencies are the components the routes serve.
type Dependencies struct {
	Store     records.Store
	Processor *pipeline.Processor
	// Database is pinged by the readiness probe; nil when records live in memory.
	Database handlers.Pinger
	YAML     *config.YAMLConfig
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context, deps Dependencies) error {
	authMiddleware := middleware.NewAuthMiddleware(s.Cfg.IsOIDCEnabled())

	probeHandler := handlers.NewProbeHandler(deps.Database)
	pageHandler := handlers.NewPageHandler(deps.Store, s.Cfg, deps.YAML, s.logger)
	processHandler := api.NewProcessHandler(deps.Processor, s.Cfg.ValidateProcessing, s.logger)
	searchHandler := api.NewSearchHandler(deps.Processor, s.logger)
	trackingHandler := api.NewTrackingHandler(deps.Store, s.logger)
	recordsHandler := api.NewRecordsHandler(deps.Store, s.logger)

	// Probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Auth routes - only when OIDC is configured
	if s.Cfg.IsOIDCEnabled() {
		authHandler, err := handlers.NewAuthHandler(ctx, s.Cfg, s.logger)
		if err != nil {
			return err
		}
		s.App.Get("/auth/login", authHandler.Login)
		s.App.Get("/auth/callback", authHandler.Callback)
		s.App.Get("/auth/logout", authHandler.Logout)
		s.App.Get("/login", pageHandler.Login)
	} else {
		s.logger.Info("operator login is disabled, set OIDC_ISSUER to enable")
	}

	// Frontend routes
	s.App.Get("/", authMiddleware.RequireAuth, pageHandler.Index)
	s.App.Get("/dashboard", authMiddleware.RequireAuth, pageHandler.Dashboard)

	// JSON API
	apiGroup := s.App.Group("/api", authMiddleware.RequireAuth)
	apiGroup.Post("/process", processHandler.Process)
	apiGroup.Post("/search", searchHandler.Search)
	apiGroup.Post("/tracking-url", trackingHandler.Generate)
	apiGroup.Get("/filters", api.Filters)
	apiGroup.Get("/records", recordsHandler.List)
	apiGroup.Delete("/records", recordsHandler.Clear)
	apiGroup.Get("/records/stats", recordsHandler.Stats)
	apiGroup.Get("/records/:id", recordsHandler.Get)
	apiGroup.Delete("/records/:id", recordsHandler.Delete)

	s.logger.Debug("routes registered", zap.Bool("login", s.Cfg.IsOIDCEnabled()))
	return nil
}
