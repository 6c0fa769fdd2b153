// Package api provides the HTTP API for FacilityPulse.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/facilitypulse/facilitypulse/internal/alerting"
	"github.com/facilitypulse/facilitypulse/internal/api/handler"
	"github.com/facilitypulse/facilitypulse/internal/api/middleware"
	"github.com/facilitypulse/facilitypulse/internal/asset"
	"github.com/facilitypulse/facilitypulse/internal/auth"
	"github.com/facilitypulse/facilitypulse/internal/dashboard"
	"github.com/facilitypulse/facilitypulse/internal/device"
	"github.com/facilitypulse/facilitypulse/internal/provider/resilience"
	"github.com/facilitypulse/facilitypulse/internal/ticket"
	"github.com/facilitypulse/facilitypulse/internal/triage"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	AuthService      *auth.Service
	AssetService     *asset.Service
	DeviceService    *device.Service
	AlertService     *alerting.Service
	TicketService    *ticket.Service
	DashboardService *dashboard.Service
	Diagnoser        triage.Diagnoser

	// ReadyChecks are dependency probes keyed by subsystem name,
	// reported on the readiness and status endpoints.
	ReadyChecks map[string]handler.ReadyCheck

	// Providers exposes circuit breaker health for external providers.
	Providers *resilience.Registry

	// TriageMetrics records vision provider call metrics.
	TriageMetrics *middleware.ProviderMetrics
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "facilitypulse-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.ReadyChecks, cfg.Providers)
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	assetHandler := handler.NewAssetHandler(cfg.AssetService)
	deviceHandler := handler.NewDeviceHandler(cfg.DeviceService)
	alertHandler := handler.NewAlertHandler(cfg.AlertService)
	ticketHandler := handler.NewTicketHandler(cfg.TicketService)
	dashboardHandler := handler.NewDashboardHandler(cfg.DashboardService)
	triageHandler := handler.NewTriageHandler(cfg.Diagnoser, cfg.TriageMetrics)

	// Create auth middleware
	authMiddleware := middleware.Auth(cfg.AuthService)

	// Create rate limit middleware for different endpoint categories
	authRateLimit := middleware.RateLimitByIP(middleware.AuthRateLimit)           // 10 req/min
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	telemetryRateLimit := middleware.RateLimitByIP(middleware.TelemetryRateLimit) // 600 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Auth endpoints (public) - strict rate limiting
		r.Route("/auth", func(r chi.Router) {
			r.Use(authRateLimit) // 10 requests per minute per IP
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/logout", authHandler.Logout)
			// logout-all requires authentication
			r.With(authMiddleware).Post("/logout-all", authHandler.LogoutAll)
		})

		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Telemetry webhook - devices authenticate by hardware ID, not JWT
		r.With(telemetryRateLimit).Post("/telemetry", deviceHandler.IngestTelemetry)

		// Triage diagnosis - expensive vision backend, strict rate limiting
		r.With(authMiddleware, expensiveRateLimit).Post("/triage/diagnose", triageHandler.Diagnose)

		// Location-scoped resources (authenticated) - user-based rate limiting
		r.Route("/locations/{locationId}", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit)) // 100 req/min per user

			// Assets
			r.Route("/assets", func(r chi.Router) {
				r.Get("/", assetHandler.ListAssets)
				r.Post("/", assetHandler.CreateAsset)
				r.Route("/{assetId}", func(r chi.Router) {
					r.Get("/", assetHandler.GetAsset)
					r.Put("/", assetHandler.UpdateAsset)
					r.Delete("/", assetHandler.DeleteAsset)
					r.Post("/maintenance", assetHandler.RecordMaintenance)
					r.Get("/health", assetHandler.AssetHealth)
				})
			})

			// Devices
			r.Route("/devices", func(r chi.Router) {
				r.Get("/", deviceHandler.ListDevices)
				r.Post("/", deviceHandler.RegisterDevice)
				r.Route("/{deviceId}", func(r chi.Router) {
					r.Get("/", deviceHandler.GetDevice)
					r.Put("/", deviceHandler.UpdateDevice)
					r.Delete("/", deviceHandler.DeleteDevice)
					r.Get("/telemetry", deviceHandler.TelemetryHistory)
				})
			})

			// Alerts
			r.Route("/alerts", func(r chi.Router) {
				r.Get("/", alertHandler.ListAlerts)
				r.Route("/{alertId}", func(r chi.Router) {
					r.Get("/", alertHandler.GetAlert)
					r.Post("/ack", alertHandler.AcknowledgeAlert)
					r.Post("/resolve", alertHandler.ResolveAlert)
				})
			})

			// Tickets
			r.Route("/tickets", func(r chi.Router) {
				r.Get("/", ticketHandler.ListTickets)
				r.Post("/", ticketHandler.CreateTicket)
				r.Route("/{ticketId}", func(r chi.Router) {
					r.Get("/", ticketHandler.GetTicket)
					r.Put("/", ticketHandler.UpdateTicket)
					r.Delete("/", ticketHandler.DeleteTicket)
					r.Post("/assign", ticketHandler.AssignTicket)
					r.Post("/complete", ticketHandler.CompleteTicket)
				})
			})

			// Dashboard
			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/status", dashboardHandler.Status)
				r.Get("/stats", dashboardHandler.Stats)
			})
		})
	})

	return r
}
