// Package main provides the entrypoint for the FacilityPulse API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/facilitypulse/facilitypulse/internal/alerting"
	"github.com/facilitypulse/facilitypulse/internal/api"
	"github.com/facilitypulse/facilitypulse/internal/api/handler"
	"github.com/facilitypulse/facilitypulse/internal/api/middleware"
	"github.com/facilitypulse/facilitypulse/internal/asset"
	"github.com/facilitypulse/facilitypulse/internal/auth"
	"github.com/facilitypulse/facilitypulse/internal/dashboard"
	"github.com/facilitypulse/facilitypulse/internal/database"
	"github.com/facilitypulse/facilitypulse/internal/device"
	"github.com/facilitypulse/facilitypulse/internal/health"
	"github.com/facilitypulse/facilitypulse/internal/observability"
	"github.com/facilitypulse/facilitypulse/internal/provider/resilience"
	"github.com/facilitypulse/facilitypulse/internal/ticket"
	"github.com/facilitypulse/facilitypulse/internal/triage"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "facilitypulse-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting FacilityPulse API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	otelEnabled := os.Getenv("OTEL_ENABLED") == "true"

	sampleRatio := 0.0
	if raw := os.Getenv("OTEL_TRACE_SAMPLE_RATIO"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid OTEL_TRACE_SAMPLE_RATIO")
		}
		sampleRatio = parsed
	}

	tp, err := observability.Init(ctx, observability.Config{
		ServiceName:      serviceName,
		ServiceVersion:   Version,
		Environment:      env,
		OTLPEndpoint:     otlpEndpoint,
		Enabled:          otelEnabled,
		TraceSampleRatio: sampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown observability")
		}
	}()

	if otelEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, observability cleanup is best-effort
	}

	triageMetrics, err := middleware.NewProviderMetrics("vision")
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize auth repositories and service
	authUserRepo := auth.NewPostgresUserRepository(pool)
	authRefreshRepo := auth.NewPostgresRefreshTokenRepository(pool)

	// Initialize JWT service (get signing key from environment)
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: jwtSigningKey,
		Issuer:     os.Getenv("JWT_ISSUER"),
		Audience:   os.Getenv("JWT_AUDIENCE"),
	})

	authService := auth.NewService(auth.ServiceConfig{
		JWTService:  jwtService,
		UserRepo:    authUserRepo,
		RefreshRepo: authRefreshRepo,
	})
	log.Info().Msg("auth service initialized")

	// Initialize alerting service
	alertService := alerting.NewService(alerting.ServiceConfig{
		Repository: alerting.NewPostgresRepository(pool),
		Logger:     log,
	})
	log.Info().Msg("alert service initialized")

	// Initialize asset service with the configured scoring model
	var scorer health.Scorer = health.DegradationScorer{}
	if os.Getenv("SCORING_MODEL") == "operational" {
		scorer = health.OperationalScorer{}
	}

	assetService := asset.NewService(asset.ServiceConfig{
		Repository: asset.NewPostgresRepository(pool),
		Scorer:     scorer,
		Alerts:     alertService,
		Logger:     log,
	})
	log.Info().Msg("asset service initialized")

	// Initialize device service
	deviceService := device.NewService(device.ServiceConfig{
		Repository: device.NewPostgresRepository(pool),
		Alerts:     alertService,
		Logger:     log,
	})
	log.Info().Msg("device service initialized")

	// Initialize ticket service
	ticketService := ticket.NewService(ticket.ServiceConfig{
		Repository: ticket.NewPostgresRepository(pool),
		Logger:     log,
	})
	log.Info().Msg("ticket service initialized")

	// Initialize dashboard service
	dashboardService := dashboard.NewService(dashboard.ServiceConfig{
		Assets:  assetService,
		Alerts:  alertService,
		Devices: deviceService,
		Tickets: ticketService,
		Logger:  log,
	})

	// Initialize the vision triage backend. Falls back to a static
	// diagnoser when no backend is configured.
	providers := resilience.NewRegistry()

	var diagnoser triage.Diagnoser
	if visionURL := os.Getenv("VISION_API_URL"); visionURL != "" {
		visionCfg := resilience.DefaultClientConfig("vision")
		visionCfg.Registry = providers
		diagnoser = triage.NewHTTPDiagnoser(triage.HTTPDiagnoserConfig{
			BaseURL: visionURL,
			APIKey:  os.Getenv("VISION_API_KEY"),
			Client:  resilience.NewClient(visionCfg),
			Logger:  log,
		})
		log.Info().Str("base_url", visionURL).Msg("vision diagnoser initialized")
	} else {
		diagnoser = &triage.StaticDiagnoser{}
		log.Warn().Msg("VISION_API_URL not set - using static diagnoser")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:          Version,
		BuildTime:        BuildTime,
		Logger:           log,
		ServiceName:      serviceName,
		Metrics:          metrics,
		AuthService:      authService,
		AssetService:     assetService,
		DeviceService:    deviceService,
		AlertService:     alertService,
		TicketService:    ticketService,
		DashboardService: dashboardService,
		Diagnoser:        diagnoser,
		Providers:        providers,
		TriageMetrics:    triageMetrics,
		ReadyChecks: map[string]handler.ReadyCheck{
			"postgres": pool.Ping,
		},
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
