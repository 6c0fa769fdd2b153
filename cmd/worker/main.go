// Package main provides the entrypoint for the FacilityPulse background
// worker: the periodic health sweep and the device offline watchdog.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/facilitypulse/facilitypulse/internal/alerting"
	"github.com/facilitypulse/facilitypulse/internal/asset"
	"github.com/facilitypulse/facilitypulse/internal/database"
	"github.com/facilitypulse/facilitypulse/internal/device"
	"github.com/facilitypulse/facilitypulse/internal/health"
	"github.com/facilitypulse/facilitypulse/internal/observability"
	"github.com/facilitypulse/facilitypulse/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "facilitypulse-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting FacilityPulse worker")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	locations := splitLocations(os.Getenv("SWEEP_LOCATIONS"))
	if len(locations) == 0 {
		log.Fatal().Msg("SWEEP_LOCATIONS is required (comma-separated location IDs)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry
	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}
	tp, err := observability.Init(ctx, observability.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    os.Getenv("APP_ENV"),
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        os.Getenv("OTEL_ENABLED") == "true",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize observability")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown observability")
		}
	}()

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Pub/Sub publisher for alert and status-change notifications.
	// Optional; without a project the sweep still runs, it just doesn't
	// publish transitions.
	var publisher *worker.Publisher
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	if projectID != "" {
		topicName := os.Getenv("PUBSUB_TOPIC")
		if topicName == "" {
			topicName = "facilitypulse-events"
		}
		publisher, err = worker.NewPublisher(ctx, worker.PublisherConfig{
			ProjectID: projectID,
			TopicName: topicName,
			Logger:    log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create publisher")
		}
		defer publisher.Close()
		log.Info().Str("topic", topicName).Msg("publisher initialized")
	} else {
		log.Warn().Msg("PUBSUB_PROJECT_ID not set - notifications disabled")
	}

	// Initialize services. The publisher doubles as the alert notifier.
	alertCfg := alerting.ServiceConfig{
		Repository: alerting.NewPostgresRepository(pool),
		Logger:     log,
	}
	if publisher != nil {
		alertCfg.Notifier = publisher
	}
	alertService := alerting.NewService(alertCfg)

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

	deviceService := device.NewService(device.ServiceConfig{
		Repository: device.NewPostgresRepository(pool),
		Alerts:     alertService,
		Logger:     log,
	})

	sweepCfg := worker.SweepJobConfig{
		Config:  worker.DefaultSweepConfig(locations),
		Logger:  log,
		Assets:  assetService,
		Devices: deviceService,
	}
	if publisher != nil {
		sweepCfg.Publisher = publisher
	}
	sweepJob := worker.NewSweepJob(sweepCfg)

	// Health check server for the container platform. The metrics
	// endpoint exposes sweep counters for debugging.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "healthy",
			"version": Version,
		})
	})
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(sweepJob.MetricsSnapshot())
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("health server error")
		}
	}()

	// With a subscription configured, sweeps are driven by Pub/Sub
	// messages. Otherwise fall back to a local ticker.
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")
	if projectID != "" && subscription != "" {
		pubsubHandler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			SweepJob:         sweepJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer pubsubHandler.Close()

		go func() {
			log.Info().Str("subscription", subscription).Msg("receiving sweep messages")
			if err := pubsubHandler.Start(ctx); err != nil {
				log.Error().Err(err).Msg("pubsub handler stopped")
				cancel()
			}
		}()
	} else {
		interval := 5 * time.Minute
		if raw := os.Getenv("SWEEP_INTERVAL"); raw != "" {
			parsed, err := time.ParseDuration(raw)
			if err != nil {
				log.Fatal().Err(err).Msg("invalid SWEEP_INTERVAL")
			}
			interval = parsed
		}

		go func() {
			log.Info().Dur("interval", interval).Msg("running sweeps on a local ticker")
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					sweepJob.Run(ctx)
				}
			}
		}()
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

// splitLocations parses a comma-separated list of location IDs.
func splitLocations(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
