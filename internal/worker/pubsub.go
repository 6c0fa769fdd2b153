package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// PubSubHandler handles Pub/Sub messages for the worker.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	sweepJob         *SweepJob
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	SweepJob         *SweepJob
	Logger           zerolog.Logger
}

// SweepMessage represents a sweep job message.
type SweepMessage struct {
	JobType string `json:"job_type"`
}

// Job types carried in sweep messages.
const (
	JobTypeHealthSweep  = "health_sweep"
	JobTypeOfflineCheck = "offline_check"
)

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// Configure receive settings.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		sweepJob:         cfg.SweepJob,
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	var sweepMsg SweepMessage
	if err := json.Unmarshal(msg.Data, &sweepMsg); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		msg.Nack()
		return
	}

	var err error
	switch sweepMsg.JobType {
	case JobTypeHealthSweep:
		err = h.handleHealthSweep(ctx)
	case JobTypeOfflineCheck:
		err = h.handleOfflineCheck(ctx)
	default:
		logger.Warn().Str("job_type", sweepMsg.JobType).Msg("unknown job type")
		msg.Ack() // Ack unknown messages to prevent redelivery
		return
	}

	if err != nil {
		logger.Error().Err(err).Msg("job failed")
		msg.Nack()
		return
	}

	logger.Info().
		Str("job_type", sweepMsg.JobType).
		Dur("duration", time.Since(startTime)).
		Msg("job completed successfully")

	msg.Ack()
}

func (h *PubSubHandler) handleHealthSweep(ctx context.Context) error {
	result := h.sweepJob.Run(ctx)

	// Consider it successful if more than half the locations swept cleanly.
	if result.Failed > result.Locations-result.Failed {
		return fmt.Errorf("too many sweep failures: %d/%d locations", result.Failed, result.Locations)
	}
	return nil
}

// handleOfflineCheck runs only the watchdog half of the sweep. Used on a
// tighter schedule than the full health sweep.
func (h *PubSubHandler) handleOfflineCheck(ctx context.Context) error {
	checkJob := NewSweepJob(SweepJobConfig{
		Config: SweepConfig{
			Concurrency:  1,
			Timeout:      10 * time.Second,
			ScoreAssets:  false,
			CheckDevices: true,
		},
		Logger:  h.logger,
		Devices: h.sweepJob.devices,
	})

	result := checkJob.Run(ctx)
	if result.Failed > 0 {
		return fmt.Errorf("offline check failed: %d errors", result.Failed)
	}
	return nil
}
