package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/facilitypulse/facilitypulse/internal/alerting"
	"github.com/facilitypulse/facilitypulse/internal/health"
)

// Publisher pushes alert notifications and asset status transitions onto
// a Pub/Sub topic for the notification layer to deliver.
type Publisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topicName string
	logger    zerolog.Logger
}

// PublisherConfig holds configuration for the Pub/Sub publisher.
type PublisherConfig struct {
	ProjectID string
	TopicName string
	Logger    zerolog.Logger
}

// AlertMessage is the payload published for a newly filed alert.
type AlertMessage struct {
	Kind       string             `json:"kind"` // always "alert"
	AlertID    string             `json:"alert_id"`
	LocationID string             `json:"location_id"`
	DeviceID   *string            `json:"device_id,omitempty"`
	AssetID    *string            `json:"asset_id,omitempty"`
	Type       string             `json:"type"`
	Severity   string             `json:"severity"`
	Title      string             `json:"title"`
	Message    string             `json:"message"`
	Data       map[string]float64 `json:"data,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// StatusMessage is the payload published for an asset color transition.
type StatusMessage struct {
	Kind       string  `json:"kind"` // always "status_change"
	LocationID string  `json:"location_id"`
	AssetID    string  `json:"asset_id"`
	Color      string  `json:"color"`
	Score      float64 `json:"score"`
	Status     string  `json:"status"`
}

// NewPublisher creates a new Pub/Sub publisher.
func NewPublisher(ctx context.Context, cfg PublisherConfig) (*Publisher, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &Publisher{
		client:    client,
		publisher: client.Publisher(cfg.TopicName),
		topicName: cfg.TopicName,
		logger:    cfg.Logger,
	}, nil
}

// NotifyAlert publishes a newly filed alert. Implements the alerting
// service's Notifier.
func (p *Publisher) NotifyAlert(ctx context.Context, alert *alerting.Alert) error {
	msg := AlertMessage{
		Kind:       "alert",
		AlertID:    alert.ID,
		LocationID: alert.LocationID,
		DeviceID:   alert.DeviceID,
		AssetID:    alert.AssetID,
		Type:       string(alert.Type),
		Severity:   string(alert.Severity),
		Title:      alert.Title,
		Message:    alert.Message,
		Data:       alert.TriggerData,
		CreatedAt:  alert.CreatedAt,
	}
	return p.publish(ctx, msg)
}

// PublishStatusChange publishes an asset color transition detected by the
// sweep. Implements the sweep job's StatusPublisher.
func (p *Publisher) PublishStatusChange(ctx context.Context, locationID string, result health.Result) error {
	msg := StatusMessage{
		Kind:       "status_change",
		LocationID: locationID,
		AssetID:    result.AssetID,
		Color:      string(result.Color),
		Score:      result.Score,
		Status:     string(result.Status),
	}
	return p.publish(ctx, msg)
}

func (p *Publisher) publish(ctx context.Context, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{Data: data})
	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", p.topicName, err)
	}

	p.logger.Debug().
		Str("topic", p.topicName).
		Str("message_id", id).
		Msg("published message")
	return nil
}

// Close stops the publisher and closes the Pub/Sub client.
func (p *Publisher) Close() error {
	p.publisher.Stop()
	return p.client.Close()
}
