package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Notifier delivers newly filed alerts to the notification layer.
type Notifier interface {
	NotifyAlert(ctx context.Context, alert *Alert) error
}

// ServiceConfig holds configuration for the alert service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger

	// Notifier receives every newly filed alert. Optional; delivery
	// failures are logged, never surfaced to the caller.
	Notifier Notifier
}

// Service owns alert persistence and the alert lifecycle. The evaluator
// proposes events; the service decides which of them become records.
type Service struct {
	repo     Repository
	logger   zerolog.Logger
	notifier Notifier
}

// NewService creates a new alert service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:     cfg.Repository,
		logger:   cfg.Logger,
		notifier: cfg.Notifier,
	}
}

// File persists proposed alerts, suppressing duplicates: a proposal is
// dropped when an unresolved alert of the same type is already open for the
// same device, so a sustained condition raises one record rather than one
// per reading. Returns the alerts that were actually created.
func (s *Service) File(ctx context.Context, proposed []*Alert, now time.Time) ([]*Alert, error) {
	filed := make([]*Alert, 0, len(proposed))
	for _, alert := range proposed {
		if alert.DeviceID != nil {
			open, err := s.repo.HasOpen(ctx, *alert.DeviceID, alert.Type)
			if err != nil {
				return filed, fmt.Errorf("check open alerts: %w", err)
			}
			if open {
				s.logger.Debug().
					Str("device_id", *alert.DeviceID).
					Str("alert_type", string(alert.Type)).
					Msg("suppressing duplicate alert for open condition")
				continue
			}
		}

		alert.ID = "alr_" + uuid.New().String()[:22]
		alert.CreatedAt = now
		if err := s.repo.Create(ctx, alert); err != nil {
			return filed, fmt.Errorf("create alert: %w", err)
		}
		filed = append(filed, alert)

		if s.notifier != nil {
			if err := s.notifier.NotifyAlert(ctx, alert); err != nil {
				s.logger.Warn().Err(err).
					Str("alert_id", alert.ID).
					Msg("failed to notify alert")
			}
		}
	}
	return filed, nil
}

// Get retrieves an alert by ID.
func (s *Service) Get(ctx context.Context, id string) (*Alert, error) {
	return s.repo.Get(ctx, id)
}

// List retrieves alerts matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Alert, error) {
	return s.repo.List(ctx, filter)
}

// CountOpenByAsset returns the number of unresolved alerts for an asset.
func (s *Service) CountOpenByAsset(ctx context.Context, assetID string) (int, error) {
	return s.repo.CountOpenByAsset(ctx, assetID)
}

// Acknowledge marks an alert acknowledged by the given actor. Acknowledging
// a resolved alert is rejected; acknowledging twice is a no-op.
func (s *Service) Acknowledge(ctx context.Context, id, actor string, now time.Time) (*Alert, error) {
	alert, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if alert.Resolved {
		return nil, ErrAlertResolved
	}
	if alert.Acknowledged {
		return alert, nil
	}

	alert.Acknowledged = true
	alert.AcknowledgedAt = &now
	alert.AcknowledgedBy = &actor
	if err := s.repo.Update(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// Resolve closes an alert. Resolving twice is a no-op; a resolved alert
// never transitions back to unresolved.
func (s *Service) Resolve(ctx context.Context, id string, now time.Time) (*Alert, error) {
	alert, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if alert.Resolved {
		return alert, nil
	}

	alert.Resolved = true
	alert.ResolvedAt = &now
	if err := s.repo.Update(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}
