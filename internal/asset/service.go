package asset

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/facilitypulse/facilitypulse/internal/health"
)

// AlertCounter supplies the number of unresolved alerts linked to an asset.
// Implemented by the alerting service.
type AlertCounter interface {
	CountOpenByAsset(ctx context.Context, assetID string) (int, error)
}

// ServiceConfig holds configuration for the asset service.
type ServiceConfig struct {
	Repository Repository
	Scorer     health.Scorer
	Alerts     AlertCounter
	Logger     zerolog.Logger
}

// Service provides asset registry operations and health assessments.
type Service struct {
	repo   Repository
	scorer health.Scorer
	alerts AlertCounter
	logger zerolog.Logger
}

// NewService creates a new asset service. The degradation scorer is used
// when no scorer is configured.
func NewService(cfg ServiceConfig) *Service {
	scorer := cfg.Scorer
	if scorer == nil {
		scorer = health.DegradationScorer{}
	}
	return &Service{
		repo:   cfg.Repository,
		scorer: scorer,
		alerts: cfg.Alerts,
		logger: cfg.Logger,
	}
}

// CreateInput holds the fields for creating an asset.
type CreateInput struct {
	Name                    string
	Category                string
	Status                  health.AssetStatus
	InstalledAt             time.Time
	LastMaintenanceAt       *time.Time
	MaintenanceIntervalDays int
	UsageHoursPerDay        float64
	SerialNumber            *string
	ImageURL                *string
}

// UpdateInput holds the fields for a partial asset update. Nil fields are
// left unchanged.
type UpdateInput struct {
	Name                    *string
	Category                *string
	Status                  *health.AssetStatus
	LastMaintenanceAt       *time.Time
	MaintenanceIntervalDays *int
	UsageHoursPerDay        *float64
	SerialNumber            *string
	ImageURL                *string
}

// Create registers a new asset at a location.
func (s *Service) Create(ctx context.Context, locationID string, input *CreateInput) (*Asset, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: nil input", ErrInvalidInput)
	}
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if input.UsageHoursPerDay < 0 || input.UsageHoursPerDay > 24 {
		return nil, fmt.Errorf("%w: usage hours per day must be within [0, 24]", ErrInvalidInput)
	}

	now := time.Now()

	status := input.Status
	if status == "" {
		status = health.StatusOperational
	}
	if !validStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	installedAt := input.InstalledAt
	if installedAt.IsZero() {
		installedAt = now
	}

	interval := input.MaintenanceIntervalDays
	if interval <= 0 {
		interval = health.DefaultMaintenanceIntervalDays
	}

	asset := &Asset{
		ID:                      "ast_" + uuid.New().String()[:22],
		LocationID:              locationID,
		Name:                    input.Name,
		Category:                input.Category,
		Status:                  status,
		InstalledAt:             installedAt,
		LastMaintenanceAt:       input.LastMaintenanceAt,
		MaintenanceIntervalDays: interval,
		UsageHoursPerDay:        input.UsageHoursPerDay,
		SerialNumber:            input.SerialNumber,
		ImageURL:                input.ImageURL,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	if err := s.repo.Create(ctx, asset); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("asset_id", asset.ID).
		Str("location_id", locationID).
		Str("category", asset.Category).
		Msg("asset created")

	return asset, nil
}

// Get retrieves an asset by ID.
func (s *Service) Get(ctx context.Context, locationID, assetID string) (*Asset, error) {
	return s.repo.Get(ctx, locationID, assetID)
}

// List retrieves all assets for a location.
func (s *Service) List(ctx context.Context, locationID string, opts ListOptions) ([]*Asset, error) {
	result, err := s.repo.ListByLocation(ctx, locationID, opts)
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

// Update applies a partial update to an asset.
func (s *Service) Update(ctx context.Context, locationID, assetID string, input *UpdateInput) (*Asset, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: nil input", ErrInvalidInput)
	}

	asset, err := s.repo.Get(ctx, locationID, assetID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		asset.Name = *input.Name
	}
	if input.Category != nil {
		asset.Category = *input.Category
	}
	if input.Status != nil {
		if !validStatus(*input.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *input.Status)
		}
		asset.Status = *input.Status
	}
	if input.LastMaintenanceAt != nil {
		asset.LastMaintenanceAt = input.LastMaintenanceAt
	}
	if input.MaintenanceIntervalDays != nil {
		if *input.MaintenanceIntervalDays <= 0 {
			return nil, fmt.Errorf("%w: maintenance interval must be positive", ErrInvalidInput)
		}
		asset.MaintenanceIntervalDays = *input.MaintenanceIntervalDays
	}
	if input.UsageHoursPerDay != nil {
		if *input.UsageHoursPerDay < 0 || *input.UsageHoursPerDay > 24 {
			return nil, fmt.Errorf("%w: usage hours per day must be within [0, 24]", ErrInvalidInput)
		}
		asset.UsageHoursPerDay = *input.UsageHoursPerDay
	}
	if input.SerialNumber != nil {
		asset.SerialNumber = input.SerialNumber
	}
	if input.ImageURL != nil {
		asset.ImageURL = input.ImageURL
	}

	asset.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// RecordMaintenance marks an asset as maintained at the given instant and
// returns it to operational status if it was under maintenance.
func (s *Service) RecordMaintenance(ctx context.Context, locationID, assetID string, performedAt time.Time) (*Asset, error) {
	asset, err := s.repo.Get(ctx, locationID, assetID)
	if err != nil {
		return nil, err
	}

	asset.LastMaintenanceAt = &performedAt
	if asset.Status == health.StatusMaintenance {
		asset.Status = health.StatusOperational
	}
	asset.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, asset); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("asset_id", assetID).
		Time("performed_at", performedAt).
		Msg("maintenance recorded")

	return asset, nil
}

// Delete soft-deletes an asset.
func (s *Service) Delete(ctx context.Context, locationID, assetID string) error {
	return s.repo.Delete(ctx, locationID, assetID)
}

// Health scores one asset at the given evaluation instant, composing a
// fresh snapshot with its current unresolved alert count.
func (s *Service) Health(ctx context.Context, locationID, assetID string, now time.Time) (*health.Result, error) {
	asset, err := s.repo.Get(ctx, locationID, assetID)
	if err != nil {
		return nil, err
	}

	openAlerts := 0
	if s.alerts != nil {
		openAlerts, err = s.alerts.CountOpenByAsset(ctx, assetID)
		if err != nil {
			return nil, fmt.Errorf("count open alerts: %w", err)
		}
	}

	return s.scorer.Score(asset.Snapshot(openAlerts), now)
}

// HealthAll scores every asset at a location. Results come back in listing
// order; the aggregation itself is order-insensitive.
func (s *Service) HealthAll(ctx context.Context, locationID string, now time.Time) ([]health.Result, error) {
	assets, err := s.List(ctx, locationID, ListOptions{})
	if err != nil {
		return nil, err
	}

	results := make([]health.Result, 0, len(assets))
	for _, a := range assets {
		openAlerts := 0
		if s.alerts != nil {
			openAlerts, err = s.alerts.CountOpenByAsset(ctx, a.ID)
			if err != nil {
				return nil, fmt.Errorf("count open alerts: %w", err)
			}
		}
		result, err := s.scorer.Score(a.Snapshot(openAlerts), now)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	return results, nil
}

func validStatus(status health.AssetStatus) bool {
	switch status {
	case health.StatusOperational, health.StatusMaintenance, health.StatusDown,
		health.StatusInStorage, health.StatusDisposed:
		return true
	default:
		return false
	}
}
