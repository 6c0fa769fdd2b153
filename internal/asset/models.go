// Package asset provides the asset registry: the physical equipment a
// location tracks, maintained through CRUD operations and scored by the
// health engine.
package asset

import (
	"errors"
	"time"

	"github.com/facilitypulse/facilitypulse/internal/health"
)

// Repository errors.
var (
	ErrAssetNotFound = errors.New("asset not found")
	ErrInvalidInput  = errors.New("invalid asset input")
)

// Asset represents a tracked piece of equipment at a location.
type Asset struct {
	ID         string
	LocationID string
	Name       string
	Category   string
	Status     health.AssetStatus

	InstalledAt             time.Time
	LastMaintenanceAt       *time.Time
	MaintenanceIntervalDays int
	UsageHoursPerDay        float64

	SerialNumber *string
	ImageURL     *string

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Snapshot produces the immutable scoring input for this asset. The open
// alert count is supplied by the caller since the registry does not own
// alert state.
func (a *Asset) Snapshot(openAlerts int) *health.AssetSnapshot {
	return &health.AssetSnapshot{
		ID:                      a.ID,
		InstalledAt:             a.InstalledAt,
		LastMaintenanceAt:       a.LastMaintenanceAt,
		MaintenanceIntervalDays: a.MaintenanceIntervalDays,
		UsageHoursPerDay:        a.UsageHoursPerDay,
		Status:                  a.Status,
		OpenAlertCount:          openAlerts,
	}
}

// ListOptions contains options for listing assets.
type ListOptions struct {
	// Category filters by asset category when non-empty.
	Category string

	// Limit caps the number of results. Zero means the repository default.
	Limit int
}

// ListResult contains the result of listing assets.
type ListResult struct {
	Items []*Asset
}
