// Package health computes reproducible asset health assessments and
// reduces them to a tenant-wide traffic-light verdict.
package health

import (
	"errors"
	"math"
	"time"
)

// Scoring errors.
var (
	// ErrMissingAsset is returned when a nil snapshot is passed to a scorer.
	// Scoring a missing asset is a caller bug; the scorer fails fast rather
	// than computing a result from zero values.
	ErrMissingAsset = errors.New("missing asset snapshot")
)

// AssetStatus represents an asset's operational status.
type AssetStatus string

const (
	StatusOperational AssetStatus = "operational"
	StatusMaintenance AssetStatus = "maintenance"
	StatusDown        AssetStatus = "down"
	StatusInStorage   AssetStatus = "in_storage"
	StatusDisposed    AssetStatus = "disposed"
)

// Color is the traffic-light classification of a health score.
type Color string

const (
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
)

// Status labels, one per color band.
const (
	LabelOptimal  = "Optimal"
	LabelWarning  = "Warning"
	LabelCritical = "Critical risk"
)

// DefaultMaintenanceIntervalDays is assumed when a snapshot carries no
// maintenance interval of its own.
const DefaultMaintenanceIntervalDays = 180

// AssetSnapshot is the immutable input to scoring. It is produced fresh by
// the asset service on each request; the scorer never caches state.
type AssetSnapshot struct {
	// ID identifies the asset.
	ID string

	// InstalledAt is when the asset was put into service.
	InstalledAt time.Time

	// LastMaintenanceAt is the most recent maintenance, nil if the asset
	// has never been maintained.
	LastMaintenanceAt *time.Time

	// MaintenanceIntervalDays is how often the asset should be serviced.
	// Zero or negative falls back to DefaultMaintenanceIntervalDays.
	MaintenanceIntervalDays int

	// UsageHoursPerDay is the asset's daily usage intensity.
	UsageHoursPerDay float64

	// Status is the asset's current operational status.
	Status AssetStatus

	// OpenAlertCount is the number of unresolved alerts linked to the asset.
	OpenAlertCount int
}

// Result is a derived, ephemeral health assessment. The engine never
// persists it; callers aggregate or serialize it and throw it away.
type Result struct {
	// AssetID identifies the scored asset.
	AssetID string

	// Score is the health score, clamped to [0, 100].
	Score float64

	// FailureProbability is the complement of the score: 100 - Score.
	FailureProbability float64

	// Status is the human-readable band label for the score.
	Status string

	// Color is the traffic-light band for the score.
	Color Color
}

// Rounded returns a copy of the result with the score and failure
// probability rounded to one decimal place for presentation. Band
// classification always uses the unrounded score.
func (r Result) Rounded() Result {
	r.Score = round1(r.Score)
	r.FailureProbability = round1(r.FailureProbability)
	return r
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
