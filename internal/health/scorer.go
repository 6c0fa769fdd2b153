package health

import (
	"time"
)

// Scorer computes a health assessment from an asset snapshot at a given
// evaluation instant. Implementations must be pure: calling Score twice
// with the same snapshot and the same now yields identical results, which
// is what makes scorers safe to share across request handlers without
// synchronization.
type Scorer interface {
	Score(snapshot *AssetSnapshot, now time.Time) (*Result, error)
}

// Classify maps a score to its status band. Bands are disjoint and cover
// every real number: score > 75 is green, score > 40 is yellow, everything
// else is red. A score of exactly 75 falls in the yellow band.
func Classify(score float64) (string, Color) {
	switch {
	case score > 75:
		return LabelOptimal, ColorGreen
	case score > 40:
		return LabelWarning, ColorYellow
	default:
		return LabelCritical, ColorRed
	}
}

// Degradation scoring constants.
const (
	// ageDecayPerDay is the linear score loss per day since installation.
	ageDecayPerDay = 0.01

	// overduePenaltyPerDay is the score loss per day past the maintenance
	// interval. Overdue maintenance dominates every other penalty.
	overduePenaltyPerDay = 0.5

	// maintenanceDecayPerDay is the mild score loss per day since the last
	// maintenance while still within the interval.
	maintenanceDecayPerDay = 0.05

	// referenceUsageHours is the baseline daily usage. Usage above it
	// compresses the score multiplicatively.
	referenceUsageHours = 8.0
)

// DegradationScorer implements the continuous degradation model: additive
// age and maintenance penalties followed by a multiplicative usage factor.
type DegradationScorer struct{}

// Score computes a degradation-model health assessment.
func (DegradationScorer) Score(snapshot *AssetSnapshot, now time.Time) (*Result, error) {
	if snapshot == nil {
		return nil, ErrMissingAsset
	}

	ageDays := daysBetween(snapshot.InstalledAt, now)
	score := 100.0 - float64(ageDays)*ageDecayPerDay

	interval := snapshot.MaintenanceIntervalDays
	if interval <= 0 {
		interval = DefaultMaintenanceIntervalDays
	}

	// An asset that was never maintained degrades from its install date.
	sinceMaintenance := ageDays
	if snapshot.LastMaintenanceAt != nil {
		sinceMaintenance = daysBetween(*snapshot.LastMaintenanceAt, now)
	}

	overdueDays := sinceMaintenance - interval
	if overdueDays > 0 {
		score -= float64(overdueDays) * overduePenaltyPerDay
	} else {
		score -= float64(sinceMaintenance) * maintenanceDecayPerDay
	}

	if factor := snapshot.UsageHoursPerDay / referenceUsageHours; factor > 1 {
		score /= factor
	}

	score = clamp(score, 0, 100)
	return newResult(snapshot.ID, score), nil
}

// Operational scoring constants.
const (
	// operationalIntervalDays is the fixed maintenance interval assumed by
	// the operational model.
	operationalIntervalDays = 90

	// maintenanceStatusPenalty is deducted while an asset is under
	// maintenance.
	maintenanceStatusPenalty = 30

	// overdueStepDays is the step width of the overdue penalty.
	overdueStepDays = 10

	// overdueStepPenalty is the score loss per full overdue step.
	overdueStepPenalty = 10

	// maxOverduePenalty caps the total overdue penalty.
	maxOverduePenalty = 40

	// alertPenalty is the score loss per unresolved alert.
	alertPenalty = 10

	// maxAlertPenalty caps the total alert penalty.
	maxAlertPenalty = 30
)

// OperationalScorer implements the status/overdue/alert-count model: integer
// penalties driven by operational status, a fixed 90-day maintenance
// interval, and unresolved alert counts.
type OperationalScorer struct{}

// Score computes an operational-model health assessment. A down asset
// scores exactly zero; no further adjustment applies.
func (OperationalScorer) Score(snapshot *AssetSnapshot, now time.Time) (*Result, error) {
	if snapshot == nil {
		return nil, ErrMissingAsset
	}

	score := 100
	switch snapshot.Status {
	case StatusMaintenance:
		score -= maintenanceStatusPenalty
	case StatusDown:
		return newResult(snapshot.ID, 0), nil
	}

	if snapshot.LastMaintenanceAt != nil {
		sinceMaintenance := daysBetween(*snapshot.LastMaintenanceAt, now)
		if sinceMaintenance > operationalIntervalDays {
			overdue := sinceMaintenance - operationalIntervalDays
			score -= min(maxOverduePenalty, overdue/overdueStepDays*overdueStepPenalty)
		}
	}

	if snapshot.OpenAlertCount > 0 {
		score -= min(maxAlertPenalty, snapshot.OpenAlertCount*alertPenalty)
	}

	if score < 0 {
		score = 0
	}
	return newResult(snapshot.ID, float64(score)), nil
}

func newResult(assetID string, score float64) *Result {
	status, color := Classify(score)
	return &Result{
		AssetID:            assetID,
		Score:              score,
		FailureProbability: 100 - score,
		Status:             status,
		Color:              color,
	}
}

// daysBetween returns the number of whole days from t to now.
func daysBetween(t, now time.Time) int {
	return int(now.Sub(t).Hours() / 24)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
