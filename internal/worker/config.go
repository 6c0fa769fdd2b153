// Package worker provides background job processing for FacilityPulse.
package worker

import (
	"time"
)

// SweepConfig holds configuration for the health sweep job.
type SweepConfig struct {
	// Locations are the location IDs to sweep. Required; the worker has
	// no location registry of its own.
	Locations []string

	// Concurrency is the number of locations swept in parallel.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for sweeping a single location.
	// Default: 30 seconds
	Timeout time.Duration

	// ScoreAssets enables asset health scoring.
	// Default: true
	ScoreAssets bool

	// CheckDevices enables the device offline watchdog.
	// Default: true
	CheckDevices bool
}

// DefaultSweepConfig returns the default sweep configuration.
func DefaultSweepConfig(locations []string) SweepConfig {
	return SweepConfig{
		Locations:    locations,
		Concurrency:  3,
		Timeout:      30 * time.Second,
		ScoreAssets:  true,
		CheckDevices: true,
	}
}
