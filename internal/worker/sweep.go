package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/facilitypulse/facilitypulse/internal/device"
	"github.com/facilitypulse/facilitypulse/internal/health"
)

// AssetScorer scores every asset at a location. Implemented by the asset
// service.
type AssetScorer interface {
	HealthAll(ctx context.Context, locationID string, now time.Time) ([]health.Result, error)
}

// OfflineWatchdog flags devices that stopped reporting. Implemented by
// the device service.
type OfflineWatchdog interface {
	MarkStaleOffline(ctx context.Context, now time.Time) ([]*device.Device, error)
}

// StatusPublisher receives asset color transitions detected by the sweep.
// Implemented by the Pub/Sub publisher.
type StatusPublisher interface {
	PublishStatusChange(ctx context.Context, locationID string, result health.Result) error
}

// SweepJob periodically scores every asset and runs the offline watchdog.
type SweepJob struct {
	config SweepConfig
	logger zerolog.Logger

	assets    AssetScorer
	devices   OfflineWatchdog
	publisher StatusPublisher

	// lastColors remembers each asset's color from the previous sweep so
	// only transitions are published.
	colorMu    sync.Mutex
	lastColors map[string]health.Color

	metrics *SweepMetrics
}

// SweepMetrics tracks sweep job statistics.
type SweepMetrics struct {
	mu sync.RWMutex

	TotalSweeps    int64
	AssetsScored   int64
	RedAssets      int64
	Transitions    int64
	DevicesFlagged int64
	FailedSweeps   int64

	LastSweepAt       time.Time
	LastSweepDuration time.Duration
}

// SweepJobConfig holds configuration for creating a SweepJob.
type SweepJobConfig struct {
	Config    SweepConfig
	Logger    zerolog.Logger
	Assets    AssetScorer
	Devices   OfflineWatchdog
	Publisher StatusPublisher
}

// NewSweepJob creates a new sweep job processor.
func NewSweepJob(cfg SweepJobConfig) *SweepJob {
	config := cfg.Config
	if config.Concurrency <= 0 {
		config.Concurrency = 3
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &SweepJob{
		config:     config,
		logger:     cfg.Logger,
		assets:     cfg.Assets,
		devices:    cfg.Devices,
		publisher:  cfg.Publisher,
		lastColors: make(map[string]health.Color),
		metrics:    &SweepMetrics{},
	}
}

// SweepResult contains the result of one sweep.
type SweepResult struct {
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	Locations      int
	AssetsScored   int
	RedAssets      int
	Transitions    int
	DevicesFlagged int
	Failed         int
	Errors         []SweepError
}

// SweepError records a failure while sweeping one location.
type SweepError struct {
	LocationID string
	Error      string
}

// Run executes one sweep over all configured locations.
func (j *SweepJob) Run(ctx context.Context) *SweepResult {
	startTime := time.Now()
	result := &SweepResult{
		StartTime: startTime,
		Locations: len(j.config.Locations),
	}

	j.logger.Info().
		Int("locations", result.Locations).
		Int("concurrency", j.config.Concurrency).
		Msg("starting health sweep")

	if j.config.ScoreAssets && j.assets != nil {
		j.scoreLocations(ctx, result)
	}

	if j.config.CheckDevices && j.devices != nil {
		flipped, err := j.devices.MarkStaleOffline(ctx, time.Now())
		if err != nil {
			j.logger.Error().Err(err).Msg("offline watchdog failed")
			result.Errors = append(result.Errors, SweepError{Error: err.Error()})
			result.Failed++
		} else {
			result.DevicesFlagged = len(flipped)
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("assets_scored", result.AssetsScored).
		Int("red_assets", result.RedAssets).
		Int("transitions", result.Transitions).
		Int("devices_flagged", result.DevicesFlagged).
		Int("failed", result.Failed).
		Msg("health sweep completed")

	return result
}

type locationResult struct {
	locationID  string
	scored      int
	red         int
	transitions int
	err         error
}

func (j *SweepJob) scoreLocations(ctx context.Context, result *SweepResult) {
	locationsChan := make(chan string, len(j.config.Locations))
	resultsChan := make(chan locationResult, len(j.config.Locations))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for locationID := range locationsChan {
				select {
				case <-ctx.Done():
					return
				default:
					resultsChan <- j.sweepLocation(ctx, locationID)
				}
			}
		}()
	}

	for _, id := range j.config.Locations {
		locationsChan <- id
	}
	close(locationsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for lr := range resultsChan {
		if lr.err != nil {
			result.Failed++
			result.Errors = append(result.Errors, SweepError{
				LocationID: lr.locationID,
				Error:      lr.err.Error(),
			})
			continue
		}
		result.AssetsScored += lr.scored
		result.RedAssets += lr.red
		result.Transitions += lr.transitions
	}
}

func (j *SweepJob) sweepLocation(ctx context.Context, locationID string) locationResult {
	lr := locationResult{locationID: locationID}

	sweepCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	results, err := j.assets.HealthAll(sweepCtx, locationID, time.Now())
	if err != nil {
		lr.err = err
		return lr
	}

	lr.scored = len(results)
	for _, r := range results {
		if r.Color == health.ColorRed {
			lr.red++
		}
		if j.recordColor(r.AssetID, r.Color) {
			lr.transitions++
			if j.publisher != nil {
				if err := j.publisher.PublishStatusChange(sweepCtx, locationID, r); err != nil {
					j.logger.Warn().Err(err).
						Str("asset_id", r.AssetID).
						Msg("failed to publish status change")
				}
			}
		}
	}
	return lr
}

// recordColor stores the asset's color and reports whether it changed
// since the previous sweep. The first observation of an asset counts as a
// transition only when it is not green.
func (j *SweepJob) recordColor(assetID string, color health.Color) bool {
	j.colorMu.Lock()
	defer j.colorMu.Unlock()

	previous, seen := j.lastColors[assetID]
	j.lastColors[assetID] = color
	if !seen {
		return color != health.ColorGreen
	}
	return previous != color
}

func (j *SweepJob) updateMetrics(result *SweepResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalSweeps++
	j.metrics.AssetsScored += int64(result.AssetsScored)
	j.metrics.RedAssets += int64(result.RedAssets)
	j.metrics.Transitions += int64(result.Transitions)
	j.metrics.DevicesFlagged += int64(result.DevicesFlagged)
	j.metrics.FailedSweeps += int64(result.Failed)
	j.metrics.LastSweepAt = result.EndTime
	j.metrics.LastSweepDuration = result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *SweepJob) GetMetrics() SweepMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return SweepMetrics{
		TotalSweeps:       j.metrics.TotalSweeps,
		AssetsScored:      j.metrics.AssetsScored,
		RedAssets:         j.metrics.RedAssets,
		Transitions:       j.metrics.Transitions,
		DevicesFlagged:    j.metrics.DevicesFlagged,
		FailedSweeps:      j.metrics.FailedSweeps,
		LastSweepAt:       j.metrics.LastSweepAt,
		LastSweepDuration: j.metrics.LastSweepDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *SweepJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_sweeps":        m.TotalSweeps,
		"assets_scored":       m.AssetsScored,
		"red_assets":          m.RedAssets,
		"transitions":         m.Transitions,
		"devices_flagged":     m.DevicesFlagged,
		"failed_sweeps":       m.FailedSweeps,
		"last_sweep_at":       m.LastSweepAt,
		"last_sweep_duration": m.LastSweepDuration.String(),
	}
}
