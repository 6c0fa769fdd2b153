package device

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/facilitypulse/facilitypulse/internal/alerting"
)

// AlertFiler persists proposed alerts. Implemented by the alerting service;
// duplicate suppression happens on that side.
type AlertFiler interface {
	File(ctx context.Context, proposed []*alerting.Alert, now time.Time) ([]*alerting.Alert, error)
}

// ServiceConfig holds configuration for the device service.
type ServiceConfig struct {
	Repository Repository
	Alerts     AlertFiler
	Logger     zerolog.Logger

	// HeartbeatTimeout is how long a device may stay silent before the
	// offline watchdog flags it. Zero means DefaultHeartbeatTimeout.
	HeartbeatTimeout time.Duration
}

// DefaultHeartbeatTimeout is the silence window after which a device is
// considered offline.
const DefaultHeartbeatTimeout = 15 * time.Minute

// Service provides device registry operations and telemetry ingestion.
type Service struct {
	repo             Repository
	alerts           AlertFiler
	logger           zerolog.Logger
	heartbeatTimeout time.Duration
}

// NewService creates a new device service.
func NewService(cfg ServiceConfig) *Service {
	timeout := cfg.HeartbeatTimeout
	if timeout <= 0 {
		timeout = DefaultHeartbeatTimeout
	}
	return &Service{
		repo:             cfg.Repository,
		alerts:           cfg.Alerts,
		logger:           cfg.Logger,
		heartbeatTimeout: timeout,
	}
}

// RegisterInput holds the fields for registering a device.
type RegisterInput struct {
	Name       string
	Type       Type
	HardwareID string
	AssetID    *string
	Thresholds alerting.Thresholds
}

// UpdateInput holds the fields for a partial device update. Nil fields are
// left unchanged.
type UpdateInput struct {
	Name       *string
	AssetID    *string
	Thresholds *alerting.Thresholds
}

// Register adds a device to a location.
func (s *Service) Register(ctx context.Context, locationID string, input *RegisterInput) (*Device, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: nil input", ErrInvalidInput)
	}
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if input.HardwareID == "" {
		return nil, fmt.Errorf("%w: hardware ID is required", ErrInvalidInput)
	}
	if !validType(input.Type) {
		return nil, fmt.Errorf("%w: unknown device type %q", ErrInvalidInput, input.Type)
	}

	now := time.Now()
	device := &Device{
		ID:         "dev_" + uuid.New().String()[:22],
		LocationID: locationID,
		AssetID:    input.AssetID,
		Type:       input.Type,
		HardwareID: input.HardwareID,
		Name:       input.Name,
		Thresholds: input.Thresholds,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, device); err != nil {
		return nil, fmt.Errorf("creating device: %w", err)
	}

	s.logger.Info().
		Str("device_id", device.ID).
		Str("location_id", locationID).
		Str("type", string(device.Type)).
		Msg("device registered")

	return device, nil
}

// Get retrieves a device.
func (s *Service) Get(ctx context.Context, locationID, deviceID string) (*Device, error) {
	return s.repo.Get(ctx, locationID, deviceID)
}

// List retrieves devices for a location.
func (s *Service) List(ctx context.Context, locationID string, opts ListOptions) ([]*Device, error) {
	return s.repo.ListByLocation(ctx, locationID, opts)
}

// Update applies a partial update to a device.
func (s *Service) Update(ctx context.Context, locationID, deviceID string, input *UpdateInput) (*Device, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: nil input", ErrInvalidInput)
	}

	device, err := s.repo.Get(ctx, locationID, deviceID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		device.Name = *input.Name
	}
	if input.AssetID != nil {
		device.AssetID = input.AssetID
	}
	if input.Thresholds != nil {
		device.Thresholds = *input.Thresholds
	}
	device.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, device); err != nil {
		return nil, fmt.Errorf("updating device: %w", err)
	}
	return device, nil
}

// Delete removes a device from a location.
func (s *Service) Delete(ctx context.Context, locationID, deviceID string) error {
	return s.repo.Delete(ctx, locationID, deviceID)
}

// IngestTelemetry processes one reading from the telemetry webhook. The
// device is looked up by hardware ID, the reading is stored, the heartbeat
// is bumped, and the reading is checked against the device's thresholds.
// Alerts raised by the check are filed through the alert service.
func (s *Service) IngestTelemetry(ctx context.Context, hardwareID string, data map[string]any, recordedAt time.Time) (*Telemetry, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty telemetry payload", ErrInvalidInput)
	}

	device, err := s.repo.GetByHardwareID(ctx, hardwareID)
	if err != nil {
		return nil, err
	}

	reading := &Telemetry{
		ID:         "tel_" + uuid.New().String()[:22],
		DeviceID:   device.ID,
		Data:       data,
		RecordedAt: recordedAt,
	}
	if err := s.repo.InsertTelemetry(ctx, reading); err != nil {
		return nil, fmt.Errorf("storing telemetry: %w", err)
	}

	device.Online = true
	device.LastHeartbeatAt = &recordedAt
	device.UpdatedAt = recordedAt
	if err := s.repo.Update(ctx, device); err != nil {
		return nil, fmt.Errorf("updating heartbeat: %w", err)
	}

	proposed := alerting.Evaluate(device.Source(), device.Thresholds, alerting.Reading{
		DeviceID:  device.ID,
		Timestamp: recordedAt,
		Metrics:   data,
	})
	if len(proposed) > 0 && s.alerts != nil {
		filed, err := s.alerts.File(ctx, proposed, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("filing alerts: %w", err)
		}
		if len(filed) > 0 {
			s.logger.Warn().
				Str("device_id", device.ID).
				Int("alerts", len(filed)).
				Msg("telemetry reading breached thresholds")
		}
	}

	return reading, nil
}

// TelemetryHistory retrieves stored readings for a device, newest first.
func (s *Service) TelemetryHistory(ctx context.Context, locationID, deviceID string, opts HistoryOptions) ([]*Telemetry, error) {
	if _, err := s.repo.Get(ctx, locationID, deviceID); err != nil {
		return nil, err
	}
	return s.repo.ListTelemetry(ctx, deviceID, opts)
}

// MarkStaleOffline flags devices that have gone silent. Every online
// device whose last heartbeat is older than the heartbeat timeout is
// marked offline and a device_offline alert is proposed for it. Returns
// the devices that were flipped.
func (s *Service) MarkStaleOffline(ctx context.Context, now time.Time) ([]*Device, error) {
	deadline := now.Add(-s.heartbeatTimeout)
	stale, err := s.repo.ListHeartbeatStale(ctx, deadline)
	if err != nil {
		return nil, fmt.Errorf("listing stale devices: %w", err)
	}

	var flipped []*Device
	for _, device := range stale {
		device.Online = false
		device.UpdatedAt = now
		if err := s.repo.Update(ctx, device); err != nil {
			s.logger.Error().Err(err).
				Str("device_id", device.ID).
				Msg("failed to mark device offline")
			continue
		}
		flipped = append(flipped, device)

		if s.alerts == nil {
			continue
		}
		if _, err := s.alerts.File(ctx, []*alerting.Alert{offlineAlert(device)}, now); err != nil {
			s.logger.Error().Err(err).
				Str("device_id", device.ID).
				Msg("failed to file offline alert")
		}
	}

	if len(flipped) > 0 {
		s.logger.Info().Int("devices", len(flipped)).Msg("marked stale devices offline")
	}
	return flipped, nil
}

// offlineAlert builds the proposed alert for a silent device.
func offlineAlert(d *Device) *alerting.Alert {
	deviceID := d.ID
	return &alerting.Alert{
		LocationID: d.LocationID,
		DeviceID:   &deviceID,
		AssetID:    d.AssetID,
		Type:       alerting.TypeDeviceOffline,
		Severity:   alerting.SeverityWarning,
		Title:      "Device offline",
		Message:    fmt.Sprintf("%s has stopped reporting telemetry", d.Name),
	}
}

func validType(t Type) bool {
	switch t {
	case TypeTempHum, TypeEnergy, TypeBridge:
		return true
	}
	return false
}
