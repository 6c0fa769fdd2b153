package device

import (
	"context"
	"time"
)

// Repository defines the interface for device and telemetry persistence.
// Soft-deleted devices are invisible to every method except Delete.
type Repository interface {
	// Get retrieves a device by location ID and device ID.
	Get(ctx context.Context, locationID, deviceID string) (*Device, error)

	// GetByHardwareID retrieves a device by its vendor hardware identifier.
	// Telemetry webhooks authenticate with the hardware ID alone.
	GetByHardwareID(ctx context.Context, hardwareID string) (*Device, error)

	// ListByLocation retrieves all devices for a location.
	ListByLocation(ctx context.Context, locationID string, opts ListOptions) ([]*Device, error)

	// ListHeartbeatStale retrieves online devices whose last heartbeat is
	// older than the deadline.
	ListHeartbeatStale(ctx context.Context, deadline time.Time) ([]*Device, error)

	// Create creates a new device.
	Create(ctx context.Context, device *Device) error

	// Update updates an existing device.
	Update(ctx context.Context, device *Device) error

	// Delete soft-deletes a device.
	Delete(ctx context.Context, locationID, deviceID string) error

	// InsertTelemetry stores a reading.
	InsertTelemetry(ctx context.Context, reading *Telemetry) error

	// ListTelemetry retrieves stored readings for a device, newest first.
	ListTelemetry(ctx context.Context, deviceID string, opts HistoryOptions) ([]*Telemetry, error)
}
