// Package device provides the IoT device registry and telemetry ingestion.
// Incoming readings are stored, bump the device heartbeat, and are checked
// against the device's thresholds by the alerting engine.
package device

import (
	"errors"
	"time"

	"github.com/facilitypulse/facilitypulse/internal/alerting"
)

// Repository errors.
var (
	ErrDeviceNotFound = errors.New("device not found")
	ErrInvalidInput   = errors.New("invalid device input")
)

// Type represents an IoT device type.
type Type string

const (
	TypeTempHum Type = "temp_hum"
	TypeEnergy  Type = "energy"
	TypeBridge  Type = "bridge"
)

// Device represents a registered IoT sensor or bridge.
type Device struct {
	ID         string
	LocationID string

	// AssetID links the device to an asset, nil for free-standing sensors.
	AssetID *string

	Type Type

	// HardwareID is the vendor identifier (MAC address or serial) devices
	// authenticate with on the telemetry webhook.
	HardwareID string

	Name string

	Online          bool
	LastHeartbeatAt *time.Time

	// Thresholds configure automatic alerting; absent thresholds disable
	// the corresponding checks.
	Thresholds alerting.Thresholds

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Source returns the alert attribution for this device.
func (d *Device) Source() alerting.Source {
	return alerting.Source{
		DeviceID:   d.ID,
		DeviceName: d.Name,
		AssetID:    d.AssetID,
		LocationID: d.LocationID,
	}
}

// Telemetry is one stored reading from a device. Data is an open set of
// metrics; different sensor types report different fields.
type Telemetry struct {
	ID         string
	DeviceID   string
	Data       map[string]any
	RecordedAt time.Time
}

// ListOptions contains options for listing devices.
type ListOptions struct {
	// Type filters by device type when non-empty.
	Type Type

	// AssetID filters to devices attached to one asset when non-empty.
	AssetID string
}

// HistoryOptions narrows telemetry history queries.
type HistoryOptions struct {
	// Since excludes readings recorded before this instant.
	Since time.Time

	// Limit caps the number of readings, newest first. Zero means the
	// repository default.
	Limit int
}

// maxHistoryRecords caps any telemetry history query.
const maxHistoryRecords = 1000
