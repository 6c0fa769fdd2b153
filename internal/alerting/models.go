// Package alerting evaluates telemetry readings against device thresholds
// and manages the resulting alert records through their lifecycle.
package alerting

import (
	"errors"
	"time"
)

// Alerting errors.
var (
	ErrAlertNotFound  = errors.New("alert not found")
	ErrAlertResolved  = errors.New("alert is already resolved")
	ErrMissingReading = errors.New("missing telemetry reading")
)

// Type identifies the condition that raised an alert, one per
// metric/direction combination.
type Type string

const (
	TypeTemperatureHigh Type = "temperature_high"
	TypeTemperatureLow  Type = "temperature_low"
	TypeHumidityHigh    Type = "humidity_high"
	TypeHumidityLow     Type = "humidity_low"
	TypeEnergySpike     Type = "energy_spike"
	TypeDeviceOffline   Type = "device_offline"
)

// Severity is the urgency of an alert.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Metric names observed in practice. The evaluator only checks metrics a
// threshold is configured for; readings may carry any number of others.
const (
	MetricTemperature = "temperature"
	MetricHumidity    = "humidity"
	MetricEnergy      = "energy"
)

// Thresholds holds a device's configured alert thresholds. Every field is
// optional: a nil threshold means the corresponding check is skipped and
// can never raise an event.
type Thresholds struct {
	TempMax     *float64
	TempMin     *float64
	HumidityMax *float64
	HumidityMin *float64
	EnergyMax   *float64
}

// Source identifies the device a reading came from, for attribution on
// emitted alerts. AssetID is nil for devices not linked to an asset.
type Source struct {
	DeviceID   string
	DeviceName string
	AssetID    *string
	LocationID string
}

// Reading is a telemetry payload from a device. Metrics is an open set;
// values are kept untyped so one malformed metric never poisons the rest.
type Reading struct {
	DeviceID  string
	Timestamp time.Time
	Metrics   map[string]any
}

// Alert is a discrete record of a detected anomalous condition. The
// evaluator proposes alerts unresolved and unacknowledged; only the alert
// service ever flips the lifecycle flags, and a resolved alert never
// reopens.
type Alert struct {
	ID         string
	LocationID string
	DeviceID   *string
	AssetID    *string

	Type     Type
	Severity Severity
	Title    string
	Message  string

	// TriggerData captures the observed value and the breached threshold
	// for later audit, keyed by metric name plus "threshold".
	TriggerData map[string]float64

	Acknowledged   bool
	Resolved       bool
	AcknowledgedAt *time.Time
	AcknowledgedBy *string
	ResolvedAt     *time.Time

	CreatedAt time.Time
}

// ListFilter narrows alert queries.
type ListFilter struct {
	LocationID string
	DeviceID   string
	AssetID    string
	Type       Type
	Severity   Severity

	// UnresolvedOnly limits results to open alerts.
	UnresolvedOnly bool

	// Limit caps the number of results, newest first. Zero means the
	// repository default.
	Limit int
}
