package device

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/facilitypulse/facilitypulse/internal/alerting"
)

// InMemoryRepository is an in-memory implementation of Repository for
// development and testing.
type InMemoryRepository struct {
	mu        sync.RWMutex
	devices   map[string]*Device
	telemetry map[string][]*Telemetry
}

// NewInMemoryRepository creates a new in-memory device repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		devices:   make(map[string]*Device),
		telemetry: make(map[string][]*Telemetry),
	}
}

// Get retrieves a device by location ID and device ID.
func (r *InMemoryRepository) Get(ctx context.Context, locationID, deviceID string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[deviceID]
	if !ok || d.DeletedAt != nil || d.LocationID != locationID {
		return nil, ErrDeviceNotFound
	}
	return copyDevice(d), nil
}

// GetByHardwareID retrieves a device by its hardware identifier.
func (r *InMemoryRepository) GetByHardwareID(ctx context.Context, hardwareID string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.devices {
		if d.DeletedAt == nil && d.HardwareID == hardwareID {
			return copyDevice(d), nil
		}
	}
	return nil, ErrDeviceNotFound
}

// ListByLocation retrieves all devices for a location.
func (r *InMemoryRepository) ListByLocation(ctx context.Context, locationID string, opts ListOptions) ([]*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var devices []*Device
	for _, d := range r.devices {
		if d.DeletedAt != nil || d.LocationID != locationID {
			continue
		}
		if opts.Type != "" && d.Type != opts.Type {
			continue
		}
		if opts.AssetID != "" && (d.AssetID == nil || *d.AssetID != opts.AssetID) {
			continue
		}
		devices = append(devices, copyDevice(d))
	}

	sort.Slice(devices, func(i, j int) bool {
		return devices[i].CreatedAt.After(devices[j].CreatedAt)
	})
	return devices, nil
}

// ListHeartbeatStale retrieves online devices with heartbeats older than the deadline.
func (r *InMemoryRepository) ListHeartbeatStale(ctx context.Context, deadline time.Time) ([]*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stale []*Device
	for _, d := range r.devices {
		if d.DeletedAt != nil || !d.Online {
			continue
		}
		if d.LastHeartbeatAt == nil || d.LastHeartbeatAt.Before(deadline) {
			stale = append(stale, copyDevice(d))
		}
	}
	return stale, nil
}

// Create creates a new device.
func (r *InMemoryRepository) Create(ctx context.Context, device *Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.devices[device.ID] = copyDevice(device)
	return nil
}

// Update updates an existing device.
func (r *InMemoryRepository) Update(ctx context.Context, device *Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.devices[device.ID]
	if !ok || existing.DeletedAt != nil {
		return ErrDeviceNotFound
	}
	r.devices[device.ID] = copyDevice(device)
	return nil
}

// Delete soft-deletes a device.
func (r *InMemoryRepository) Delete(ctx context.Context, locationID, deviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[deviceID]
	if !ok || d.DeletedAt != nil || d.LocationID != locationID {
		return ErrDeviceNotFound
	}
	now := time.Now()
	d.DeletedAt = &now
	return nil
}

// InsertTelemetry stores a reading.
func (r *InMemoryRepository) InsertTelemetry(ctx context.Context, reading *Telemetry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.telemetry[reading.DeviceID] = append(r.telemetry[reading.DeviceID], copyTelemetry(reading))
	return nil
}

// ListTelemetry retrieves stored readings for a device, newest first.
func (r *InMemoryRepository) ListTelemetry(ctx context.Context, deviceID string, opts HistoryOptions) ([]*Telemetry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := opts.Limit
	if limit <= 0 || limit > maxHistoryRecords {
		limit = maxHistoryRecords
	}

	var readings []*Telemetry
	for _, t := range r.telemetry[deviceID] {
		if !opts.Since.IsZero() && t.RecordedAt.Before(opts.Since) {
			continue
		}
		readings = append(readings, copyTelemetry(t))
	}

	sort.Slice(readings, func(i, j int) bool {
		return readings[i].RecordedAt.After(readings[j].RecordedAt)
	})
	if len(readings) > limit {
		readings = readings[:limit]
	}
	return readings, nil
}

func copyDevice(d *Device) *Device {
	c := *d
	if d.AssetID != nil {
		v := *d.AssetID
		c.AssetID = &v
	}
	if d.LastHeartbeatAt != nil {
		v := *d.LastHeartbeatAt
		c.LastHeartbeatAt = &v
	}
	if d.DeletedAt != nil {
		v := *d.DeletedAt
		c.DeletedAt = &v
	}
	c.Thresholds = copyThresholds(d.Thresholds)
	return &c
}

func copyThresholds(t alerting.Thresholds) alerting.Thresholds {
	c := t
	copyFloat := func(p *float64) *float64 {
		if p == nil {
			return nil
		}
		v := *p
		return &v
	}
	c.TempMax = copyFloat(t.TempMax)
	c.TempMin = copyFloat(t.TempMin)
	c.HumidityMax = copyFloat(t.HumidityMax)
	c.HumidityMin = copyFloat(t.HumidityMin)
	c.EnergyMax = copyFloat(t.EnergyMax)
	return c
}

func copyTelemetry(t *Telemetry) *Telemetry {
	c := *t
	c.Data = make(map[string]any, len(t.Data))
	for k, v := range t.Data {
		c.Data[k] = v
	}
	return &c
}
