package alerting

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use the PostgreSQL implementation.
type InMemoryRepository struct {
	mu     sync.RWMutex
	alerts map[string]*Alert
}

// NewInMemoryRepository creates a new in-memory alert repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{alerts: make(map[string]*Alert)}
}

// Create stores a new alert.
func (r *InMemoryRepository) Create(_ context.Context, alert *Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.alerts[alert.ID] = copyAlert(alert)
	return nil
}

// Get retrieves an alert by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	alert, ok := r.alerts[id]
	if !ok {
		return nil, ErrAlertNotFound
	}
	return copyAlert(alert), nil
}

// List retrieves alerts matching the filter, newest first.
func (r *InMemoryRepository) List(_ context.Context, filter ListFilter) ([]*Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []*Alert
	for _, alert := range r.alerts {
		if matchesFilter(alert, filter) {
			items = append(items, copyAlert(alert))
		}
	}

	sort.Slice(items, func(a, b int) bool {
		return items[a].CreatedAt.After(items[b].CreatedAt)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Update persists lifecycle changes on an existing alert.
func (r *InMemoryRepository) Update(_ context.Context, alert *Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.alerts[alert.ID]; !ok {
		return ErrAlertNotFound
	}
	r.alerts[alert.ID] = copyAlert(alert)
	return nil
}

// HasOpen reports whether an unresolved alert of the given type is open
// for the device.
func (r *InMemoryRepository) HasOpen(_ context.Context, deviceID string, alertType Type) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, alert := range r.alerts {
		if alert.Resolved || alert.Type != alertType {
			continue
		}
		if alert.DeviceID != nil && *alert.DeviceID == deviceID {
			return true, nil
		}
	}
	return false, nil
}

// CountOpenByAsset returns the number of unresolved alerts for the asset.
func (r *InMemoryRepository) CountOpenByAsset(_ context.Context, assetID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, alert := range r.alerts {
		if alert.Resolved {
			continue
		}
		if alert.AssetID != nil && *alert.AssetID == assetID {
			count++
		}
	}
	return count, nil
}

func matchesFilter(alert *Alert, filter ListFilter) bool {
	if filter.LocationID != "" && alert.LocationID != filter.LocationID {
		return false
	}
	if filter.DeviceID != "" && (alert.DeviceID == nil || *alert.DeviceID != filter.DeviceID) {
		return false
	}
	if filter.AssetID != "" && (alert.AssetID == nil || *alert.AssetID != filter.AssetID) {
		return false
	}
	if filter.Type != "" && alert.Type != filter.Type {
		return false
	}
	if filter.Severity != "" && alert.Severity != filter.Severity {
		return false
	}
	if filter.UnresolvedOnly && alert.Resolved {
		return false
	}
	return true
}

// copyAlert creates a deep copy of an alert.
func copyAlert(a *Alert) *Alert {
	if a == nil {
		return nil
	}

	alertCopy := *a
	if a.DeviceID != nil {
		val := *a.DeviceID
		alertCopy.DeviceID = &val
	}
	if a.AssetID != nil {
		val := *a.AssetID
		alertCopy.AssetID = &val
	}
	if a.AcknowledgedAt != nil {
		val := *a.AcknowledgedAt
		alertCopy.AcknowledgedAt = &val
	}
	if a.AcknowledgedBy != nil {
		val := *a.AcknowledgedBy
		alertCopy.AcknowledgedBy = &val
	}
	if a.ResolvedAt != nil {
		val := *a.ResolvedAt
		alertCopy.ResolvedAt = &val
	}
	if a.TriggerData != nil {
		alertCopy.TriggerData = make(map[string]float64, len(a.TriggerData))
		for k, v := range a.TriggerData {
			alertCopy.TriggerData[k] = v
		}
	}
	return &alertCopy
}
