package asset

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use the PostgreSQL implementation.
type InMemoryRepository struct {
	mu     sync.RWMutex
	assets map[string]*Asset
}

// NewInMemoryRepository creates a new in-memory asset repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{assets: make(map[string]*Asset)}
}

// Get retrieves an asset by location ID and asset ID.
func (r *InMemoryRepository) Get(_ context.Context, locationID, assetID string) (*Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	asset, ok := r.assets[assetID]
	if !ok || asset.LocationID != locationID || asset.DeletedAt != nil {
		return nil, ErrAssetNotFound
	}
	return copyAsset(asset), nil
}

// ListByLocation retrieves all assets for a location.
func (r *InMemoryRepository) ListByLocation(_ context.Context, locationID string, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []*Asset
	for _, asset := range r.assets {
		if asset.LocationID != locationID || asset.DeletedAt != nil {
			continue
		}
		if opts.Category != "" && asset.Category != opts.Category {
			continue
		}
		items = append(items, copyAsset(asset))
	}

	sort.Slice(items, func(a, b int) bool {
		return items[a].CreatedAt.Before(items[b].CreatedAt)
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return &ListResult{Items: items}, nil
}

// Create creates a new asset.
func (r *InMemoryRepository) Create(_ context.Context, asset *Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.assets[asset.ID] = copyAsset(asset)
	return nil
}

// Update updates an existing asset.
func (r *InMemoryRepository) Update(_ context.Context, asset *Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.assets[asset.ID]
	if !ok || existing.DeletedAt != nil {
		return ErrAssetNotFound
	}
	r.assets[asset.ID] = copyAsset(asset)
	return nil
}

// Delete soft-deletes an asset.
func (r *InMemoryRepository) Delete(_ context.Context, locationID, assetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	asset, ok := r.assets[assetID]
	if !ok || asset.LocationID != locationID || asset.DeletedAt != nil {
		return ErrAssetNotFound
	}

	now := time.Now()
	asset.DeletedAt = &now
	return nil
}

// copyAsset creates a deep copy of an asset.
func copyAsset(a *Asset) *Asset {
	if a == nil {
		return nil
	}

	assetCopy := *a
	if a.LastMaintenanceAt != nil {
		val := *a.LastMaintenanceAt
		assetCopy.LastMaintenanceAt = &val
	}
	if a.SerialNumber != nil {
		val := *a.SerialNumber
		assetCopy.SerialNumber = &val
	}
	if a.ImageURL != nil {
		val := *a.ImageURL
		assetCopy.ImageURL = &val
	}
	if a.DeletedAt != nil {
		val := *a.DeletedAt
		assetCopy.DeletedAt = &val
	}
	return &assetCopy
}
