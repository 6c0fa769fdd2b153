package asset

import "context"

// Repository defines the interface for asset persistence. Soft-deleted
// assets are invisible to every method except Delete.
type Repository interface {
	// Get retrieves an asset by location ID and asset ID.
	Get(ctx context.Context, locationID, assetID string) (*Asset, error)

	// ListByLocation retrieves all assets for a location.
	ListByLocation(ctx context.Context, locationID string, opts ListOptions) (*ListResult, error)

	// Create creates a new asset.
	Create(ctx context.Context, asset *Asset) error

	// Update updates an existing asset.
	Update(ctx context.Context, asset *Asset) error

	// Delete soft-deletes an asset.
	Delete(ctx context.Context, locationID, assetID string) error
}
