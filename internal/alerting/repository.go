package alerting

import "context"

// Repository defines the interface for alert persistence.
type Repository interface {
	// Create stores a new alert.
	Create(ctx context.Context, alert *Alert) error

	// Get retrieves an alert by ID.
	Get(ctx context.Context, id string) (*Alert, error)

	// List retrieves alerts matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]*Alert, error)

	// Update persists lifecycle changes on an existing alert.
	Update(ctx context.Context, alert *Alert) error

	// HasOpen reports whether an unresolved alert of the given type is
	// already open for the device.
	HasOpen(ctx context.Context, deviceID string, alertType Type) (bool, error)

	// CountOpenByAsset returns the number of unresolved alerts linked to
	// the asset.
	CountOpenByAsset(ctx context.Context, assetID string) (int, error)
}
