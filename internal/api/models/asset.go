package models

// Asset represents a tracked piece of equipment in API responses.
type Asset struct {
	ID                      string     `json:"assetId"`
	LocationID              string     `json:"locationId"`
	Name                    string     `json:"name"`
	Category                string     `json:"category"`
	Status                  string     `json:"status"`
	InstalledAt             Timestamp  `json:"installedAt"`
	LastMaintenanceAt       *Timestamp `json:"lastMaintenanceAt,omitempty"`
	MaintenanceIntervalDays int        `json:"maintenanceIntervalDays"`
	UsageHoursPerDay        float64    `json:"usageHoursPerDay"`
	SerialNumber            *string    `json:"serialNumber,omitempty"`
	ImageURL                *string    `json:"imageUrl,omitempty"`
	CreatedAt               Timestamp  `json:"createdAt"`
	UpdatedAt               Timestamp  `json:"updatedAt"`
}

// PagedAssets is a paginated list of assets.
type PagedAssets struct {
	Items []Asset           `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// AssetCreateRequest is the request body for creating an asset.
type AssetCreateRequest struct {
	Name                    string     `json:"name"`
	Category                string     `json:"category"`
	Status                  string     `json:"status,omitempty"`
	InstalledAt             Timestamp  `json:"installedAt"`
	LastMaintenanceAt       *Timestamp `json:"lastMaintenanceAt,omitempty"`
	MaintenanceIntervalDays int        `json:"maintenanceIntervalDays,omitempty"`
	UsageHoursPerDay        float64    `json:"usageHoursPerDay,omitempty"`
	SerialNumber            *string    `json:"serialNumber,omitempty"`
	ImageURL                *string    `json:"imageUrl,omitempty"`
}

// AssetUpdateRequest is the request body for a partial asset update.
// Absent fields are left unchanged.
type AssetUpdateRequest struct {
	Name                    *string    `json:"name,omitempty"`
	Category                *string    `json:"category,omitempty"`
	Status                  *string    `json:"status,omitempty"`
	LastMaintenanceAt       *Timestamp `json:"lastMaintenanceAt,omitempty"`
	MaintenanceIntervalDays *int       `json:"maintenanceIntervalDays,omitempty"`
	UsageHoursPerDay        *float64   `json:"usageHoursPerDay,omitempty"`
	SerialNumber            *string    `json:"serialNumber,omitempty"`
	ImageURL                *string    `json:"imageUrl,omitempty"`
}

// MaintenanceRecordRequest is the request body for recording maintenance.
// A nil PerformedAt means the maintenance happened just now.
type MaintenanceRecordRequest struct {
	PerformedAt *Timestamp `json:"performedAt,omitempty"`
}

// AssetHealth is the scored health of a single asset.
type AssetHealth struct {
	AssetID            string  `json:"assetId"`
	Score              float64 `json:"score"`
	FailureProbability float64 `json:"failureProbability"`
	Status             string  `json:"status"`
	Color              string  `json:"color"`
}
