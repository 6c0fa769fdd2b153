package models

// Alert represents a detected anomalous condition in API responses.
type Alert struct {
	ID         string  `json:"alertId"`
	LocationID string  `json:"locationId"`
	DeviceID   *string `json:"deviceId,omitempty"`
	AssetID    *string `json:"assetId,omitempty"`

	Type     string `json:"type"`
	Severity string `json:"severity"`
	Title    string `json:"title"`
	Message  string `json:"message"`

	TriggerData map[string]float64 `json:"triggerData,omitempty"`

	Acknowledged   bool       `json:"acknowledged"`
	Resolved       bool       `json:"resolved"`
	AcknowledgedAt *Timestamp `json:"acknowledgedAt,omitempty"`
	AcknowledgedBy *string    `json:"acknowledgedBy,omitempty"`
	ResolvedAt     *Timestamp `json:"resolvedAt,omitempty"`

	CreatedAt Timestamp `json:"createdAt"`
}

// PagedAlerts is a paginated list of alerts, newest first.
type PagedAlerts struct {
	Items []Alert           `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}
