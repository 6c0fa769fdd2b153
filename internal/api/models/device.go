package models

// Thresholds configure automatic alerting for a device. Absent bounds
// disable the corresponding checks.
type Thresholds struct {
	TempMax     *float64 `json:"tempMax,omitempty"`
	TempMin     *float64 `json:"tempMin,omitempty"`
	HumidityMax *float64 `json:"humidityMax,omitempty"`
	HumidityMin *float64 `json:"humidityMin,omitempty"`
	EnergyMax   *float64 `json:"energyMax,omitempty"`
}

// Device represents an IoT sensor in API responses.
type Device struct {
	ID              string     `json:"deviceId"`
	LocationID      string     `json:"locationId"`
	AssetID         *string    `json:"assetId,omitempty"`
	Type            string     `json:"type"`
	HardwareID      string     `json:"hardwareId"`
	Name            string     `json:"name"`
	Online          bool       `json:"online"`
	LastHeartbeatAt *Timestamp `json:"lastHeartbeatAt,omitempty"`
	Thresholds      Thresholds `json:"thresholds"`
	CreatedAt       Timestamp  `json:"createdAt"`
	UpdatedAt       Timestamp  `json:"updatedAt"`
}

// PagedDevices is a paginated list of devices.
type PagedDevices struct {
	Items []Device          `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// DeviceRegisterRequest is the request body for registering a device.
type DeviceRegisterRequest struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	HardwareID string     `json:"hardwareId"`
	AssetID    *string    `json:"assetId,omitempty"`
	Thresholds Thresholds `json:"thresholds"`
}

// DeviceUpdateRequest is the request body for a partial device update.
// Absent fields are left unchanged.
type DeviceUpdateRequest struct {
	Name       *string     `json:"name,omitempty"`
	AssetID    *string     `json:"assetId,omitempty"`
	Thresholds *Thresholds `json:"thresholds,omitempty"`
}

// TelemetryIngestRequest is the webhook payload devices push readings with.
// Devices authenticate by hardware ID rather than a user session.
type TelemetryIngestRequest struct {
	HardwareID string         `json:"hardwareId"`
	RecordedAt *Timestamp     `json:"recordedAt,omitempty"`
	Data       map[string]any `json:"data"`
}

// TelemetryRecord is a stored telemetry reading in API responses.
type TelemetryRecord struct {
	ID         string         `json:"telemetryId"`
	DeviceID   string         `json:"deviceId"`
	Data       map[string]any `json:"data"`
	RecordedAt Timestamp      `json:"recordedAt"`
}

// PagedTelemetry is a paginated list of telemetry readings, newest first.
type PagedTelemetry struct {
	Items []TelemetryRecord `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}
