package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/facilitypulse/facilitypulse/internal/alerting"
	"github.com/facilitypulse/facilitypulse/internal/api/models"
	"github.com/facilitypulse/facilitypulse/internal/api/response"
	"github.com/facilitypulse/facilitypulse/internal/device"
)

// DeviceHandler handles device registry and telemetry endpoints.
type DeviceHandler struct {
	devices *device.Service
}

// NewDeviceHandler creates a new DeviceHandler.
func NewDeviceHandler(devices *device.Service) *DeviceHandler {
	return &DeviceHandler{devices: devices}
}

// ListDevices handles GET /v1/locations/{locationId}/devices.
func (h *DeviceHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")

	opts := device.ListOptions{
		Type:    device.Type(r.URL.Query().Get("type")),
		AssetID: r.URL.Query().Get("assetId"),
	}

	items, err := h.devices.List(r.Context(), locationID, opts)
	if err != nil {
		response.InternalError(w, r, "failed to list devices")
		return
	}

	resp := models.PagedDevices{
		Items: make([]models.Device, 0, len(items)),
		Meta:  models.PagedResponseMeta{Limit: len(items)},
	}
	for _, d := range items {
		resp.Items = append(resp.Items, deviceToModel(d))
	}
	response.JSON(w, r, http.StatusOK, resp)
}

// RegisterDevice handles POST /v1/locations/{locationId}/devices.
func (h *DeviceHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")

	var input models.DeviceRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	created, err := h.devices.Register(r.Context(), locationID, &device.RegisterInput{
		Name:       input.Name,
		Type:       device.Type(input.Type),
		HardwareID: input.HardwareID,
		AssetID:    input.AssetID,
		Thresholds: thresholdsFromModel(input.Thresholds),
	})
	if err != nil {
		if errors.Is(err, device.ErrInvalidInput) {
			response.BadRequest(w, r, err.Error(), nil)
			return
		}
		response.InternalError(w, r, "failed to register device")
		return
	}

	location := fmt.Sprintf("/v1/locations/%s/devices/%s", locationID, created.ID)
	response.Created(w, r, location, deviceToModel(created))
}

// GetDevice handles GET /v1/locations/{locationId}/devices/{deviceId}.
func (h *DeviceHandler) GetDevice(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")
	deviceID := chi.URLParam(r, "deviceId")

	d, err := h.devices.Get(r.Context(), locationID, deviceID)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			response.NotFound(w, r, "device not found")
			return
		}
		response.InternalError(w, r, "failed to get device")
		return
	}
	response.JSON(w, r, http.StatusOK, deviceToModel(d))
}

// UpdateDevice handles PUT /v1/locations/{locationId}/devices/{deviceId}.
func (h *DeviceHandler) UpdateDevice(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")
	deviceID := chi.URLParam(r, "deviceId")

	var input models.DeviceUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	update := &device.UpdateInput{
		Name:    input.Name,
		AssetID: input.AssetID,
	}
	if input.Thresholds != nil {
		thresholds := thresholdsFromModel(*input.Thresholds)
		update.Thresholds = &thresholds
	}

	updated, err := h.devices.Update(r.Context(), locationID, deviceID, update)
	if err != nil {
		switch {
		case errors.Is(err, device.ErrDeviceNotFound):
			response.NotFound(w, r, "device not found")
		case errors.Is(err, device.ErrInvalidInput):
			response.BadRequest(w, r, err.Error(), nil)
		default:
			response.InternalError(w, r, "failed to update device")
		}
		return
	}
	response.JSON(w, r, http.StatusOK, deviceToModel(updated))
}

// DeleteDevice handles DELETE /v1/locations/{locationId}/devices/{deviceId}.
func (h *DeviceHandler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")
	deviceID := chi.URLParam(r, "deviceId")

	if err := h.devices.Delete(r.Context(), locationID, deviceID); err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			response.NotFound(w, r, "device not found")
			return
		}
		response.InternalError(w, r, "failed to delete device")
		return
	}
	response.NoContent(w, r)
}

// IngestTelemetry handles POST /v1/telemetry - the webhook devices push
// readings to. Devices authenticate by hardware ID, not a user session.
func (h *DeviceHandler) IngestTelemetry(w http.ResponseWriter, r *http.Request) {
	var input models.TelemetryIngestRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if input.HardwareID == "" {
		response.BadRequest(w, r, "hardwareId is required", []models.FieldError{
			{Field: "hardwareId", Message: "hardwareId is required", Code: "required"},
		})
		return
	}

	recordedAt := time.Now()
	if input.RecordedAt != nil {
		recordedAt = input.RecordedAt.Time()
	}

	stored, err := h.devices.IngestTelemetry(r.Context(), input.HardwareID, input.Data, recordedAt)
	if err != nil {
		switch {
		case errors.Is(err, device.ErrDeviceNotFound):
			response.NotFound(w, r, "unknown hardware id")
		case errors.Is(err, device.ErrInvalidInput):
			response.BadRequest(w, r, err.Error(), nil)
		default:
			response.InternalError(w, r, "failed to ingest telemetry")
		}
		return
	}

	response.Accepted(w, r, "", telemetryToModel(stored))
}

// TelemetryHistory handles GET /v1/locations/{locationId}/devices/{deviceId}/telemetry.
func (h *DeviceHandler) TelemetryHistory(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")
	deviceID := chi.URLParam(r, "deviceId")

	var opts device.HistoryOptions
	if since := r.URL.Query().Get("since"); since != "" {
		parsed, err := time.Parse(time.RFC3339, since)
		if err != nil {
			response.BadRequest(w, r, "since must be an RFC3339 timestamp", nil)
			return
		}
		opts.Since = parsed
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		parsed, err := strconv.Atoi(limit)
		if err != nil || parsed < 0 {
			response.BadRequest(w, r, "limit must be a non-negative integer", nil)
			return
		}
		opts.Limit = parsed
	}

	items, err := h.devices.TelemetryHistory(r.Context(), locationID, deviceID, opts)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			response.NotFound(w, r, "device not found")
			return
		}
		response.InternalError(w, r, "failed to load telemetry history")
		return
	}

	resp := models.PagedTelemetry{
		Items: make([]models.TelemetryRecord, 0, len(items)),
		Meta:  models.PagedResponseMeta{Limit: len(items)},
	}
	for _, rec := range items {
		resp.Items = append(resp.Items, telemetryToModel(rec))
	}
	response.JSON(w, r, http.StatusOK, resp)
}

// deviceToModel converts a domain device to its API representation.
func deviceToModel(d *device.Device) models.Device {
	return models.Device{
		ID:              d.ID,
		LocationID:      d.LocationID,
		AssetID:         d.AssetID,
		Type:            string(d.Type),
		HardwareID:      d.HardwareID,
		Name:            d.Name,
		Online:          d.Online,
		LastHeartbeatAt: models.TimestampPtr(d.LastHeartbeatAt),
		Thresholds:      thresholdsToModel(d.Thresholds),
		CreatedAt:       models.Timestamp(d.CreatedAt),
		UpdatedAt:       models.Timestamp(d.UpdatedAt),
	}
}

func telemetryToModel(t *device.Telemetry) models.TelemetryRecord {
	return models.TelemetryRecord{
		ID:         t.ID,
		DeviceID:   t.DeviceID,
		Data:       t.Data,
		RecordedAt: models.Timestamp(t.RecordedAt),
	}
}

func thresholdsToModel(t alerting.Thresholds) models.Thresholds {
	return models.Thresholds{
		TempMax:     t.TempMax,
		TempMin:     t.TempMin,
		HumidityMax: t.HumidityMax,
		HumidityMin: t.HumidityMin,
		EnergyMax:   t.EnergyMax,
	}
}

func thresholdsFromModel(t models.Thresholds) alerting.Thresholds {
	return alerting.Thresholds{
		TempMax:     t.TempMax,
		TempMin:     t.TempMin,
		HumidityMax: t.HumidityMax,
		HumidityMin: t.HumidityMin,
		EnergyMax:   t.EnergyMax,
	}
}
