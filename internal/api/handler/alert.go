package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/facilitypulse/facilitypulse/internal/alerting"
	"github.com/facilitypulse/facilitypulse/internal/api/models"
	"github.com/facilitypulse/facilitypulse/internal/api/response"
)

// AlertHandler handles alert lifecycle endpoints.
type AlertHandler struct {
	alerts *alerting.Service
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(alerts *alerting.Service) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// ListAlerts handles GET /v1/locations/{locationId}/alerts.
func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")

	filter := alerting.ListFilter{
		LocationID:     locationID,
		DeviceID:       r.URL.Query().Get("deviceId"),
		AssetID:        r.URL.Query().Get("assetId"),
		Type:           alerting.Type(r.URL.Query().Get("type")),
		Severity:       alerting.Severity(r.URL.Query().Get("severity")),
		UnresolvedOnly: r.URL.Query().Get("unresolvedOnly") == "true",
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		parsed, err := strconv.Atoi(limit)
		if err != nil || parsed < 0 {
			response.BadRequest(w, r, "limit must be a non-negative integer", nil)
			return
		}
		filter.Limit = parsed
	}

	items, err := h.alerts.List(r.Context(), filter)
	if err != nil {
		response.InternalError(w, r, "failed to list alerts")
		return
	}

	resp := models.PagedAlerts{
		Items: make([]models.Alert, 0, len(items)),
		Meta:  models.PagedResponseMeta{Limit: len(items)},
	}
	for _, a := range items {
		resp.Items = append(resp.Items, alertToModel(a))
	}
	response.JSON(w, r, http.StatusOK, resp)
}

// GetAlert handles GET /v1/locations/{locationId}/alerts/{alertId}.
func (h *AlertHandler) GetAlert(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")
	alertID := chi.URLParam(r, "alertId")

	a, err := h.alerts.Get(r.Context(), alertID)
	if err != nil {
		if errors.Is(err, alerting.ErrAlertNotFound) {
			response.NotFound(w, r, "alert not found")
			return
		}
		response.InternalError(w, r, "failed to get alert")
		return
	}
	// Alerts are scoped by location in the URL even though IDs are global.
	if a.LocationID != locationID {
		response.NotFound(w, r, "alert not found")
		return
	}
	response.JSON(w, r, http.StatusOK, alertToModel(a))
}

// AcknowledgeAlert handles POST /v1/locations/{locationId}/alerts/{alertId}/ack.
// The acknowledging actor is the authenticated user.
func (h *AlertHandler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "alertId")
	actor := GetUserID(r.Context())

	a, err := h.alerts.Acknowledge(r.Context(), alertID, actor, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, alerting.ErrAlertNotFound):
			response.NotFound(w, r, "alert not found")
		case errors.Is(err, alerting.ErrAlertResolved):
			response.Conflict(w, r, "alert is already resolved")
		default:
			response.InternalError(w, r, "failed to acknowledge alert")
		}
		return
	}
	response.JSON(w, r, http.StatusOK, alertToModel(a))
}

// ResolveAlert handles POST /v1/locations/{locationId}/alerts/{alertId}/resolve.
func (h *AlertHandler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "alertId")

	a, err := h.alerts.Resolve(r.Context(), alertID, time.Now())
	if err != nil {
		if errors.Is(err, alerting.ErrAlertNotFound) {
			response.NotFound(w, r, "alert not found")
			return
		}
		response.InternalError(w, r, "failed to resolve alert")
		return
	}
	response.JSON(w, r, http.StatusOK, alertToModel(a))
}

// alertToModel converts a domain alert to its API representation.
func alertToModel(a *alerting.Alert) models.Alert {
	return models.Alert{
		ID:             a.ID,
		LocationID:     a.LocationID,
		DeviceID:       a.DeviceID,
		AssetID:        a.AssetID,
		Type:           string(a.Type),
		Severity:       string(a.Severity),
		Title:          a.Title,
		Message:        a.Message,
		TriggerData:    a.TriggerData,
		Acknowledged:   a.Acknowledged,
		Resolved:       a.Resolved,
		AcknowledgedAt: models.TimestampPtr(a.AcknowledgedAt),
		AcknowledgedBy: a.AcknowledgedBy,
		ResolvedAt:     models.TimestampPtr(a.ResolvedAt),
		CreatedAt:      models.Timestamp(a.CreatedAt),
	}
}
