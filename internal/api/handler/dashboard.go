package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/facilitypulse/facilitypulse/internal/api/models"
	"github.com/facilitypulse/facilitypulse/internal/api/response"
	"github.com/facilitypulse/facilitypulse/internal/dashboard"
)

// DashboardHandler handles the location dashboard endpoints.
type DashboardHandler struct {
	dashboard *dashboard.Service
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(d *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{dashboard: d}
}

// Status handles GET /v1/locations/{locationId}/dashboard/status - the
// aggregated traffic-light verdict for the location.
func (h *DashboardHandler) Status(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")

	status, err := h.dashboard.Status(r.Context(), locationID, time.Now())
	if err != nil {
		response.InternalError(w, r, "failed to compute location status")
		return
	}

	resp := models.DashboardStatus{
		Color:   string(status.Overall.Color),
		Message: status.Overall.Message,
		Assets:  make([]models.AssetHealth, 0, len(status.Assets)),
	}
	for _, res := range status.Assets {
		resp.Assets = append(resp.Assets, healthToModel(res))
	}
	response.JSON(w, r, http.StatusOK, resp)
}

// Stats handles GET /v1/locations/{locationId}/dashboard/stats - the
// landing-screen counters for the location.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")

	stats, err := h.dashboard.Stats(r.Context(), locationID, time.Now())
	if err != nil {
		response.InternalError(w, r, "failed to compute location stats")
		return
	}

	response.JSON(w, r, http.StatusOK, models.DashboardStats{
		Assets:         stats.Assets,
		Devices:        stats.Devices,
		DevicesOnline:  stats.DevicesOnline,
		OpenAlerts:     stats.OpenAlerts,
		CriticalAlerts: stats.CriticalAlerts,
		OpenTickets:    stats.OpenTickets,
	})
}
