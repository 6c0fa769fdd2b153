package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/facilitypulse/facilitypulse/internal/api/models"
	"github.com/facilitypulse/facilitypulse/internal/api/response"
	"github.com/facilitypulse/facilitypulse/internal/asset"
	"github.com/facilitypulse/facilitypulse/internal/health"
)

// AssetHandler handles asset registry endpoints.
type AssetHandler struct {
	assets *asset.Service
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(assets *asset.Service) *AssetHandler {
	return &AssetHandler{assets: assets}
}

// ListAssets handles GET /v1/locations/{locationId}/assets.
func (h *AssetHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")

	opts := asset.ListOptions{
		Category: r.URL.Query().Get("category"),
	}

	items, err := h.assets.List(r.Context(), locationID, opts)
	if err != nil {
		response.InternalError(w, r, "failed to list assets")
		return
	}

	resp := models.PagedAssets{
		Items: make([]models.Asset, 0, len(items)),
		Meta:  models.PagedResponseMeta{Limit: len(items)},
	}
	for _, a := range items {
		resp.Items = append(resp.Items, assetToModel(a))
	}
	response.JSON(w, r, http.StatusOK, resp)
}

// CreateAsset handles POST /v1/locations/{locationId}/assets.
func (h *AssetHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")

	var input models.AssetCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	created, err := h.assets.Create(r.Context(), locationID, &asset.CreateInput{
		Name:                    input.Name,
		Category:                input.Category,
		Status:                  health.AssetStatus(input.Status),
		InstalledAt:             input.InstalledAt.Time(),
		LastMaintenanceAt:       timePtr(input.LastMaintenanceAt),
		MaintenanceIntervalDays: input.MaintenanceIntervalDays,
		UsageHoursPerDay:        input.UsageHoursPerDay,
		SerialNumber:            input.SerialNumber,
		ImageURL:                input.ImageURL,
	})
	if err != nil {
		if errors.Is(err, asset.ErrInvalidInput) {
			response.BadRequest(w, r, err.Error(), nil)
			return
		}
		response.InternalError(w, r, "failed to create asset")
		return
	}

	location := fmt.Sprintf("/v1/locations/%s/assets/%s", locationID, created.ID)
	response.Created(w, r, location, assetToModel(created))
}

// GetAsset handles GET /v1/locations/{locationId}/assets/{assetId}.
func (h *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")
	assetID := chi.URLParam(r, "assetId")

	a, err := h.assets.Get(r.Context(), locationID, assetID)
	if err != nil {
		if errors.Is(err, asset.ErrAssetNotFound) {
			response.NotFound(w, r, "asset not found")
			return
		}
		response.InternalError(w, r, "failed to get asset")
		return
	}
	response.JSON(w, r, http.StatusOK, assetToModel(a))
}

// UpdateAsset handles PUT /v1/locations/{locationId}/assets/{assetId}.
func (h *AssetHandler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")
	assetID := chi.URLParam(r, "assetId")

	var input models.AssetUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	update := &asset.UpdateInput{
		Name:                    input.Name,
		Category:                input.Category,
		LastMaintenanceAt:       timePtr(input.LastMaintenanceAt),
		MaintenanceIntervalDays: input.MaintenanceIntervalDays,
		UsageHoursPerDay:        input.UsageHoursPerDay,
		SerialNumber:            input.SerialNumber,
		ImageURL:                input.ImageURL,
	}
	if input.Status != nil {
		status := health.AssetStatus(*input.Status)
		update.Status = &status
	}

	updated, err := h.assets.Update(r.Context(), locationID, assetID, update)
	if err != nil {
		switch {
		case errors.Is(err, asset.ErrAssetNotFound):
			response.NotFound(w, r, "asset not found")
		case errors.Is(err, asset.ErrInvalidInput):
			response.BadRequest(w, r, err.Error(), nil)
		default:
			response.InternalError(w, r, "failed to update asset")
		}
		return
	}
	response.JSON(w, r, http.StatusOK, assetToModel(updated))
}

// DeleteAsset handles DELETE /v1/locations/{locationId}/assets/{assetId}.
func (h *AssetHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")
	assetID := chi.URLParam(r, "assetId")

	if err := h.assets.Delete(r.Context(), locationID, assetID); err != nil {
		if errors.Is(err, asset.ErrAssetNotFound) {
			response.NotFound(w, r, "asset not found")
			return
		}
		response.InternalError(w, r, "failed to delete asset")
		return
	}
	response.NoContent(w, r)
}

// RecordMaintenance handles POST /v1/locations/{locationId}/assets/{assetId}/maintenance.
func (h *AssetHandler) RecordMaintenance(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")
	assetID := chi.URLParam(r, "assetId")

	// An empty body means the maintenance happened just now.
	var input models.MaintenanceRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	performedAt := time.Now()
	if input.PerformedAt != nil {
		performedAt = input.PerformedAt.Time()
	}

	updated, err := h.assets.RecordMaintenance(r.Context(), locationID, assetID, performedAt)
	if err != nil {
		if errors.Is(err, asset.ErrAssetNotFound) {
			response.NotFound(w, r, "asset not found")
			return
		}
		response.InternalError(w, r, "failed to record maintenance")
		return
	}
	response.JSON(w, r, http.StatusOK, assetToModel(updated))
}

// AssetHealth handles GET /v1/locations/{locationId}/assets/{assetId}/health.
func (h *AssetHandler) AssetHealth(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")
	assetID := chi.URLParam(r, "assetId")

	result, err := h.assets.Health(r.Context(), locationID, assetID, time.Now())
	if err != nil {
		if errors.Is(err, asset.ErrAssetNotFound) {
			response.NotFound(w, r, "asset not found")
			return
		}
		response.InternalError(w, r, "failed to score asset")
		return
	}
	response.JSON(w, r, http.StatusOK, healthToModel(*result))
}

// assetToModel converts a domain asset to its API representation.
func assetToModel(a *asset.Asset) models.Asset {
	return models.Asset{
		ID:                      a.ID,
		LocationID:              a.LocationID,
		Name:                    a.Name,
		Category:                a.Category,
		Status:                  string(a.Status),
		InstalledAt:             models.Timestamp(a.InstalledAt),
		LastMaintenanceAt:       models.TimestampPtr(a.LastMaintenanceAt),
		MaintenanceIntervalDays: a.MaintenanceIntervalDays,
		UsageHoursPerDay:        a.UsageHoursPerDay,
		SerialNumber:            a.SerialNumber,
		ImageURL:                a.ImageURL,
		CreatedAt:               models.Timestamp(a.CreatedAt),
		UpdatedAt:               models.Timestamp(a.UpdatedAt),
	}
}

// healthToModel converts a scored result to its API representation,
// rounded for presentation.
func healthToModel(res health.Result) models.AssetHealth {
	rounded := res.Rounded()
	return models.AssetHealth{
		AssetID:            rounded.AssetID,
		Score:              rounded.Score,
		FailureProbability: rounded.FailureProbability,
		Status:             rounded.Status,
		Color:              string(rounded.Color),
	}
}

func timePtr(ts *models.Timestamp) *time.Time {
	if ts == nil {
		return nil
	}
	t := ts.Time()
	return &t
}
