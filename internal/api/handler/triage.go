package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/facilitypulse/facilitypulse/internal/api/middleware"
	"github.com/facilitypulse/facilitypulse/internal/api/models"
	"github.com/facilitypulse/facilitypulse/internal/api/response"
	"github.com/facilitypulse/facilitypulse/internal/triage"
)

// TriageHandler handles visual triage endpoints.
type TriageHandler struct {
	diagnoser triage.Diagnoser
	metrics   *middleware.ProviderMetrics
}

// NewTriageHandler creates a new TriageHandler. Metrics may be nil.
func NewTriageHandler(diagnoser triage.Diagnoser, metrics *middleware.ProviderMetrics) *TriageHandler {
	return &TriageHandler{
		diagnoser: diagnoser,
		metrics:   metrics,
	}
}

// Diagnose handles POST /v1/triage/diagnose - run an equipment photo
// through the vision diagnosis provider.
func (h *TriageHandler) Diagnose(w http.ResponseWriter, r *http.Request) {
	var input models.DiagnoseRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if input.Image == "" {
		response.BadRequest(w, r, "image is required", []models.FieldError{
			{Field: "image", Message: "image is required", Code: "required"},
		})
		return
	}

	image, err := base64.StdEncoding.DecodeString(input.Image)
	if err != nil {
		response.BadRequest(w, r, "image must be base64 encoded", nil)
		return
	}

	start := time.Now()
	diagnosis, err := h.diagnoser.Diagnose(r.Context(), image)
	if h.metrics != nil {
		h.metrics.RecordRequest("vision", "diagnose", time.Since(start), err)
	}
	if err != nil {
		switch {
		case errors.Is(err, triage.ErrEmptyImage):
			response.BadRequest(w, r, "image is empty", nil)
		case errors.Is(err, triage.ErrUnavailable):
			response.ServiceUnavailable(w, r, "diagnosis is unavailable right now, try again later")
		default:
			response.InternalError(w, r, "diagnosis failed")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.Diagnosis{
		Summary:           diagnosis.Summary,
		ProbableCauses:    diagnosis.ProbableCauses,
		RecommendedAction: diagnosis.RecommendedAction,
		Confidence:        diagnosis.Confidence,
	})
}
