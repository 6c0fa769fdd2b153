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
	"github.com/facilitypulse/facilitypulse/internal/ticket"
)

// TicketHandler handles service ticket endpoints.
type TicketHandler struct {
	tickets *ticket.Service
}

// NewTicketHandler creates a new TicketHandler.
func NewTicketHandler(tickets *ticket.Service) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// ListTickets handles GET /v1/locations/{locationId}/tickets.
func (h *TicketHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")

	opts := ticket.ListOptions{
		Status:  ticket.Status(r.URL.Query().Get("status")),
		AssetID: r.URL.Query().Get("assetId"),
	}

	items, err := h.tickets.List(r.Context(), locationID, opts)
	if err != nil {
		response.InternalError(w, r, "failed to list tickets")
		return
	}

	resp := models.PagedTickets{
		Items: make([]models.Ticket, 0, len(items)),
		Meta:  models.PagedResponseMeta{Limit: len(items)},
	}
	for _, t := range items {
		resp.Items = append(resp.Items, ticketToModel(t))
	}
	response.JSON(w, r, http.StatusOK, resp)
}

// CreateTicket handles POST /v1/locations/{locationId}/tickets. The
// requester is the authenticated user.
func (h *TicketHandler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")

	var input models.TicketCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	created, err := h.tickets.Create(r.Context(), locationID, &ticket.CreateInput{
		AssetID:     input.AssetID,
		Type:        ticket.Type(input.Type),
		Priority:    ticket.Priority(input.Priority),
		Description: input.Description,
		RequestedBy: GetUserID(r.Context()),
	})
	if err != nil {
		if errors.Is(err, ticket.ErrInvalidInput) {
			response.BadRequest(w, r, err.Error(), nil)
			return
		}
		response.InternalError(w, r, "failed to create ticket")
		return
	}

	location := fmt.Sprintf("/v1/locations/%s/tickets/%s", locationID, created.ID)
	response.Created(w, r, location, ticketToModel(created))
}

// GetTicket handles GET /v1/locations/{locationId}/tickets/{ticketId}.
func (h *TicketHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")
	ticketID := chi.URLParam(r, "ticketId")

	t, err := h.tickets.Get(r.Context(), locationID, ticketID)
	if err != nil {
		if errors.Is(err, ticket.ErrTicketNotFound) {
			response.NotFound(w, r, "ticket not found")
			return
		}
		response.InternalError(w, r, "failed to get ticket")
		return
	}
	response.JSON(w, r, http.StatusOK, ticketToModel(t))
}

// UpdateTicket handles PUT /v1/locations/{locationId}/tickets/{ticketId}.
func (h *TicketHandler) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")
	ticketID := chi.URLParam(r, "ticketId")

	var input models.TicketUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	domainInput := &ticket.UpdateInput{
		Description: input.Description,
	}
	if input.Type != nil {
		t := ticket.Type(*input.Type)
		domainInput.Type = &t
	}
	if input.Priority != nil {
		p := ticket.Priority(*input.Priority)
		domainInput.Priority = &p
	}
	if input.Status != nil {
		s := ticket.Status(*input.Status)
		domainInput.Status = &s
	}

	updated, err := h.tickets.Update(r.Context(), locationID, ticketID, domainInput)
	if err != nil {
		writeTicketError(w, r, err, "failed to update ticket")
		return
	}
	response.JSON(w, r, http.StatusOK, ticketToModel(updated))
}

// AssignTicket handles POST /v1/locations/{locationId}/tickets/{ticketId}/assign.
func (h *TicketHandler) AssignTicket(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")
	ticketID := chi.URLParam(r, "ticketId")

	var input models.TicketAssignRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	assigned, err := h.tickets.Assign(r.Context(), locationID, ticketID, input.TechnicianID, timePtr(input.VisitAt))
	if err != nil {
		writeTicketError(w, r, err, "failed to assign ticket")
		return
	}
	response.JSON(w, r, http.StatusOK, ticketToModel(assigned))
}

// CompleteTicket handles POST /v1/locations/{locationId}/tickets/{ticketId}/complete.
// An empty body completes the ticket without technician notes.
func (h *TicketHandler) CompleteTicket(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")
	ticketID := chi.URLParam(r, "ticketId")

	var input models.TicketCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	completed, err := h.tickets.Complete(r.Context(), locationID, ticketID, input.TechnicianNotes, time.Now())
	if err != nil {
		writeTicketError(w, r, err, "failed to complete ticket")
		return
	}
	response.JSON(w, r, http.StatusOK, ticketToModel(completed))
}

// DeleteTicket handles DELETE /v1/locations/{locationId}/tickets/{ticketId}.
func (h *TicketHandler) DeleteTicket(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")
	ticketID := chi.URLParam(r, "ticketId")

	if err := h.tickets.Delete(r.Context(), locationID, ticketID); err != nil {
		if errors.Is(err, ticket.ErrTicketNotFound) {
			response.NotFound(w, r, "ticket not found")
			return
		}
		response.InternalError(w, r, "failed to delete ticket")
		return
	}
	response.NoContent(w, r)
}

func writeTicketError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, ticket.ErrTicketNotFound):
		response.NotFound(w, r, "ticket not found")
	case errors.Is(err, ticket.ErrTicketClosed):
		response.Conflict(w, r, "ticket is already closed")
	case errors.Is(err, ticket.ErrInvalidInput):
		response.BadRequest(w, r, err.Error(), nil)
	default:
		response.InternalError(w, r, fallback)
	}
}

// ticketToModel converts a domain ticket to its API representation.
func ticketToModel(t *ticket.Ticket) models.Ticket {
	return models.Ticket{
		ID:              t.ID,
		LocationID:      t.LocationID,
		AssetID:         t.AssetID,
		Type:            string(t.Type),
		Status:          string(t.Status),
		Priority:        string(t.Priority),
		Description:     t.Description,
		RequestedBy:     t.RequestedBy,
		AssignedTo:      t.AssignedTo,
		VisitAt:         models.TimestampPtr(t.VisitAt),
		TechnicianNotes: t.TechnicianNotes,
		CreatedAt:       models.Timestamp(t.CreatedAt),
		UpdatedAt:       models.Timestamp(t.UpdatedAt),
		CompletedAt:     models.TimestampPtr(t.CompletedAt),
	}
}
