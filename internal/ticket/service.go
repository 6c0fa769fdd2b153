package ticket

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the ticket service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger
}

// Service provides ticket workflow operations.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a new ticket service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}
}

// CreateInput holds the fields for creating a ticket.
type CreateInput struct {
	AssetID     *string
	Type        Type
	Priority    Priority
	Description string
	RequestedBy string
}

// UpdateInput holds the fields for a partial ticket update. Nil fields are
// left unchanged.
type UpdateInput struct {
	Type        *Type
	Priority    *Priority
	Status      *Status
	Description *string
}

// Create raises a new ticket at a location. New tickets always start open.
func (s *Service) Create(ctx context.Context, locationID string, input *CreateInput) (*Ticket, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: nil input", ErrInvalidInput)
	}
	if input.Description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}

	ticketType := input.Type
	if ticketType == "" {
		ticketType = TypeCorrective
	}
	if !validType(ticketType) {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidInput, ticketType)
	}

	priority := input.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !validPriority(priority) {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, priority)
	}

	now := time.Now()
	ticket := &Ticket{
		ID:          "tkt_" + uuid.New().String()[:22],
		LocationID:  locationID,
		AssetID:     input.AssetID,
		Type:        ticketType,
		Status:      StatusOpen,
		Priority:    priority,
		Description: input.Description,
		RequestedBy: input.RequestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("ticket_id", ticket.ID).
		Str("location_id", locationID).
		Str("priority", string(ticket.Priority)).
		Msg("ticket created")

	return ticket, nil
}

// Get retrieves a ticket by ID.
func (s *Service) Get(ctx context.Context, locationID, ticketID string) (*Ticket, error) {
	return s.repo.Get(ctx, locationID, ticketID)
}

// List retrieves tickets for a location, newest first.
func (s *Service) List(ctx context.Context, locationID string, opts ListOptions) ([]*Ticket, error) {
	result, err := s.repo.ListByLocation(ctx, locationID, opts)
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

// CountOpen counts the location's tickets that are not yet closed.
func (s *Service) CountOpen(ctx context.Context, locationID string) (int, error) {
	return s.repo.CountOpenByLocation(ctx, locationID)
}

// Update applies a partial update to a ticket. Closed tickets accept no
// further edits.
func (s *Service) Update(ctx context.Context, locationID, ticketID string, input *UpdateInput) (*Ticket, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: nil input", ErrInvalidInput)
	}

	ticket, err := s.repo.Get(ctx, locationID, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status.Closed() {
		return nil, ErrTicketClosed
	}

	if input.Type != nil {
		if !validType(*input.Type) {
			return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidInput, *input.Type)
		}
		ticket.Type = *input.Type
	}
	if input.Priority != nil {
		if !validPriority(*input.Priority) {
			return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, *input.Priority)
		}
		ticket.Priority = *input.Priority
	}
	if input.Status != nil {
		if !validStatus(*input.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *input.Status)
		}
		ticket.Status = *input.Status
	}
	if input.Description != nil {
		if *input.Description == "" {
			return nil, fmt.Errorf("%w: description cannot be empty", ErrInvalidInput)
		}
		ticket.Description = *input.Description
	}

	ticket.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Assign hands a ticket to a technician with a planned visit and moves it
// to assigned. Closed tickets cannot be assigned.
func (s *Service) Assign(ctx context.Context, locationID, ticketID, technicianID string, visitAt *time.Time) (*Ticket, error) {
	if technicianID == "" {
		return nil, fmt.Errorf("%w: technician is required", ErrInvalidInput)
	}

	ticket, err := s.repo.Get(ctx, locationID, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status.Closed() {
		return nil, ErrTicketClosed
	}

	ticket.AssignedTo = &technicianID
	ticket.VisitAt = visitAt
	ticket.Status = StatusAssigned
	ticket.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("ticket_id", ticketID).
		Str("technician_id", technicianID).
		Msg("ticket assigned")

	return ticket, nil
}

// Complete closes out a ticket with the technician's notes. Completing a
// completed ticket is a no-op; a cancelled one cannot be completed.
func (s *Service) Complete(ctx context.Context, locationID, ticketID string, notes *string, now time.Time) (*Ticket, error) {
	ticket, err := s.repo.Get(ctx, locationID, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == StatusCompleted {
		return ticket, nil
	}
	if ticket.Status == StatusCancelled {
		return nil, ErrTicketClosed
	}

	ticket.TechnicianNotes = notes
	ticket.Status = StatusCompleted
	ticket.CompletedAt = &now
	ticket.UpdatedAt = now

	if err := s.repo.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("ticket_id", ticketID).
		Msg("ticket completed")

	return ticket, nil
}

// Delete soft-deletes a ticket.
func (s *Service) Delete(ctx context.Context, locationID, ticketID string) error {
	return s.repo.Delete(ctx, locationID, ticketID)
}

func validStatus(status Status) bool {
	switch status {
	case StatusOpen, StatusAssigned, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

func validPriority(priority Priority) bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

func validType(t Type) bool {
	switch t {
	case TypeCorrective, TypePreventive, TypeInspection:
		return true
	default:
		return false
	}
}
