package ticket

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use the PostgreSQL implementation.
type InMemoryRepository struct {
	mu      sync.RWMutex
	tickets map[string]*Ticket
}

// NewInMemoryRepository creates a new in-memory ticket repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{tickets: make(map[string]*Ticket)}
}

// Get retrieves a ticket by location ID and ticket ID.
func (r *InMemoryRepository) Get(_ context.Context, locationID, ticketID string) (*Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ticket, ok := r.tickets[ticketID]
	if !ok || ticket.LocationID != locationID || ticket.DeletedAt != nil {
		return nil, ErrTicketNotFound
	}
	return copyTicket(ticket), nil
}

// ListByLocation retrieves all tickets for a location, newest first.
func (r *InMemoryRepository) ListByLocation(_ context.Context, locationID string, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []*Ticket
	for _, ticket := range r.tickets {
		if ticket.LocationID != locationID || ticket.DeletedAt != nil {
			continue
		}
		if opts.Status != "" && ticket.Status != opts.Status {
			continue
		}
		if opts.AssetID != "" && (ticket.AssetID == nil || *ticket.AssetID != opts.AssetID) {
			continue
		}
		items = append(items, copyTicket(ticket))
	}

	sort.Slice(items, func(a, b int) bool {
		return items[a].CreatedAt.After(items[b].CreatedAt)
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return &ListResult{Items: items}, nil
}

// CountOpenByLocation counts tickets at a location that are not closed.
func (r *InMemoryRepository) CountOpenByLocation(_ context.Context, locationID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, ticket := range r.tickets {
		if ticket.LocationID != locationID || ticket.DeletedAt != nil {
			continue
		}
		if !ticket.Status.Closed() {
			count++
		}
	}
	return count, nil
}

// Create creates a new ticket.
func (r *InMemoryRepository) Create(_ context.Context, ticket *Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tickets[ticket.ID] = copyTicket(ticket)
	return nil
}

// Update updates an existing ticket.
func (r *InMemoryRepository) Update(_ context.Context, ticket *Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.tickets[ticket.ID]
	if !ok || existing.DeletedAt != nil {
		return ErrTicketNotFound
	}
	r.tickets[ticket.ID] = copyTicket(ticket)
	return nil
}

// Delete soft-deletes a ticket.
func (r *InMemoryRepository) Delete(_ context.Context, locationID, ticketID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, ok := r.tickets[ticketID]
	if !ok || ticket.LocationID != locationID || ticket.DeletedAt != nil {
		return ErrTicketNotFound
	}

	now := time.Now()
	ticket.DeletedAt = &now
	return nil
}

// copyTicket creates a deep copy of a ticket.
func copyTicket(t *Ticket) *Ticket {
	if t == nil {
		return nil
	}

	ticketCopy := *t
	if t.AssetID != nil {
		val := *t.AssetID
		ticketCopy.AssetID = &val
	}
	if t.AssignedTo != nil {
		val := *t.AssignedTo
		ticketCopy.AssignedTo = &val
	}
	if t.VisitAt != nil {
		val := *t.VisitAt
		ticketCopy.VisitAt = &val
	}
	if t.TechnicianNotes != nil {
		val := *t.TechnicianNotes
		ticketCopy.TechnicianNotes = &val
	}
	if t.CompletedAt != nil {
		val := *t.CompletedAt
		ticketCopy.CompletedAt = &val
	}
	if t.DeletedAt != nil {
		val := *t.DeletedAt
		ticketCopy.DeletedAt = &val
	}
	return &ticketCopy
}
