package ticket

import "context"

// Repository defines the interface for ticket persistence. Soft-deleted
// tickets are invisible to every method except Delete.
type Repository interface {
	// Get retrieves a ticket by location ID and ticket ID.
	Get(ctx context.Context, locationID, ticketID string) (*Ticket, error)

	// ListByLocation retrieves all tickets for a location, newest first.
	ListByLocation(ctx context.Context, locationID string, opts ListOptions) (*ListResult, error)

	// CountOpenByLocation counts tickets at a location that are not closed.
	CountOpenByLocation(ctx context.Context, locationID string) (int, error)

	// Create creates a new ticket.
	Create(ctx context.Context, ticket *Ticket) error

	// Update updates an existing ticket.
	Update(ctx context.Context, ticket *Ticket) error

	// Delete soft-deletes a ticket.
	Delete(ctx context.Context, locationID, ticketID string) error
}
