// Package ticket provides service tickets: the maintenance work orders
// raised against a location, optionally linked to an asset, and walked
// through an open/assigned/completed workflow.
package ticket

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrInvalidInput   = errors.New("invalid ticket input")
	ErrTicketClosed   = errors.New("ticket is already closed")
)

// Status is a ticket workflow state.
type Status string

// Ticket workflow states.
const (
	StatusOpen       Status = "open"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Closed reports whether the state is terminal.
func (s Status) Closed() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Priority is a ticket priority level.
type Priority string

// Ticket priority levels.
const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Type is the kind of work a ticket requests.
type Type string

// Ticket types.
const (
	TypeCorrective Type = "corrective"
	TypePreventive Type = "preventive"
	TypeInspection Type = "inspection"
)

// Ticket represents a service work order at a location.
type Ticket struct {
	ID         string
	LocationID string
	AssetID    *string

	Type        Type
	Status      Status
	Priority    Priority
	Description string

	RequestedBy     string
	AssignedTo      *string
	VisitAt         *time.Time
	TechnicianNotes *string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
	DeletedAt   *time.Time
}

// ListOptions contains options for listing tickets.
type ListOptions struct {
	// Status filters by workflow state when non-empty.
	Status Status

	// AssetID filters to tickets linked to one asset when non-empty.
	AssetID string

	// Limit caps the number of results. Zero means the repository default.
	Limit int
}

// ListResult contains the result of listing tickets.
type ListResult struct {
	Items []*Ticket
}
