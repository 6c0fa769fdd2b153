package models

// Ticket represents a service work order in API responses.
type Ticket struct {
	ID         string  `json:"ticketId"`
	LocationID string  `json:"locationId"`
	AssetID    *string `json:"assetId,omitempty"`

	Type        string `json:"type"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Description string `json:"description"`

	RequestedBy     string     `json:"requestedBy"`
	AssignedTo      *string    `json:"assignedTo,omitempty"`
	VisitAt         *Timestamp `json:"visitAt,omitempty"`
	TechnicianNotes *string    `json:"technicianNotes,omitempty"`

	CreatedAt   Timestamp  `json:"createdAt"`
	UpdatedAt   Timestamp  `json:"updatedAt"`
	CompletedAt *Timestamp `json:"completedAt,omitempty"`
}

// PagedTickets is a paginated list of tickets, newest first.
type PagedTickets struct {
	Items []Ticket          `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// TicketCreateRequest is the request body for raising a ticket.
type TicketCreateRequest struct {
	AssetID     *string `json:"assetId,omitempty"`
	Type        string  `json:"type,omitempty"`
	Priority    string  `json:"priority,omitempty"`
	Description string  `json:"description"`
}

// TicketUpdateRequest is the request body for a partial ticket update.
type TicketUpdateRequest struct {
	Type        *string `json:"type,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
	Description *string `json:"description,omitempty"`
}

// TicketAssignRequest is the request body for assigning a ticket.
type TicketAssignRequest struct {
	TechnicianID string     `json:"technicianId"`
	VisitAt      *Timestamp `json:"visitAt,omitempty"`
}

// TicketCompleteRequest is the request body for completing a ticket.
type TicketCompleteRequest struct {
	TechnicianNotes *string `json:"technicianNotes,omitempty"`
}
