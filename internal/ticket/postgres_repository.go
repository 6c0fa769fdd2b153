package ticket

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL ticket repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const ticketColumns = `
	id, location_id, asset_id,
	type, status, priority, description,
	requested_by, assigned_to, visit_at, technician_notes,
	created_at, updated_at, completed_at, deleted_at
`

// Get retrieves a ticket by location ID and ticket ID.
func (r *PostgresRepository) Get(ctx context.Context, locationID, ticketID string) (*Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE id = $1 AND location_id = $2 AND deleted_at IS NULL
	`

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, ticketID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return ticket, nil
}

// ListByLocation retrieves all tickets for a location, newest first.
func (r *PostgresRepository) ListByLocation(ctx context.Context, locationID string, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE location_id = $1 AND deleted_at IS NULL
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR asset_id = $3)
		ORDER BY created_at DESC
		LIMIT $4
	`

	rows, err := r.pool.Query(ctx, query, locationID, string(opts.Status), opts.AssetID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &ListResult{Items: items}, nil
}

// CountOpenByLocation counts tickets at a location that are not closed.
func (r *PostgresRepository) CountOpenByLocation(ctx context.Context, locationID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM tickets
		WHERE location_id = $1 AND deleted_at IS NULL
		  AND status NOT IN ('completed', 'cancelled')
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, locationID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Create creates a new ticket.
func (r *PostgresRepository) Create(ctx context.Context, ticket *Ticket) error {
	query := `
		INSERT INTO tickets (` + ticketColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.LocationID,
		ticket.AssetID,
		ticket.Type,
		ticket.Status,
		ticket.Priority,
		ticket.Description,
		ticket.RequestedBy,
		ticket.AssignedTo,
		ticket.VisitAt,
		ticket.TechnicianNotes,
		ticket.CreatedAt,
		ticket.UpdatedAt,
		ticket.CompletedAt,
		ticket.DeletedAt,
	)
	return err
}

// Update updates an existing ticket.
func (r *PostgresRepository) Update(ctx context.Context, ticket *Ticket) error {
	query := `
		UPDATE tickets
		SET type = $2, status = $3, priority = $4, description = $5,
		    assigned_to = $6, visit_at = $7, technician_notes = $8,
		    updated_at = $9, completed_at = $10
		WHERE id = $1 AND deleted_at IS NULL
	`

	tag, err := r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.Type,
		ticket.Status,
		ticket.Priority,
		ticket.Description,
		ticket.AssignedTo,
		ticket.VisitAt,
		ticket.TechnicianNotes,
		ticket.UpdatedAt,
		ticket.CompletedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// Delete soft-deletes a ticket.
func (r *PostgresRepository) Delete(ctx context.Context, locationID, ticketID string) error {
	query := `
		UPDATE tickets
		SET deleted_at = NOW()
		WHERE id = $1 AND location_id = $2 AND deleted_at IS NULL
	`

	tag, err := r.pool.Exec(ctx, query, ticketID, locationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// scanTicket scans a ticket from a query result row.
func scanTicket(row pgx.Row) (*Ticket, error) {
	var ticket Ticket

	err := row.Scan(
		&ticket.ID,
		&ticket.LocationID,
		&ticket.AssetID,
		&ticket.Type,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Description,
		&ticket.RequestedBy,
		&ticket.AssignedTo,
		&ticket.VisitAt,
		&ticket.TechnicianNotes,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.CompletedAt,
		&ticket.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}
