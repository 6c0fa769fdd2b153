package alerting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL alert repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create stores a new alert.
func (r *PostgresRepository) Create(ctx context.Context, alert *Alert) error {
	triggerData, err := json.Marshal(alert.TriggerData)
	if err != nil {
		return fmt.Errorf("marshal trigger data: %w", err)
	}

	query := `
		INSERT INTO alerts (
			id, location_id, device_id, asset_id,
			alert_type, severity, title, message, trigger_data,
			acknowledged, resolved, acknowledged_at, acknowledged_by, resolved_at,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = r.pool.Exec(ctx, query,
		alert.ID,
		alert.LocationID,
		alert.DeviceID,
		alert.AssetID,
		alert.Type,
		alert.Severity,
		alert.Title,
		alert.Message,
		triggerData,
		alert.Acknowledged,
		alert.Resolved,
		alert.AcknowledgedAt,
		alert.AcknowledgedBy,
		alert.ResolvedAt,
		alert.CreatedAt,
	)
	return err
}

// Get retrieves an alert by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Alert, error) {
	query := `
		SELECT
			id, location_id, device_id, asset_id,
			alert_type, severity, title, message, trigger_data,
			acknowledged, resolved, acknowledged_at, acknowledged_by, resolved_at,
			created_at
		FROM alerts
		WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	alert, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlertNotFound
		}
		return nil, err
	}
	return alert, nil
}

// List retrieves alerts matching the filter, newest first.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Alert, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT
			id, location_id, device_id, asset_id,
			alert_type, severity, title, message, trigger_data,
			acknowledged, resolved, acknowledged_at, acknowledged_by, resolved_at,
			created_at
		FROM alerts
		WHERE ($1 = '' OR location_id = $1)
		  AND ($2 = '' OR device_id = $2)
		  AND ($3 = '' OR asset_id = $3)
		  AND ($4 = '' OR alert_type = $4)
		  AND ($5 = '' OR severity = $5)
		  AND (NOT $6::bool OR NOT resolved)
		ORDER BY created_at DESC
		LIMIT $7
	`

	rows, err := r.pool.Query(ctx, query,
		filter.LocationID,
		filter.DeviceID,
		filter.AssetID,
		string(filter.Type),
		string(filter.Severity),
		filter.UnresolvedOnly,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

// Update persists lifecycle changes on an existing alert.
func (r *PostgresRepository) Update(ctx context.Context, alert *Alert) error {
	query := `
		UPDATE alerts
		SET acknowledged = $2, resolved = $3,
		    acknowledged_at = $4, acknowledged_by = $5, resolved_at = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		alert.ID,
		alert.Acknowledged,
		alert.Resolved,
		alert.AcknowledgedAt,
		alert.AcknowledgedBy,
		alert.ResolvedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// HasOpen reports whether an unresolved alert of the given type is open
// for the device.
func (r *PostgresRepository) HasOpen(ctx context.Context, deviceID string, alertType Type) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM alerts
			WHERE device_id = $1 AND alert_type = $2 AND NOT resolved
		)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query, deviceID, alertType).Scan(&exists)
	return exists, err
}

// CountOpenByAsset returns the number of unresolved alerts for the asset.
func (r *PostgresRepository) CountOpenByAsset(ctx context.Context, assetID string) (int, error) {
	query := `SELECT COUNT(*) FROM alerts WHERE asset_id = $1 AND NOT resolved`

	var count int
	err := r.pool.QueryRow(ctx, query, assetID).Scan(&count)
	return count, err
}

// scanAlert scans an alert from a query result row.
func scanAlert(row pgx.Row) (*Alert, error) {
	var alert Alert
	var triggerData []byte

	err := row.Scan(
		&alert.ID,
		&alert.LocationID,
		&alert.DeviceID,
		&alert.AssetID,
		&alert.Type,
		&alert.Severity,
		&alert.Title,
		&alert.Message,
		&triggerData,
		&alert.Acknowledged,
		&alert.Resolved,
		&alert.AcknowledgedAt,
		&alert.AcknowledgedBy,
		&alert.ResolvedAt,
		&alert.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(triggerData) > 0 {
		if err := json.Unmarshal(triggerData, &alert.TriggerData); err != nil {
			return nil, fmt.Errorf("unmarshal trigger data: %w", err)
		}
	}
	return &alert, nil
}
