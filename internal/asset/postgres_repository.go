package asset

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

// NewPostgresRepository creates a new PostgreSQL asset repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const assetColumns = `
	id, location_id, name, category, status,
	installed_at, last_maintenance_at, maintenance_interval_days, usage_hours_per_day,
	serial_number, image_url,
	created_at, updated_at, deleted_at
`

// Get retrieves an asset by location ID and asset ID.
func (r *PostgresRepository) Get(ctx context.Context, locationID, assetID string) (*Asset, error) {
	query := `
		SELECT ` + assetColumns + `
		FROM assets
		WHERE id = $1 AND location_id = $2 AND deleted_at IS NULL
	`

	asset, err := scanAsset(r.pool.QueryRow(ctx, query, assetID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	return asset, nil
}

// ListByLocation retrieves all assets for a location.
func (r *PostgresRepository) ListByLocation(ctx context.Context, locationID string, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT ` + assetColumns + `
		FROM assets
		WHERE location_id = $1 AND deleted_at IS NULL
		  AND ($2 = '' OR category = $2)
		ORDER BY created_at
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, locationID, opts.Category, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &ListResult{Items: items}, nil
}

// Create creates a new asset.
func (r *PostgresRepository) Create(ctx context.Context, asset *Asset) error {
	query := `
		INSERT INTO assets (` + assetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.pool.Exec(ctx, query,
		asset.ID,
		asset.LocationID,
		asset.Name,
		asset.Category,
		asset.Status,
		asset.InstalledAt,
		asset.LastMaintenanceAt,
		asset.MaintenanceIntervalDays,
		asset.UsageHoursPerDay,
		asset.SerialNumber,
		asset.ImageURL,
		asset.CreatedAt,
		asset.UpdatedAt,
		asset.DeletedAt,
	)
	return err
}

// Update updates an existing asset.
func (r *PostgresRepository) Update(ctx context.Context, asset *Asset) error {
	query := `
		UPDATE assets
		SET name = $2, category = $3, status = $4,
		    installed_at = $5, last_maintenance_at = $6,
		    maintenance_interval_days = $7, usage_hours_per_day = $8,
		    serial_number = $9, image_url = $10, updated_at = $11
		WHERE id = $1 AND deleted_at IS NULL
	`

	tag, err := r.pool.Exec(ctx, query,
		asset.ID,
		asset.Name,
		asset.Category,
		asset.Status,
		asset.InstalledAt,
		asset.LastMaintenanceAt,
		asset.MaintenanceIntervalDays,
		asset.UsageHoursPerDay,
		asset.SerialNumber,
		asset.ImageURL,
		asset.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAssetNotFound
	}
	return nil
}

// Delete soft-deletes an asset.
func (r *PostgresRepository) Delete(ctx context.Context, locationID, assetID string) error {
	query := `
		UPDATE assets
		SET deleted_at = NOW()
		WHERE id = $1 AND location_id = $2 AND deleted_at IS NULL
	`

	tag, err := r.pool.Exec(ctx, query, assetID, locationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAssetNotFound
	}
	return nil
}

// scanAsset scans an asset from a query result row.
func scanAsset(row pgx.Row) (*Asset, error) {
	var asset Asset

	err := row.Scan(
		&asset.ID,
		&asset.LocationID,
		&asset.Name,
		&asset.Category,
		&asset.Status,
		&asset.InstalledAt,
		&asset.LastMaintenanceAt,
		&asset.MaintenanceIntervalDays,
		&asset.UsageHoursPerDay,
		&asset.SerialNumber,
		&asset.ImageURL,
		&asset.CreatedAt,
		&asset.UpdatedAt,
		&asset.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &asset, nil
}
