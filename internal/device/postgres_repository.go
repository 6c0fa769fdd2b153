package device

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL device repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const deviceColumns = `
	id, location_id, asset_id, type, hardware_id, name,
	is_online, last_heartbeat_at,
	temp_max, temp_min, humidity_max, humidity_min, energy_max,
	created_at, updated_at, deleted_at
`

// Get retrieves a device by location ID and device ID.
func (r *PostgresRepository) Get(ctx context.Context, locationID, deviceID string) (*Device, error) {
	query := `
		SELECT ` + deviceColumns + `
		FROM devices
		WHERE id = $1 AND location_id = $2 AND deleted_at IS NULL
	`

	device, err := scanDevice(r.pool.QueryRow(ctx, query, deviceID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}
	return device, nil
}

// GetByHardwareID retrieves a device by its hardware identifier.
func (r *PostgresRepository) GetByHardwareID(ctx context.Context, hardwareID string) (*Device, error) {
	query := `
		SELECT ` + deviceColumns + `
		FROM devices
		WHERE hardware_id = $1 AND deleted_at IS NULL
	`

	device, err := scanDevice(r.pool.QueryRow(ctx, query, hardwareID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}
	return device, nil
}

// ListByLocation retrieves all devices for a location.
func (r *PostgresRepository) ListByLocation(ctx context.Context, locationID string, opts ListOptions) ([]*Device, error) {
	query := `
		SELECT ` + deviceColumns + `
		FROM devices
		WHERE location_id = $1 AND deleted_at IS NULL
		  AND ($2 = '' OR type = $2)
		  AND ($3 = '' OR asset_id = $3)
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, locationID, string(opts.Type), opts.AssetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []*Device
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, device)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return devices, nil
}

// ListHeartbeatStale retrieves online devices with heartbeats older than the deadline.
func (r *PostgresRepository) ListHeartbeatStale(ctx context.Context, deadline time.Time) ([]*Device, error) {
	query := `
		SELECT ` + deviceColumns + `
		FROM devices
		WHERE deleted_at IS NULL AND is_online = TRUE
		  AND (last_heartbeat_at IS NULL OR last_heartbeat_at < $1)
	`

	rows, err := r.pool.Query(ctx, query, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []*Device
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, device)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return devices, nil
}

// Create creates a new device.
func (r *PostgresRepository) Create(ctx context.Context, device *Device) error {
	query := `
		INSERT INTO devices (` + deviceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.pool.Exec(ctx, query,
		device.ID,
		device.LocationID,
		device.AssetID,
		device.Type,
		device.HardwareID,
		device.Name,
		device.Online,
		device.LastHeartbeatAt,
		device.Thresholds.TempMax,
		device.Thresholds.TempMin,
		device.Thresholds.HumidityMax,
		device.Thresholds.HumidityMin,
		device.Thresholds.EnergyMax,
		device.CreatedAt,
		device.UpdatedAt,
		device.DeletedAt,
	)
	return err
}

// Update updates an existing device.
func (r *PostgresRepository) Update(ctx context.Context, device *Device) error {
	query := `
		UPDATE devices
		SET asset_id = $2, type = $3, name = $4,
		    is_online = $5, last_heartbeat_at = $6,
		    temp_max = $7, temp_min = $8,
		    humidity_max = $9, humidity_min = $10, energy_max = $11,
		    updated_at = $12
		WHERE id = $1 AND deleted_at IS NULL
	`

	tag, err := r.pool.Exec(ctx, query,
		device.ID,
		device.AssetID,
		device.Type,
		device.Name,
		device.Online,
		device.LastHeartbeatAt,
		device.Thresholds.TempMax,
		device.Thresholds.TempMin,
		device.Thresholds.HumidityMax,
		device.Thresholds.HumidityMin,
		device.Thresholds.EnergyMax,
		device.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// Delete soft-deletes a device.
func (r *PostgresRepository) Delete(ctx context.Context, locationID, deviceID string) error {
	query := `
		UPDATE devices
		SET deleted_at = NOW()
		WHERE id = $1 AND location_id = $2 AND deleted_at IS NULL
	`

	tag, err := r.pool.Exec(ctx, query, deviceID, locationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// InsertTelemetry stores a reading.
func (r *PostgresRepository) InsertTelemetry(ctx context.Context, reading *Telemetry) error {
	data, err := json.Marshal(reading.Data)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO telemetry_records (id, device_id, data, recorded_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err = r.pool.Exec(ctx, query, reading.ID, reading.DeviceID, data, reading.RecordedAt)
	return err
}

// ListTelemetry retrieves stored readings for a device, newest first.
func (r *PostgresRepository) ListTelemetry(ctx context.Context, deviceID string, opts HistoryOptions) ([]*Telemetry, error) {
	limit := opts.Limit
	if limit <= 0 || limit > maxHistoryRecords {
		limit = maxHistoryRecords
	}

	query := `
		SELECT id, device_id, data, recorded_at
		FROM telemetry_records
		WHERE device_id = $1
		  AND ($2::timestamptz IS NULL OR recorded_at >= $2)
		ORDER BY recorded_at DESC
		LIMIT $3
	`

	var since *time.Time
	if !opts.Since.IsZero() {
		since = &opts.Since
	}

	rows, err := r.pool.Query(ctx, query, deviceID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []*Telemetry
	for rows.Next() {
		var (
			reading Telemetry
			data    []byte
		)
		if err := rows.Scan(&reading.ID, &reading.DeviceID, &data, &reading.RecordedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &reading.Data); err != nil {
			return nil, err
		}
		readings = append(readings, &reading)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return readings, nil
}

// scanDevice scans a device from a query result row.
func scanDevice(row pgx.Row) (*Device, error) {
	var device Device

	err := row.Scan(
		&device.ID,
		&device.LocationID,
		&device.AssetID,
		&device.Type,
		&device.HardwareID,
		&device.Name,
		&device.Online,
		&device.LastHeartbeatAt,
		&device.Thresholds.TempMax,
		&device.Thresholds.TempMin,
		&device.Thresholds.HumidityMax,
		&device.Thresholds.HumidityMin,
		&device.Thresholds.EnergyMax,
		&device.CreatedAt,
		&device.UpdatedAt,
		&device.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &device, nil
}
