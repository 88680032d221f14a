package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// History limits. Dashboards page through at most a couple hundred rows;
// anything larger belongs in the time-series mirror.
const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// Repository defines the persistence contract for measurements.
// This abstraction allows for different implementations (SQLite, mock)
// and enables unit testing without database dependencies.
type Repository interface {
	// Insert appends a measurement row. The row is immutable once stored.
	// A zero CreatedAt is replaced with the current time.
	Insert(ctx context.Context, m *Measurement) error

	// LatestByDevice returns the most recent measurement for a device.
	// Returns ErrNoMeasurements if the device has no stored rows.
	LatestByDevice(ctx context.Context, deviceID string) (*Measurement, error)

	// HistoryByDevice returns recent measurements for a device, newest
	// first. The limit defaults to 50 and is clamped to 200.
	HistoryByDevice(ctx context.Context, deviceID string, limit int) ([]Measurement, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed measurement repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Insert appends a measurement row.
func (r *SQLiteRepository) Insert(ctx context.Context, m *Measurement) error {
	if m.DeviceID == "" {
		return fmt.Errorf("device id is required")
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO measurements
			(device_id, voltage, current1, current2, energy1, energy2, relay1_status, relay2_status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.DeviceID,
		m.Voltage,
		m.Current1,
		m.Current2,
		m.Energy1,
		m.Energy2,
		boolToInt(m.Relay1Status),
		boolToInt(m.Relay2Status),
		m.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting measurement: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		m.ID = id
	}
	return nil
}

// LatestByDevice returns the most recent measurement for a device.
func (r *SQLiteRepository) LatestByDevice(ctx context.Context, deviceID string) (*Measurement, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("device id is required")
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, device_id, voltage, current1, current2, energy1, energy2, relay1_status, relay2_status, created_at
		 FROM measurements
		 WHERE device_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`,
		deviceID,
	)

	m, err := scanMeasurement(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoMeasurements
		}
		return nil, fmt.Errorf("querying latest measurement: %w", err)
	}
	return m, nil
}

// HistoryByDevice returns recent measurements for a device, newest first.
func (r *SQLiteRepository) HistoryByDevice(ctx context.Context, deviceID string, limit int) ([]Measurement, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("device id is required")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, device_id, voltage, current1, current2, energy1, energy2, relay1_status, relay2_status, created_at
		 FROM measurements
		 WHERE device_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		deviceID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying measurement history: %w", err)
	}
	defer rows.Close()

	measurements := make([]Measurement, 0, limit)
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning measurement: %w", err)
		}
		measurements = append(measurements, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating measurements: %w", err)
	}
	return measurements, nil
}

// scanner abstracts sql.Row and sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

// scanMeasurement scans a measurement row from the standard column order.
func scanMeasurement(s scanner) (*Measurement, error) {
	var m Measurement
	var relay1, relay2 int
	var createdAt string

	if err := s.Scan(
		&m.ID,
		&m.DeviceID,
		&m.Voltage,
		&m.Current1,
		&m.Current2,
		&m.Energy1,
		&m.Energy2,
		&relay1,
		&relay2,
		&createdAt,
	); err != nil {
		return nil, err
	}

	m.Relay1Status = relay1 != 0
	m.Relay2Status = relay2 != 0
	// Format is controlled by Insert, parse errors leave a zero time.
	m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &m, nil
}

// boolToInt converts a bool to the 0/1 form SQLite stores.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
