package house

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for house persistence operations.
type Repository interface {
	// Create registers a house. Returns ErrHouseExists if the device ID
	// is already registered.
	Create(ctx context.Context, h *House) error

	// GetByDeviceID returns the house registered for a device.
	// Returns ErrHouseNotFound if none exists.
	GetByDeviceID(ctx context.Context, deviceID string) (*House, error)

	// List returns all registered houses ordered by name.
	List(ctx context.Context) ([]House, error)

	// Exists reports whether a device ID has a registered house.
	Exists(ctx context.Context, deviceID string) (bool, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed house repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create registers a house.
func (r *SQLiteRepository) Create(ctx context.Context, h *House) error {
	if h.DeviceID == "" {
		return fmt.Errorf("device id is required")
	}
	if h.Nom == "" {
		return fmt.Errorf("nom is required")
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO houses (device_id, nom, adresse, created_at) VALUES (?, ?, ?, ?)",
		h.DeviceID, h.Nom, h.Adresse, h.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrHouseExists
		}
		return fmt.Errorf("inserting house %s: %w", h.DeviceID, err)
	}
	return nil
}

// GetByDeviceID returns the house registered for a device.
func (r *SQLiteRepository) GetByDeviceID(ctx context.Context, deviceID string) (*House, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT device_id, nom, adresse, created_at FROM houses WHERE device_id = ?",
		deviceID,
	)

	h, err := scanHouse(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHouseNotFound
		}
		return nil, fmt.Errorf("querying house %s: %w", deviceID, err)
	}
	return h, nil
}

// List returns all registered houses ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]House, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT device_id, nom, adresse, created_at FROM houses ORDER BY nom, device_id",
	)
	if err != nil {
		return nil, fmt.Errorf("querying houses: %w", err)
	}
	defer rows.Close()

	houses := []House{}
	for rows.Next() {
		h, err := scanHouse(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning house: %w", err)
		}
		houses = append(houses, *h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating houses: %w", err)
	}
	return houses, nil
}

// Exists reports whether a device ID has a registered house.
func (r *SQLiteRepository) Exists(ctx context.Context, deviceID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM houses WHERE device_id = ?", deviceID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking house %s: %w", deviceID, err)
	}
	return true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHouse(s scanner) (*House, error) {
	var h House
	var createdAt string
	if err := s.Scan(&h.DeviceID, &h.Nom, &h.Adresse, &createdAt); err != nil {
		return nil, err
	}
	h.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &h, nil
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
