package command

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store defines the interface for the command queue.
type Store interface {
	// Enqueue persists a new command. An empty ID is assigned a UUID,
	// the status is forced to pending, and CreatedAt is truncated to
	// whole seconds to match the stored form.
	Enqueue(ctx context.Context, c *Command) error

	// List returns commands oldest first so devices execute in submission
	// order. Both filters are optional; an empty deviceID or status
	// matches everything.
	List(ctx context.Context, deviceID, status string) ([]Command, error)

	// Confirm marks a command executed. The reference may be the command
	// ID or, for older firmware that echoes the queue timestamp, the
	// RFC3339 creation time. Confirming an already-executed command is a
	// no-op. Returns ErrCommandNotFound when nothing matches.
	Confirm(ctx context.Context, deviceID, ref string) error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed command store.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Enqueue persists a new command.
func (s *SQLiteStore) Enqueue(ctx context.Context, c *Command) error {
	if c.DeviceID == "" {
		return fmt.Errorf("%w: device id is required", ErrInvalidCommand)
	}
	if c.Type == "" {
		return fmt.Errorf("%w: command type is required", ErrInvalidCommand)
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	// Stored at second precision. The command is echoed back to clients,
	// and Confirm matches the creation timestamp verbatim, so the
	// in-memory value must equal the stored form exactly.
	c.CreatedAt = c.CreatedAt.UTC().Truncate(time.Second)
	c.Status = StatusPending

	params := "{}"
	if c.Parameters != nil {
		b, err := json.Marshal(c.Parameters)
		if err != nil {
			return fmt.Errorf("%w: parameters not serialisable", ErrInvalidCommand)
		}
		params = string(b)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO commands (id, device_id, command_type, parameters, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.DeviceID, c.Type, params, c.Status,
		c.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting command %s: %w", c.ID, err)
	}
	return nil
}

// List returns commands oldest first, optionally filtered by device
// and status.
func (s *SQLiteStore) List(ctx context.Context, deviceID, status string) ([]Command, error) {
	query := `SELECT id, device_id, command_type, parameters, status, created_at
		FROM commands`
	var args []any
	var where []string
	if deviceID != "" {
		where = append(where, "device_id = ?")
		args = append(args, deviceID)
	}
	if status != "" {
		where = append(where, "status = ?")
		args = append(args, status)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying commands: %w", err)
	}
	defer rows.Close()

	commands := []Command{}
	for rows.Next() {
		var c Command
		var params, createdAt string
		if err := rows.Scan(&c.ID, &c.DeviceID, &c.Type, &params, &c.Status, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning command: %w", err)
		}
		if err := json.Unmarshal([]byte(params), &c.Parameters); err != nil {
			c.Parameters = map[string]any{}
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		commands = append(commands, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating commands: %w", err)
	}
	return commands, nil
}

// Confirm marks a command executed.
func (s *SQLiteStore) Confirm(ctx context.Context, deviceID, ref string) error {
	if deviceID == "" || ref == "" {
		return fmt.Errorf("%w: device id and command reference required", ErrInvalidCommand)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE commands SET status = ?
		 WHERE device_id = ? AND (id = ? OR created_at = ?) AND status = ?`,
		StatusExecuted, deviceID, ref, ref, StatusPending,
	)
	if err != nil {
		return fmt.Errorf("confirming command %s: %w", ref, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("confirming command %s: %w", ref, err)
	}
	if affected > 0 {
		return nil
	}

	// Nothing transitioned. Re-confirmation of an executed command is
	// fine; a reference that matches nothing is an error.
	var one int
	err = s.db.QueryRowContext(ctx,
		"SELECT 1 FROM commands WHERE device_id = ? AND (id = ? OR created_at = ?)",
		deviceID, ref, ref,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCommandNotFound
	}
	if err != nil {
		return fmt.Errorf("checking command %s: %w", ref, err)
	}
	return nil
}
