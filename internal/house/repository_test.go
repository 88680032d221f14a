package house

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupHouseTestDB creates an in-memory SQLite database with the houses table.
func setupHouseTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE houses (
			device_id TEXT PRIMARY KEY,
			nom TEXT NOT NULL,
			adresse TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestCreateAndGet verifies the registration round trip.
func TestCreateAndGet(t *testing.T) {
	db := setupHouseTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	h := &House{DeviceID: "esp32-001", Nom: "Maison Dupont", Adresse: "12 rue des Lilas"}
	if err := repo.Create(ctx, h); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if h.CreatedAt.IsZero() {
		t.Error("Create() did not default CreatedAt")
	}

	got, err := repo.GetByDeviceID(ctx, "esp32-001")
	if err != nil {
		t.Fatalf("GetByDeviceID() error = %v", err)
	}
	if got.Nom != "Maison Dupont" {
		t.Errorf("Nom = %q, want %q", got.Nom, "Maison Dupont")
	}
	if got.Adresse != "12 rue des Lilas" {
		t.Errorf("Adresse = %q, want %q", got.Adresse, "12 rue des Lilas")
	}
}

// TestCreate_Duplicate verifies the conflict sentinel on re-registration.
func TestCreate_Duplicate(t *testing.T) {
	db := setupHouseTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, &House{DeviceID: "esp32-001", Nom: "First"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err := repo.Create(ctx, &House{DeviceID: "esp32-001", Nom: "Second"})
	if !errors.Is(err, ErrHouseExists) {
		t.Errorf("Create() error = %v, want ErrHouseExists", err)
	}
}

// TestCreate_Validation verifies required fields.
func TestCreate_Validation(t *testing.T) {
	db := setupHouseTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, &House{Nom: "No Device"}); err == nil {
		t.Error("Create() without device id succeeded, want error")
	}
	if err := repo.Create(ctx, &House{DeviceID: "esp32-001"}); err == nil {
		t.Error("Create() without nom succeeded, want error")
	}
}

// TestGetByDeviceID_NotFound verifies the not-found sentinel.
func TestGetByDeviceID_NotFound(t *testing.T) {
	db := setupHouseTestDB(t)
	repo := NewSQLiteRepository(db)

	_, err := repo.GetByDeviceID(context.Background(), "unknown")
	if !errors.Is(err, ErrHouseNotFound) {
		t.Errorf("GetByDeviceID() error = %v, want ErrHouseNotFound", err)
	}
}

// TestList verifies name ordering.
func TestList(t *testing.T) {
	db := setupHouseTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	for _, h := range []*House{
		{DeviceID: "esp32-002", Nom: "Villa B"},
		{DeviceID: "esp32-001", Nom: "Appartement A"},
	} {
		if err := repo.Create(ctx, h); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	houses, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(houses) != 2 {
		t.Fatalf("houses length = %d, want 2", len(houses))
	}
	if houses[0].Nom != "Appartement A" || houses[1].Nom != "Villa B" {
		t.Errorf("houses not ordered by name: %q, %q", houses[0].Nom, houses[1].Nom)
	}
}

// TestExists verifies the registration check.
func TestExists(t *testing.T) {
	db := setupHouseTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, &House{DeviceID: "esp32-001", Nom: "Maison"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	exists, err := repo.Exists(ctx, "esp32-001")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !exists {
		t.Error("Exists() = false for registered device, want true")
	}

	exists, err = repo.Exists(ctx, "unknown")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("Exists() = true for unknown device, want false")
	}
}
