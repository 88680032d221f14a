package recharge

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/enerlink/enerlink-core/internal/infrastructure/config"
	"github.com/enerlink/enerlink-core/internal/infrastructure/logging"
	"github.com/enerlink/enerlink-core/internal/telemetry"
)

// setupRechargeTest creates an in-memory SQLite database and a service
// wired to a real recorder.
func setupRechargeTest(t *testing.T, cfg config.RechargeConfig) (*Service, *telemetry.SQLiteRepository) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE measurements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			device_id TEXT NOT NULL,
			voltage REAL NOT NULL DEFAULT 0,
			current1 REAL NOT NULL DEFAULT 0,
			current2 REAL NOT NULL DEFAULT 0,
			energy1 REAL NOT NULL DEFAULT 0,
			energy2 REAL NOT NULL DEFAULT 0,
			relay1_status INTEGER NOT NULL DEFAULT 0,
			relay2_status INTEGER NOT NULL DEFAULT 0,
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

	repo := telemetry.NewSQLiteRepository(db)
	recorder := telemetry.NewRecorder(repo, nil, nil, logging.Default())
	return NewService(recorder, cfg, logging.Default()), repo
}

// TestRecharge_ZeroBaseline verifies a device without history starts from zero.
func TestRecharge_ZeroBaseline(t *testing.T) {
	svc, _ := setupRechargeTest(t, config.RechargeConfig{DefaultChannel: 1})

	m, err := svc.Recharge(context.Background(), "esp32-001", 50.0)
	if err != nil {
		t.Fatalf("Recharge() error = %v", err)
	}
	if m.Energy1 != 50.0 {
		t.Errorf("Energy1 = %v, want 50", m.Energy1)
	}
	if m.Energy2 != 0 {
		t.Errorf("Energy2 = %v, want 0", m.Energy2)
	}
	if m.Voltage != 0 {
		t.Errorf("Voltage = %v, want 0 baseline", m.Voltage)
	}
}

// TestRecharge_AddsToBaseline verifies the credit lands on top of the
// latest measurement and carries its other fields.
func TestRecharge_AddsToBaseline(t *testing.T) {
	svc, repo := setupRechargeTest(t, config.RechargeConfig{DefaultChannel: 1})
	ctx := context.Background()

	err := repo.Insert(ctx, &telemetry.Measurement{
		DeviceID:     "esp32-001",
		Voltage:      231.0,
		Current1:     1.5,
		Energy1:      100.0,
		Energy2:      40.0,
		Relay1Status: true,
	})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	m, err := svc.Recharge(ctx, "esp32-001", 25.5)
	if err != nil {
		t.Fatalf("Recharge() error = %v", err)
	}
	if m.Energy1 != 125.5 {
		t.Errorf("Energy1 = %v, want 125.5", m.Energy1)
	}
	if m.Energy2 != 40.0 {
		t.Errorf("Energy2 = %v, want unchanged 40", m.Energy2)
	}
	if m.Voltage != 231.0 || m.Current1 != 1.5 {
		t.Errorf("baseline fields not carried: voltage=%v current1=%v", m.Voltage, m.Current1)
	}
	if !m.Relay1Status {
		t.Error("Relay1Status = false, want carried true")
	}

	// The recharge itself becomes the latest measurement.
	latest, err := repo.LatestByDevice(ctx, "esp32-001")
	if err != nil {
		t.Fatalf("LatestByDevice() error = %v", err)
	}
	if latest.Energy1 != 125.5 {
		t.Errorf("latest Energy1 = %v, want 125.5", latest.Energy1)
	}
}

// TestRecharge_ChannelMapping verifies per-device channel overrides.
func TestRecharge_ChannelMapping(t *testing.T) {
	svc, _ := setupRechargeTest(t, config.RechargeConfig{
		DefaultChannel: 1,
		Channels:       map[string]int{"esp32-002": 2},
	})
	ctx := context.Background()

	m1, err := svc.Recharge(ctx, "esp32-001", 10)
	if err != nil {
		t.Fatalf("Recharge() error = %v", err)
	}
	if m1.Energy1 != 10 || m1.Energy2 != 0 {
		t.Errorf("default channel: energy = (%v, %v), want (10, 0)", m1.Energy1, m1.Energy2)
	}

	m2, err := svc.Recharge(ctx, "esp32-002", 10)
	if err != nil {
		t.Fatalf("Recharge() error = %v", err)
	}
	if m2.Energy1 != 0 || m2.Energy2 != 10 {
		t.Errorf("mapped channel: energy = (%v, %v), want (0, 10)", m2.Energy1, m2.Energy2)
	}
}

// TestRecharge_InvalidAmount verifies rejection of non-positive amounts.
func TestRecharge_InvalidAmount(t *testing.T) {
	svc, _ := setupRechargeTest(t, config.RechargeConfig{DefaultChannel: 1})
	ctx := context.Background()

	for _, amount := range []float64{0, -5} {
		if _, err := svc.Recharge(ctx, "esp32-001", amount); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Recharge(%v) error = %v, want ErrInvalidAmount", amount, err)
		}
	}
	if _, err := svc.Recharge(ctx, "", 10); err == nil {
		t.Error("Recharge() with empty device id succeeded, want error")
	}
}

// TestRecharge_ConcurrentCreditsSum verifies no credit is lost when
// recharges for the same device race.
func TestRecharge_ConcurrentCreditsSum(t *testing.T) {
	svc, repo := setupRechargeTest(t, config.RechargeConfig{DefaultChannel: 1})
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Recharge(ctx, "esp32-001", 5); err != nil {
				t.Errorf("Recharge() error = %v", err)
			}
		}()
	}
	wg.Wait()

	latest, err := repo.LatestByDevice(ctx, "esp32-001")
	if err != nil {
		t.Fatalf("LatestByDevice() error = %v", err)
	}
	if latest.Energy1 != workers*5 {
		t.Errorf("Energy1 = %v, want %v", latest.Energy1, workers*5)
	}
}
