// EnerLink Core - Energy Monitoring Gateway
//
// This is the main entry point for the EnerLink gateway. The gateway sits
// between ESP32 energy meters and the dashboards that watch them:
//   - Devices POST telemetry (or publish it over MQTT) and poll a
//     per-device command queue
//   - Dashboards read history, register houses, buy energy credits, and
//     follow live measurements over WebSocket
//   - SQLite is the system of record; InfluxDB is an optional mirror for
//     long-range charting
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/enerlink/enerlink-core/migrations"

	"github.com/enerlink/enerlink-core/internal/api"
	"github.com/enerlink/enerlink-core/internal/auth"
	"github.com/enerlink/enerlink-core/internal/command"
	"github.com/enerlink/enerlink-core/internal/house"
	"github.com/enerlink/enerlink-core/internal/infrastructure/config"
	"github.com/enerlink/enerlink-core/internal/infrastructure/database"
	"github.com/enerlink/enerlink-core/internal/infrastructure/influxdb"
	"github.com/enerlink/enerlink-core/internal/infrastructure/logging"
	"github.com/enerlink/enerlink-core/internal/infrastructure/mqtt"
	"github.com/enerlink/enerlink-core/internal/ingest"
	"github.com/enerlink/enerlink-core/internal/recharge"
	"github.com/enerlink/enerlink-core/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting EnerLink Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Repositories
	houses := house.NewSQLiteRepository(db.DB)
	commands := command.NewSQLiteStore(db.DB)
	users := auth.NewUserRepository(db.DB)

	// Seed the admin account on first boot; the one-time password is
	// logged by SeedAdmin itself.
	if _, seedErr := auth.SeedAdmin(ctx, users, log); seedErr != nil {
		return fmt.Errorf("seeding admin user: %w", seedErr)
	}

	// Connect to InfluxDB (optional mirror)
	var mirror telemetry.Mirror
	influxClient, err := influxdb.Connect(cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB mirror disabled")
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		mirror = influxClient
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	}

	// WebSocket hub, shared between the API server and the MQTT bridge
	// so both ingest paths reach live dashboard subscribers.
	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)

	// Recorder is the single write path for measurements: SQLite first,
	// then the Influx mirror and WebSocket fan-out.
	recorder := telemetry.NewRecorder(telemetry.NewSQLiteRepository(db.DB), mirror, hub, log)

	rechargeSvc := recharge.NewService(recorder, cfg.Recharge, log)

	// Connect to MQTT broker and start the ingest bridge (optional)
	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		bridge := ingest.NewBridge(mqttClient, recorder, houses, cfg.Telemetry.RequireRegistration, log)
		if bridgeErr := bridge.Start(ctx); bridgeErr != nil {
			return fmt.Errorf("starting MQTT ingest bridge: %w", bridgeErr)
		}
		log.Info("MQTT ingest bridge started", "topic", mqttClient.Topics().AllTelemetry())
	} else {
		log.Info("MQTT ingest disabled")
	}

	// Start the API server
	server, err := api.New(api.Deps{
		Config:      cfg.Server,
		WS:          cfg.WebSocket,
		Security:    cfg.Security,
		Telemetry:   cfg.Telemetry,
		Logger:      log,
		Recorder:    recorder,
		Houses:      houses,
		Commands:    commands,
		Users:       users,
		Recharge:    rechargeSvc,
		ExternalHub: hub,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. MQTT (if enabled)
	// 3. InfluxDB (if enabled)
	// 4. Database

	log.Info("EnerLink Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses ENERLINK_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("ENERLINK_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
