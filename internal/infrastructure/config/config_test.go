package config

import (
	"os"
	"path/filepath"
	"testing"
)

// validAPIKey and validJWTSecret meet the minimum length requirements.
const (
	validAPIKey    = "test-api-key-0123456789"
	validJWTSecret = "test-secret-key-at-least-32-chars!"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
server:
  host: "127.0.0.1"
  port: 9090
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
security:
  api_key: "` + validAPIKey + `"
  jwt:
    secret: "` + validJWTSecret + `"
telemetry:
  require_registration: true
recharge:
  default_channel: 1
  channels:
    esp32_maison1: 1
    esp32_maison2: 2
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if !cfg.Telemetry.RequireRegistration {
		t.Error("Telemetry.RequireRegistration = false, want true")
	}
	if got := cfg.Recharge.ChannelFor("esp32_maison2"); got != 2 {
		t.Errorf("ChannelFor(esp32_maison2) = %d, want 2", got)
	}
	if got := cfg.Recharge.ChannelFor("unmapped-device"); got != 1 {
		t.Errorf("ChannelFor(unmapped-device) = %d, want default channel 1", got)
	}
}

func TestLoad_Defaults(t *testing.T) {
	content := `
security:
  api_key: "` + validAPIKey + `"
  jwt:
    secret: "` + validJWTSecret + `"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
	if cfg.Database.Path != "./data/enerlink.db" {
		t.Errorf("Database.Path = %q, want default", cfg.Database.Path)
	}
	if cfg.Recharge.DefaultChannel != 1 {
		t.Errorf("Recharge.DefaultChannel = %d, want 1", cfg.Recharge.DefaultChannel)
	}
	if cfg.MQTT.TopicPrefix != "enerlink" {
		t.Errorf("MQTT.TopicPrefix = %q, want %q", cfg.MQTT.TopicPrefix, "enerlink")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	content := `
security:
  api_key: "` + validAPIKey + `"
  jwt:
    secret: "` + validJWTSecret + `"
`
	t.Setenv("ENERLINK_DATABASE_PATH", "/var/lib/enerlink/override.db")
	t.Setenv("ENERLINK_API_KEY", "env-api-key-0123456789")

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/var/lib/enerlink/override.db" {
		t.Errorf("Database.Path = %q, want env override", cfg.Database.Path)
	}
	if cfg.Security.APIKey != "env-api-key-0123456789" {
		t.Errorf("Security.APIKey = %q, want env override", cfg.Security.APIKey)
	}
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		cfg := defaultConfig()
		cfg.Security.APIKey = validAPIKey
		cfg.Security.JWT.Secret = validJWTSecret
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing api key",
			mutate:  func(c *Config) { c.Security.APIKey = "" },
			wantErr: true,
		},
		{
			name:    "short api key",
			mutate:  func(c *Config) { c.Security.APIKey = "short" },
			wantErr: true,
		},
		{
			name:    "missing jwt secret",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "" },
			wantErr: true,
		},
		{
			name:    "short jwt secret",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "too-short" },
			wantErr: true,
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: true,
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "invalid default channel",
			mutate:  func(c *Config) { c.Recharge.DefaultChannel = 3 },
			wantErr: true,
		},
		{
			name:    "invalid channel mapping",
			mutate:  func(c *Config) { c.Recharge.Channels = map[string]int{"dev-1": 7} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
