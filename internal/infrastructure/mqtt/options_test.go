package mqtt

import (
	"strings"
	"testing"

	"github.com/enerlink/enerlink-core/internal/infrastructure/config"
)

// TestBuildClientOptions verifies broker URL and credential wiring.
func TestBuildClientOptions(t *testing.T) {
	cfg := config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "broker.local",
			Port:     1883,
			ClientID: "enerlink-core",
		},
		Auth: config.MQTTAuthConfig{Username: "gateway", Password: "secret"},
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     60,
		},
	}

	opts := buildClientOptions(cfg)
	if len(opts.Servers) != 1 {
		t.Fatalf("servers length = %d, want 1", len(opts.Servers))
	}
	if got := opts.Servers[0].String(); got != "tcp://broker.local:1883" {
		t.Errorf("broker URL = %q, want tcp scheme", got)
	}
	if opts.ClientID != "enerlink-core" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "gateway" {
		t.Errorf("Username = %q", opts.Username)
	}

	cfg.Broker.TLS = true
	opts = buildClientOptions(cfg)
	if got := opts.Servers[0].String(); !strings.HasPrefix(got, "ssl://") {
		t.Errorf("broker URL = %q, want ssl scheme with TLS enabled", got)
	}
	if opts.TLSConfig == nil {
		t.Error("TLSConfig is nil with TLS enabled")
	}
}

// TestConfigureLWT verifies the will message targets the status topic.
func TestConfigureLWT(t *testing.T) {
	cfg := config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{Host: "broker.local", Port: 1883, ClientID: "enerlink-core"},
	}
	opts := buildClientOptions(cfg)
	configureLWT(opts, NewTopics("enerlink"), "enerlink-core")

	if !opts.WillEnabled {
		t.Fatal("will not enabled")
	}
	if opts.WillTopic != "enerlink/system/status" {
		t.Errorf("WillTopic = %q", opts.WillTopic)
	}
	if !strings.Contains(string(opts.WillPayload), `"status":"offline"`) {
		t.Errorf("WillPayload = %q, want offline status", opts.WillPayload)
	}
	if !opts.WillRetained {
		t.Error("will not retained")
	}
}
