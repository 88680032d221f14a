package mqtt

import "testing"

// TestTopics verifies topic construction with default and custom prefixes.
func TestTopics(t *testing.T) {
	topics := NewTopics("")
	if got := topics.DeviceTelemetry("esp32-001"); got != "enerlink/esp32-001/telemetry" {
		t.Errorf("DeviceTelemetry() = %q", got)
	}
	if got := topics.AllTelemetry(); got != "enerlink/+/telemetry" {
		t.Errorf("AllTelemetry() = %q", got)
	}
	if got := topics.SystemStatus(); got != "enerlink/system/status" {
		t.Errorf("SystemStatus() = %q", got)
	}

	custom := NewTopics("site-a/")
	if got := custom.DeviceTelemetry("esp32-001"); got != "site-a/esp32-001/telemetry" {
		t.Errorf("DeviceTelemetry() with custom prefix = %q", got)
	}
}

// TestDeviceFromTelemetryTopic verifies device ID extraction.
func TestDeviceFromTelemetryTopic(t *testing.T) {
	topics := NewTopics("enerlink")

	tests := []struct {
		name       string
		topic      string
		wantDevice string
		wantOK     bool
	}{
		{"valid topic", "enerlink/esp32-001/telemetry", "esp32-001", true},
		{"wrong prefix", "other/esp32-001/telemetry", "", false},
		{"wrong suffix", "enerlink/esp32-001/status", "", false},
		{"missing device", "enerlink//telemetry", "", false},
		{"nested device segment", "enerlink/a/b/telemetry", "", false},
		{"system topic", "enerlink/system/status", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device, ok := topics.DeviceFromTelemetryTopic(tt.topic)
			if ok != tt.wantOK || device != tt.wantDevice {
				t.Errorf("DeviceFromTelemetryTopic(%q) = (%q, %v), want (%q, %v)",
					tt.topic, device, ok, tt.wantDevice, tt.wantOK)
			}
		})
	}
}
