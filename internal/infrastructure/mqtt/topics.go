package mqtt

import (
	"fmt"
	"strings"
)

// defaultTopicPrefix is used when no prefix is configured.
const defaultTopicPrefix = "enerlink"

// Topics builds the topic names used on the broker. All topics share a
// configurable prefix so several gateways can coexist on one broker.
//
// Telemetry scheme: {prefix}/{device_id}/telemetry
type Topics struct {
	prefix string
}

// NewTopics creates a topic builder with the given prefix.
func NewTopics(prefix string) Topics {
	if prefix == "" {
		prefix = defaultTopicPrefix
	}
	return Topics{prefix: strings.TrimSuffix(prefix, "/")}
}

// DeviceTelemetry returns the telemetry topic for one device.
//
// Example: enerlink/esp32-001/telemetry
func (t Topics) DeviceTelemetry(deviceID string) string {
	return fmt.Sprintf("%s/%s/telemetry", t.prefix, deviceID)
}

// AllTelemetry returns the wildcard subscription covering every device's
// telemetry topic.
//
// Example: enerlink/+/telemetry
func (t Topics) AllTelemetry() string {
	return fmt.Sprintf("%s/+/telemetry", t.prefix)
}

// SystemStatus returns the gateway's own status topic, used for the
// online/offline announcements and the LWT.
//
// Example: enerlink/system/status
func (t Topics) SystemStatus() string {
	return fmt.Sprintf("%s/system/status", t.prefix)
}

// DeviceFromTelemetryTopic extracts the device ID from a telemetry topic.
// Returns false when the topic is not a telemetry topic under this prefix.
func (t Topics) DeviceFromTelemetryTopic(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, t.prefix+"/")
	if !ok {
		return "", false
	}
	deviceID, ok := strings.CutSuffix(rest, "/telemetry")
	if !ok || deviceID == "" || strings.Contains(deviceID, "/") {
		return "", false
	}
	return deviceID, true
}
