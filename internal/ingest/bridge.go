package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/enerlink/enerlink-core/internal/house"
	"github.com/enerlink/enerlink-core/internal/infrastructure/logging"
	"github.com/enerlink/enerlink-core/internal/infrastructure/mqtt"
	"github.com/enerlink/enerlink-core/internal/telemetry"
)

// telemetryQoS is the subscription QoS for device telemetry. At-least-once
// is enough: measurements are append-only and duplicates are harmless.
const telemetryQoS = 1

// Bridge subscribes to device telemetry topics and records measurements
// through the shared write path. It is the MQTT counterpart of the HTTP
// ingest endpoint: same payload shape, same validation, same storage.
type Bridge struct {
	client   *mqtt.Client
	topics   mqtt.Topics
	recorder *telemetry.Recorder
	houses   house.Repository

	// requireRegistration drops telemetry from devices without a
	// registered house.
	requireRegistration bool

	logger *logging.Logger
}

// NewBridge creates an ingest bridge. houses may be nil when registration
// is not enforced.
func NewBridge(client *mqtt.Client, recorder *telemetry.Recorder, houses house.Repository, requireRegistration bool, logger *logging.Logger) *Bridge {
	return &Bridge{
		client:              client,
		topics:              client.Topics(),
		recorder:            recorder,
		houses:              houses,
		requireRegistration: requireRegistration,
		logger:              logger.With("component", "ingest"),
	}
}

// Start subscribes to all device telemetry topics. The subscription is
// restored automatically on reconnect by the MQTT client.
func (b *Bridge) Start(ctx context.Context) error {
	topic := b.topics.AllTelemetry()
	if err := b.client.Subscribe(topic, telemetryQoS, b.handleTelemetry(ctx)); err != nil {
		return fmt.Errorf("subscribing to telemetry: %w", err)
	}

	b.logger.Info("telemetry ingest started", "topic", topic)
	return nil
}

// handleTelemetry returns the message handler for telemetry topics.
//
// Malformed payloads are logged and dropped: one misbehaving meter must
// not affect the rest of the fleet. The device ID from the topic is
// authoritative; a conflicting deviceId in the payload is overridden.
func (b *Bridge) handleTelemetry(ctx context.Context) mqtt.MessageHandler {
	return func(topic string, payload []byte) error {
		deviceID, ok := b.topics.DeviceFromTelemetryTopic(topic)
		if !ok {
			b.logger.Warn("ignoring message on unexpected topic", "topic", topic)
			return nil
		}

		var p telemetry.Payload
		if err := json.Unmarshal(payload, &p); err != nil {
			b.logger.Warn("dropping malformed telemetry",
				"device_id", deviceID,
				"error", err,
			)
			return nil
		}
		p.DeviceID = deviceID

		m, err := p.Measurement(time.Now())
		if err != nil {
			b.logger.Warn("dropping invalid telemetry",
				"device_id", deviceID,
				"error", err,
			)
			return nil
		}

		if b.requireRegistration && b.houses != nil {
			registered, err := b.houses.Exists(ctx, deviceID)
			if err != nil {
				return fmt.Errorf("checking registration for %s: %w", deviceID, err)
			}
			if !registered {
				b.logger.Warn("dropping telemetry from unregistered device", "device_id", deviceID)
				return nil
			}
		}

		if err := b.recorder.Record(ctx, m); err != nil {
			return fmt.Errorf("recording telemetry for %s: %w", deviceID, err)
		}
		return nil
	}
}
