package telemetry

import (
	"fmt"
	"time"
)

// Payload is the wire shape devices POST to /api/data (and publish over
// MQTT). Field names are the camelCase keys the ESP32 firmware sends; they
// differ from the snake_case names measurements are served back with.
//
// Numeric fields are pointers so a missing field can be distinguished from
// a zero value - required fields must be present, not merely zero.
type Payload struct {
	DeviceID     string   `json:"deviceId"`
	Voltage      *float64 `json:"voltage"`
	Current1     *float64 `json:"current1"`
	Current2     *float64 `json:"current2"`
	Energy       *float64 `json:"energy"`
	Energy1      *float64 `json:"energy1"`
	Energy2      *float64 `json:"energy2"`
	Relay1Status *bool    `json:"relay1Status"`
	Relay2Status *bool    `json:"relay2Status"`
	Timestamp    *string  `json:"timestamp"`
}

// Measurement validates the payload and converts it into a Measurement,
// applying the defaulting rules the firmware relies on:
//
//   - deviceId, voltage, current1, current2 are required
//   - either energy, or both energy1 and energy2, must be present;
//     a single energy value populates both channels
//   - relay statuses default to false
//   - timestamp defaults to now; when present it must be an RFC3339
//     instant, with or without fractional seconds
//
// Validation has no side effects; the returned error wraps
// ErrInvalidPayload with the offending field named.
func (p *Payload) Measurement(now time.Time) (*Measurement, error) {
	if p.DeviceID == "" {
		return nil, fmt.Errorf("%w: deviceId is required", ErrInvalidPayload)
	}
	if p.Voltage == nil {
		return nil, fmt.Errorf("%w: voltage is required and must be a number", ErrInvalidPayload)
	}
	if p.Current1 == nil {
		return nil, fmt.Errorf("%w: current1 is required and must be a number", ErrInvalidPayload)
	}
	if p.Current2 == nil {
		return nil, fmt.Errorf("%w: current2 is required and must be a number", ErrInvalidPayload)
	}

	energy1, energy2, err := p.energyChannels()
	if err != nil {
		return nil, err
	}

	createdAt := now.UTC()
	if p.Timestamp != nil {
		parsed, parseErr := time.Parse(time.RFC3339, *p.Timestamp)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: timestamp must be RFC3339", ErrInvalidPayload)
		}
		createdAt = parsed.UTC()
	}

	m := &Measurement{
		DeviceID:  p.DeviceID,
		Voltage:   *p.Voltage,
		Current1:  *p.Current1,
		Current2:  *p.Current2,
		Energy1:   energy1,
		Energy2:   energy2,
		CreatedAt: createdAt,
	}
	if p.Relay1Status != nil {
		m.Relay1Status = *p.Relay1Status
	}
	if p.Relay2Status != nil {
		m.Relay2Status = *p.Relay2Status
	}

	return m, nil
}

// energyChannels resolves the single-vs-dual energy reporting variants.
// Per-channel values win over the combined value when both are sent.
func (p *Payload) energyChannels() (energy1, energy2 float64, err error) {
	if p.Energy == nil && (p.Energy1 == nil || p.Energy2 == nil) {
		return 0, 0, fmt.Errorf("%w: energy or energy1/energy2 required", ErrInvalidPayload)
	}

	if p.Energy != nil {
		energy1 = *p.Energy
		energy2 = *p.Energy
	}
	if p.Energy1 != nil {
		energy1 = *p.Energy1
	}
	if p.Energy2 != nil {
		energy2 = *p.Energy2
	}
	return energy1, energy2, nil
}
