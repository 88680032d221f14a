package telemetry

import "time"

// Measurement is one telemetry sample from an energy-monitoring device.
//
// Rows are immutable once stored: the gateway only ever appends new
// measurements, never updates or deletes them. The JSON field names match
// what the dashboard frontends already consume.
type Measurement struct {
	// ID is the auto-incremented primary key for the row.
	ID int64 `json:"id"`

	// DeviceID is the unique identifier of the reporting device.
	DeviceID string `json:"device_id"`

	// Voltage is the measured line voltage in volts.
	Voltage float64 `json:"voltage"`

	// Current1 and Current2 are the per-channel currents in amperes.
	Current1 float64 `json:"current1"`
	Current2 float64 `json:"current2"`

	// Energy1 and Energy2 are the per-channel energy accumulators in kWh.
	// Devices report them as monotonically non-decreasing, but the gateway
	// does not enforce that.
	Energy1 float64 `json:"energy1"`
	Energy2 float64 `json:"energy2"`

	// Relay1Status and Relay2Status are the per-channel relay states.
	Relay1Status bool `json:"relay1_status"`
	Relay2Status bool `json:"relay2_status"`

	// CreatedAt is the sample timestamp (UTC). Defaults to the
	// server-observed time when the device omits it.
	CreatedAt time.Time `json:"created_at"`
}
