// Package telemetry stores and serves device measurements.
//
// A measurement is one sample from an energy meter: mains voltage, the
// current on each of the two monitored channels, the cumulative energy
// counters, and the relay states. Rows are append-only; history queries
// read newest first with a clamped limit.
//
// Firmware payloads arrive in a looser shape (optional fields, a single
// combined energy value on older units) and are normalised by Payload
// before storage. All writes flow through Recorder, which fans stored
// measurements out to the optional time-series mirror and the live
// WebSocket feed.
package telemetry
