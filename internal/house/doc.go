// Package house manages the registry of monitored dwellings.
//
// Each house is keyed by the device ID of the meter installed in it.
// Registration is append-only from the API's point of view: a device ID
// can be bound once, and the binding gates telemetry ingestion when
// registration is required by configuration.
package house
