// Package ingest bridges MQTT telemetry into the measurement store.
//
// Meters on constrained links publish samples to {prefix}/{device}/telemetry
// instead of POSTing over HTTP. The bridge subscribes with a single
// wildcard, validates each payload exactly like the HTTP endpoint, and
// records through the shared write path so the mirror and live feed see
// one consistent stream regardless of transport.
package ingest
