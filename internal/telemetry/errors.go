package telemetry

import "errors"

// Domain errors for the telemetry package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, telemetry.ErrNoMeasurements) {
//	    // handle empty history case
//	}
var (
	// ErrNoMeasurements is returned when a device has no stored measurements.
	ErrNoMeasurements = errors.New("telemetry: no measurements found")

	// ErrInvalidPayload is returned when an ingest payload fails validation.
	// The wrapping message names the offending field.
	ErrInvalidPayload = errors.New("telemetry: invalid payload")
)
