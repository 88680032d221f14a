package telemetry

import (
	"context"
	"fmt"

	"github.com/enerlink/enerlink-core/internal/infrastructure/logging"
)

// Mirror receives a copy of every stored measurement for time-series
// analytics. Mirror failures never fail the write.
type Mirror interface {
	MirrorMeasurement(m *Measurement)
}

// Broadcaster pushes stored measurements to live subscribers.
type Broadcaster interface {
	BroadcastMeasurement(m *Measurement)
}

// Recorder is the single write path for measurements. Every producer
// (HTTP ingest, MQTT ingest, recharge accounting) records through it so
// the mirror and live feed see a consistent stream.
type Recorder struct {
	repo        Repository
	mirror      Mirror
	broadcaster Broadcaster
	logger      *logging.Logger
}

// NewRecorder creates a Recorder. mirror and broadcaster may be nil when
// the corresponding integration is disabled.
func NewRecorder(repo Repository, mirror Mirror, broadcaster Broadcaster, logger *logging.Logger) *Recorder {
	return &Recorder{
		repo:        repo,
		mirror:      mirror,
		broadcaster: broadcaster,
		logger:      logger.With("component", "telemetry"),
	}
}

// Record persists a measurement and fans it out to the mirror and
// broadcaster. Persistence failure is the only failure: fan-out targets
// are best-effort.
func (r *Recorder) Record(ctx context.Context, m *Measurement) error {
	if err := r.repo.Insert(ctx, m); err != nil {
		return fmt.Errorf("recording measurement: %w", err)
	}

	r.logger.Debug("measurement recorded",
		"device_id", m.DeviceID,
		"energy1", m.Energy1,
		"energy2", m.Energy2,
	)

	if r.mirror != nil {
		r.mirror.MirrorMeasurement(m)
	}
	if r.broadcaster != nil {
		r.broadcaster.BroadcastMeasurement(m)
	}
	return nil
}

// Latest returns the most recent measurement for a device.
func (r *Recorder) Latest(ctx context.Context, deviceID string) (*Measurement, error) {
	return r.repo.LatestByDevice(ctx, deviceID)
}

// History returns recent measurements for a device, newest first.
func (r *Recorder) History(ctx context.Context, deviceID string, limit int) ([]Measurement, error) {
	return r.repo.HistoryByDevice(ctx, deviceID, limit)
}
