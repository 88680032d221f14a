package recharge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/enerlink/enerlink-core/internal/infrastructure/config"
	"github.com/enerlink/enerlink-core/internal/infrastructure/logging"
	"github.com/enerlink/enerlink-core/internal/telemetry"
)

var (
	// ErrInvalidAmount is returned when the recharge amount is not positive.
	ErrInvalidAmount = errors.New("recharge amount must be positive")
)

// Service applies prepaid energy credits to a device's meter.
//
// A recharge reads the device's latest measurement, adds the purchased
// amount to the device's billing channel, and records the result as a new
// measurement. Concurrent recharges for the same device are serialized so
// no credit is lost to a read-modify-write race; different devices
// proceed independently.
type Service struct {
	recorder *telemetry.Recorder
	cfg      config.RechargeConfig
	logger   *logging.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a recharge service.
func NewService(recorder *telemetry.Recorder, cfg config.RechargeConfig, logger *logging.Logger) *Service {
	return &Service{
		recorder: recorder,
		cfg:      cfg,
		logger:   logger.With("component", "recharge"),
		locks:    make(map[string]*sync.Mutex),
	}
}

// deviceLock returns the mutex serializing recharges for one device.
func (s *Service) deviceLock(deviceID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[deviceID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[deviceID] = lock
	}
	return lock
}

// Recharge credits amount to the device's billing channel and returns the
// measurement recorded for the credit. A device with no telemetry history
// starts from a zero baseline.
func (s *Service) Recharge(ctx context.Context, deviceID string, amount float64) (*telemetry.Measurement, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("device id is required")
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	lock := s.deviceLock(deviceID)
	lock.Lock()
	defer lock.Unlock()

	baseline, err := s.recorder.Latest(ctx, deviceID)
	switch {
	case errors.Is(err, telemetry.ErrNoMeasurements):
		baseline = &telemetry.Measurement{DeviceID: deviceID}
	case err != nil:
		return nil, fmt.Errorf("reading recharge baseline: %w", err)
	}

	m := &telemetry.Measurement{
		DeviceID:     deviceID,
		Voltage:      baseline.Voltage,
		Current1:     baseline.Current1,
		Current2:     baseline.Current2,
		Energy1:      baseline.Energy1,
		Energy2:      baseline.Energy2,
		Relay1Status: baseline.Relay1Status,
		Relay2Status: baseline.Relay2Status,
		CreatedAt:    time.Now().UTC(),
	}

	channel := s.cfg.ChannelFor(deviceID)
	switch channel {
	case 2:
		m.Energy2 += amount
	default:
		m.Energy1 += amount
	}

	if err := s.recorder.Record(ctx, m); err != nil {
		return nil, fmt.Errorf("recording recharge: %w", err)
	}

	s.logger.Info("energy recharged",
		"device_id", deviceID,
		"amount", amount,
		"channel", channel,
		"energy1", m.Energy1,
		"energy2", m.Energy2,
	)
	return m, nil
}
