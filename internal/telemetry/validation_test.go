package telemetry

import (
	"errors"
	"testing"
	"time"
)

func f64(v float64) *float64 { return &v }
func boolPtr(v bool) *bool   { return &v }
func strPtr(v string) *string {
	return &v
}

// basePayload returns a minimal valid payload using the combined energy field.
func basePayload() Payload {
	return Payload{
		DeviceID: "esp32-001",
		Voltage:  f64(230.5),
		Current1: f64(1.5),
		Current2: f64(0.5),
		Energy:   f64(120.0),
	}
}

// TestPayloadMeasurement_Valid verifies conversion and defaulting for a minimal payload.
func TestPayloadMeasurement_Valid(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	p := basePayload()

	m, err := p.Measurement(now)
	if err != nil {
		t.Fatalf("Measurement() error = %v", err)
	}
	if m.DeviceID != "esp32-001" {
		t.Errorf("DeviceID = %q, want %q", m.DeviceID, "esp32-001")
	}
	if m.Voltage != 230.5 {
		t.Errorf("Voltage = %v, want 230.5", m.Voltage)
	}
	if m.Energy1 != 120.0 || m.Energy2 != 120.0 {
		t.Errorf("energy = (%v, %v), want combined value on both channels", m.Energy1, m.Energy2)
	}
	if m.Relay1Status || m.Relay2Status {
		t.Error("relay statuses should default to false")
	}
	if !m.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", m.CreatedAt, now)
	}
}

// TestPayloadMeasurement_EnergyVariants covers the single-vs-dual channel reporting rules.
func TestPayloadMeasurement_EnergyVariants(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Payload)
		wantErr     bool
		wantEnergy1 float64
		wantEnergy2 float64
	}{
		{
			name:        "combined energy fills both channels",
			mutate:      func(p *Payload) {},
			wantEnergy1: 120.0,
			wantEnergy2: 120.0,
		},
		{
			name: "per-channel values",
			mutate: func(p *Payload) {
				p.Energy = nil
				p.Energy1 = f64(80.0)
				p.Energy2 = f64(40.0)
			},
			wantEnergy1: 80.0,
			wantEnergy2: 40.0,
		},
		{
			name: "per-channel wins over combined",
			mutate: func(p *Payload) {
				p.Energy1 = f64(80.0)
				p.Energy2 = f64(40.0)
			},
			wantEnergy1: 80.0,
			wantEnergy2: 40.0,
		},
		{
			name: "channel 1 only falls back to combined for channel 2",
			mutate: func(p *Payload) {
				p.Energy1 = f64(80.0)
			},
			wantEnergy1: 80.0,
			wantEnergy2: 120.0,
		},
		{
			name: "no energy fields",
			mutate: func(p *Payload) {
				p.Energy = nil
			},
			wantErr: true,
		},
		{
			name: "only one channel without combined",
			mutate: func(p *Payload) {
				p.Energy = nil
				p.Energy1 = f64(80.0)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := basePayload()
			tt.mutate(&p)

			m, err := p.Measurement(time.Now())
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPayload) {
					t.Fatalf("Measurement() error = %v, want ErrInvalidPayload", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Measurement() error = %v", err)
			}
			if m.Energy1 != tt.wantEnergy1 || m.Energy2 != tt.wantEnergy2 {
				t.Errorf("energy = (%v, %v), want (%v, %v)", m.Energy1, m.Energy2, tt.wantEnergy1, tt.wantEnergy2)
			}
		})
	}
}

// TestPayloadMeasurement_RequiredFields verifies each required field is enforced.
func TestPayloadMeasurement_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Payload)
	}{
		{"missing deviceId", func(p *Payload) { p.DeviceID = "" }},
		{"missing voltage", func(p *Payload) { p.Voltage = nil }},
		{"missing current1", func(p *Payload) { p.Current1 = nil }},
		{"missing current2", func(p *Payload) { p.Current2 = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := basePayload()
			tt.mutate(&p)

			if _, err := p.Measurement(time.Now()); !errors.Is(err, ErrInvalidPayload) {
				t.Errorf("Measurement() error = %v, want ErrInvalidPayload", err)
			}
		})
	}
}

// TestPayloadMeasurement_Timestamp verifies timestamp parsing and defaulting.
func TestPayloadMeasurement_Timestamp(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	t.Run("explicit RFC3339 timestamp", func(t *testing.T) {
		p := basePayload()
		p.Timestamp = strPtr("2026-08-15T09:30:00Z")

		m, err := p.Measurement(now)
		if err != nil {
			t.Fatalf("Measurement() error = %v", err)
		}
		want := time.Date(2026, 8, 15, 9, 30, 0, 0, time.UTC)
		if !m.CreatedAt.Equal(want) {
			t.Errorf("CreatedAt = %v, want %v", m.CreatedAt, want)
		}
	})

	t.Run("offset timestamp normalised to UTC", func(t *testing.T) {
		p := basePayload()
		p.Timestamp = strPtr("2026-08-15T11:30:00+02:00")

		m, err := p.Measurement(now)
		if err != nil {
			t.Fatalf("Measurement() error = %v", err)
		}
		want := time.Date(2026, 8, 15, 9, 30, 0, 0, time.UTC)
		if !m.CreatedAt.Equal(want) {
			t.Errorf("CreatedAt = %v, want %v", m.CreatedAt, want)
		}
	})

	t.Run("fractional seconds accepted", func(t *testing.T) {
		p := basePayload()
		p.Timestamp = strPtr("2026-08-15T09:30:00.386738925Z")

		m, err := p.Measurement(now)
		if err != nil {
			t.Fatalf("Measurement() error = %v", err)
		}
		want := time.Date(2026, 8, 15, 9, 30, 0, 386738925, time.UTC)
		if !m.CreatedAt.Equal(want) {
			t.Errorf("CreatedAt = %v, want %v", m.CreatedAt, want)
		}
	})

	t.Run("malformed timestamp rejected", func(t *testing.T) {
		p := basePayload()
		p.Timestamp = strPtr("15/08/2026 12:00")

		if _, err := p.Measurement(now); !errors.Is(err, ErrInvalidPayload) {
			t.Errorf("Measurement() error = %v, want ErrInvalidPayload", err)
		}
	})
}

// TestPayloadMeasurement_Relays verifies explicit relay states are preserved.
func TestPayloadMeasurement_Relays(t *testing.T) {
	p := basePayload()
	p.Relay1Status = boolPtr(true)
	p.Relay2Status = boolPtr(false)

	m, err := p.Measurement(time.Now())
	if err != nil {
		t.Fatalf("Measurement() error = %v", err)
	}
	if !m.Relay1Status {
		t.Error("Relay1Status = false, want true")
	}
	if m.Relay2Status {
		t.Error("Relay2Status = true, want false")
	}
}
