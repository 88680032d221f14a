package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/enerlink/enerlink-core/internal/telemetry"
)

// MirrorMeasurement writes a device measurement to the time-series bucket.
//
// The write is non-blocking; points are batched and sent asynchronously.
// A disconnected client silently drops the point: the mirror is an
// analytics copy, SQLite remains the system of record.
func (c *Client) MirrorMeasurement(m *telemetry.Measurement) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"measurements",
		map[string]string{
			"device_id": m.DeviceID,
		},
		map[string]interface{}{
			"voltage":       m.Voltage,
			"current1":      m.Current1,
			"current2":      m.Current2,
			"energy1":       m.Energy1,
			"energy2":       m.Energy2,
			"relay1_status": m.Relay1Status,
			"relay2_status": m.Relay2Status,
		},
		m.CreatedAt,
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit MirrorMeasurement, such as
// gateway runtime statistics.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
