// Package influxdb provides an optional time-series mirror of telemetry.
//
// SQLite is the system of record; when the mirror is enabled every stored
// measurement is also written to an InfluxDB bucket for long-retention
// analytics and Grafana dashboards. Writes are batched and asynchronous,
// and mirror failures never affect ingestion.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    // ErrDisabled when switched off in config
//	}
//	defer client.Close()
//
//	client.MirrorMeasurement(m)
package influxdb
