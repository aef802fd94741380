// Package influxdb provides InfluxDB connectivity for Castfleet Core.
//
// It wraps the official influxdb-client-go v2 library with Castfleet-specific
// patterns for connection management, telemetry writing, and health monitoring.
//
// # Purpose
//
// This package handles time-series data storage for:
//   - Per-device availability and state counts after each poll cycle
//   - Bluetooth peer signal strength for presence graphs
//   - Poll cycle durations for fleet health
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "castfleet",
//	    Bucket: "fleet",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteCycleDuration(850*time.Millisecond, 12, 10)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
package influxdb
