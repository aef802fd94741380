package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/castfleet/castfleet-core/internal/device"
)

// WriteDeviceState records one speaker's aggregated state after a poll
// cycle. The write is non-blocking; data is batched and sent
// asynchronously.
//
// Alarm and timer counts are written rather than the items themselves:
// the time series answers "how loaded was the fleet", the retained MQTT
// state topic carries the detail.
func (c *Client) WriteDeviceState(dev *device.Device) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_state",
		map[string]string{
			"device_id":   dev.ID,
			"device_name": dev.Name,
		},
		map[string]interface{}{
			"available":      dev.Available,
			"alarm_count":    len(dev.Alarms),
			"timer_count":    len(dev.Timers),
			"alarm_volume":   dev.AlarmVolume,
			"do_not_disturb": dev.DoNotDisturb,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePeerRSSI records the signal strength of one captured bluetooth
// advertisement near a speaker. Useful for room-level presence graphs.
func (c *Client) WritePeerRSSI(deviceID, peerMAC string, rssi int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"bluetooth_peer",
		map[string]string{
			"device_id": deviceID,
			"peer_mac":  peerMAC,
		},
		map[string]interface{}{
			"rssi": rssi,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteCycleDuration records how long one poll cycle took across the
// fleet, tagged with the device counts involved.
func (c *Client) WriteCycleDuration(duration time.Duration, devices, pollable int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"poll_cycle",
		nil,
		map[string]interface{}{
			"duration_ms": duration.Milliseconds(),
			"devices":     devices,
			"pollable":    pollable,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Example:
//
//	client.WritePoint("engine_stats",
//	    map[string]string{"host": "core-01"},
//	    map[string]interface{}{"goroutines": 42})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
