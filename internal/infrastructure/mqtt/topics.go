package mqtt

import "fmt"

// Topic prefixes for the Castfleet MQTT namespace.
//
// Device topics carry retained fleet state; command topics carry
// user-initiated actions into the engine.
const (
	// TopicPrefix is the base for all Castfleet topics.
	TopicPrefix = "castfleet"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "castfleet/system"
)

// Topics provides builders for Castfleet MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.DeviceState("a1b2c3")
//	// Returns: "castfleet/device/a1b2c3/state"
type Topics struct{}

// DeviceState returns the retained state topic for one speaker. The
// payload is the device's full aggregated state after a poll cycle.
//
// Example: castfleet/device/a1b2c3/state
func (Topics) DeviceState(deviceID string) string {
	return fmt.Sprintf("%s/device/%s/state", TopicPrefix, deviceID)
}

// Command returns the topic a caller publishes to for one device action.
// Actions: set_volume, set_do_not_disturb, delete_item, reboot.
//
// Example: castfleet/command/a1b2c3/set_volume
func (Topics) Command(deviceID, action string) string {
	return fmt.Sprintf("%s/command/%s/%s", TopicPrefix, deviceID, action)
}

// BluetoothCapture returns the topic an external radio capture publishes
// advertisement batches to for one speaker's vicinity. The engine only
// consumes these; it never drives the radio itself.
//
// Example: castfleet/bluetooth/a1b2c3/capture
func (Topics) BluetoothCapture(deviceID string) string {
	return fmt.Sprintf("%s/bluetooth/%s/capture", TopicPrefix, deviceID)
}

// AllBluetoothCaptures returns a pattern matching every capture batch.
//
// Pattern: castfleet/bluetooth/+/capture
func (Topics) AllBluetoothCaptures() string {
	return fmt.Sprintf("%s/bluetooth/+/capture", TopicPrefix)
}

// SystemStatus returns the engine online/offline status topic. Also used
// as the LWT topic so subscribers see crashes.
//
// Example: castfleet/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllCommands returns a pattern matching every command for every device.
//
// Pattern: castfleet/command/+/+
func (Topics) AllCommands() string {
	return fmt.Sprintf("%s/command/+/+", TopicPrefix)
}

// AllDeviceStates returns a pattern matching all retained device states.
//
// Pattern: castfleet/device/+/state
func (Topics) AllDeviceStates() string {
	return fmt.Sprintf("%s/device/+/state", TopicPrefix)
}
