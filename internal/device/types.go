package device

import (
	"fmt"
	"math"
)

// Device is the local representation of one smart-speaker on the LAN.
//
// Identity comes from the discovery pass; alarms, timers, volume and DND are
// rewritten in place by poll cycles. A device missing an IP address or auth
// token is never polled and sits in the registry as unavailable until the
// next discovery pass supplies what is missing.
type Device struct {
	// Identity
	ID   string `json:"device_id"`
	Name string `json:"name"`

	// Network and auth. Nil IPAddress means the device was discovered via
	// the cloud graph but could not be located on the LAN. AuthToken is
	// cleared fleet-wide when any device reports 401.
	IPAddress *string `json:"ip_address,omitempty"`
	AuthToken *string `json:"-"`

	// Hardware is the capability hint reported by discovery (e.g. the
	// model tag). Used for diagnostics when a device turns out not to
	// support the assistant endpoints.
	Hardware *string `json:"hardware,omitempty"`

	// Available reflects the outcome of the most recent contact attempt.
	Available bool `json:"available"`

	// Polled state. Alarms and Timers are replaced wholesale each cycle,
	// never patched.
	Alarms       []Alarm `json:"alarms"`
	Timers       []Timer `json:"timers"`
	DoNotDisturb bool    `json:"do_not_disturb"`
	AlarmVolume  int     `json:"alarm_volume"`

	// BluetoothPeers is the latest advertisement capture batch seen in
	// this device's vicinity. Rebuilt every batch, never merged.
	BluetoothPeers []BluetoothPeer `json:"bluetooth_peers,omitempty"`
}

// Pollable reports whether the device has everything a poll cycle needs:
// an IP address and a non-empty auth token.
func (d *Device) Pollable() bool {
	return d.IPAddress != nil && *d.IPAddress != "" &&
		d.AuthToken != nil && *d.AuthToken != ""
}

// DeepCopy creates a complete independent copy of the Device.
// Slice fields are cloned so modifications to the copy do not affect
// the original. This is essential for registry snapshot isolation.
func (d *Device) DeepCopy() *Device {
	if d == nil {
		return nil
	}

	cpy := *d // Shallow copy of value fields

	if d.Alarms != nil {
		cpy.Alarms = make([]Alarm, len(d.Alarms))
		copy(cpy.Alarms, d.Alarms)
	}
	if d.Timers != nil {
		cpy.Timers = make([]Timer, len(d.Timers))
		copy(cpy.Timers, d.Timers)
	}
	if d.BluetoothPeers != nil {
		cpy.BluetoothPeers = make([]BluetoothPeer, len(d.BluetoothPeers))
		copy(cpy.BluetoothPeers, d.BluetoothPeers)
	}

	// Pointer fields (*string) don't need deep copy because strings are
	// immutable in Go

	return &cpy
}

// Alarm is one alarm as reported by a device. Immutable once constructed;
// each poll replaces the whole list.
type Alarm struct {
	ID         string      `json:"alarm_id"`
	FireTime   int64       `json:"fire_time"` // epoch seconds
	Status     AlarmStatus `json:"status"`
	Label      *string     `json:"label,omitempty"`
	Recurrence *string     `json:"recurrence,omitempty"`
}

// NewAlarm builds an Alarm from wire values. The device reports fire_time
// in milliseconds; it is stored as rounded epoch seconds. An unrecognised
// status code rejects the whole record.
func NewAlarm(id string, fireTimeMS int64, statusCode int, label, recurrence *string) (Alarm, error) {
	status, err := ParseAlarmStatus(statusCode)
	if err != nil {
		return Alarm{}, err
	}
	return Alarm{
		ID:         id,
		FireTime:   MillisToSeconds(fireTimeMS),
		Status:     status,
		Label:      label,
		Recurrence: recurrence,
	}, nil
}

// Timer is one timer as reported by a device. A paused timer has no fire
// time. Same replace-wholesale lifecycle as Alarm.
type Timer struct {
	ID       string      `json:"timer_id"`
	FireTime *int64      `json:"fire_time,omitempty"` // epoch seconds, nil when paused
	Duration string      `json:"duration"`            // original duration as H:MM:SS
	Status   TimerStatus `json:"status"`
	Label    *string     `json:"label,omitempty"`
}

// NewTimer builds a Timer from wire values. fireTimeMS is nil for paused
// timers. durationMS is the timer's original duration in milliseconds.
func NewTimer(id string, fireTimeMS *int64, durationMS int64, statusCode int, label *string) (Timer, error) {
	status, err := ParseTimerStatus(statusCode)
	if err != nil {
		return Timer{}, err
	}
	t := Timer{
		ID:       id,
		Duration: formatDuration(MillisToSeconds(durationMS)),
		Status:   status,
		Label:    label,
	}
	if fireTimeMS != nil {
		s := MillisToSeconds(*fireTimeMS)
		t.FireTime = &s
	}
	return t, nil
}

// BluetoothPeer is one captured advertisement near a device. Ephemeral:
// rebuilt on every capture batch, never merged with prior state.
type BluetoothPeer struct {
	MACAddress       string  `json:"mac_address"`
	RSSI             int     `json:"rssi"` // higher = closer
	DeviceClass      int     `json:"device_class"`
	DeviceType       int     `json:"device_type"`
	ExpectedProfiles int     `json:"expected_profiles"`
	Name             *string `json:"name,omitempty"`
}

// AlarmStatus is the alarm state reported by device firmware.
type AlarmStatus int

// Alarm status codes as emitted on the wire.
const (
	AlarmStatusNone AlarmStatus = iota
	AlarmStatusSet
	AlarmStatusRinging
	AlarmStatusSnoozed
	AlarmStatusInactive
	AlarmStatusMissed
)

// ParseAlarmStatus maps a wire status code onto AlarmStatus.
// Out-of-range codes are a hard parse error so unrecognised firmware
// states surface instead of being misrepresented.
func ParseAlarmStatus(code int) (AlarmStatus, error) {
	if code < int(AlarmStatusNone) || code > int(AlarmStatusMissed) {
		return 0, fmt.Errorf("%w: alarm status %d", ErrUnknownStatus, code)
	}
	return AlarmStatus(code), nil
}

// Dormant reports whether the alarm will not fire in its current state
// and must never surface as the next alarm.
func (s AlarmStatus) Dormant() bool {
	return s == AlarmStatusInactive || s == AlarmStatusMissed
}

func (s AlarmStatus) String() string {
	switch s {
	case AlarmStatusNone:
		return "none"
	case AlarmStatusSet:
		return "set"
	case AlarmStatusRinging:
		return "ringing"
	case AlarmStatusSnoozed:
		return "snoozed"
	case AlarmStatusInactive:
		return "inactive"
	case AlarmStatusMissed:
		return "missed"
	default:
		return fmt.Sprintf("alarm_status(%d)", int(s))
	}
}

// TimerStatus is the timer state reported by device firmware.
type TimerStatus int

// Timer status codes as emitted on the wire.
const (
	TimerStatusNone TimerStatus = iota
	TimerStatusSet
	TimerStatusPaused
	TimerStatusRinging
)

// ParseTimerStatus maps a wire status code onto TimerStatus.
// Out-of-range codes are a hard parse error, matching ParseAlarmStatus.
func ParseTimerStatus(code int) (TimerStatus, error) {
	if code < int(TimerStatusNone) || code > int(TimerStatusRinging) {
		return 0, fmt.Errorf("%w: timer status %d", ErrUnknownStatus, code)
	}
	return TimerStatus(code), nil
}

func (s TimerStatus) String() string {
	switch s {
	case TimerStatusNone:
		return "none"
	case TimerStatusSet:
		return "set"
	case TimerStatusPaused:
		return "paused"
	case TimerStatusRinging:
		return "ringing"
	default:
		return fmt.Sprintf("timer_status(%d)", int(s))
	}
}

// Volume bounds for the alarm volume percentage.
const (
	MinVolume = 0
	MaxVolume = 100
)

// MillisToSeconds converts a millisecond timestamp or span to whole
// seconds, rounding to nearest.
func MillisToSeconds(ms int64) int64 {
	return int64(math.Round(float64(ms) / 1000))
}

// VolumeToPercent converts the wire volume fraction [0.0, 1.0] to an
// integer percentage. The wire value is a float with limited precision,
// so it is rounded to nearest rather than truncated. The result is
// clamped to [0, 100].
func VolumeToPercent(fraction float64) int {
	pct := int(math.Round(fraction * 100))
	if pct < MinVolume {
		return MinVolume
	}
	if pct > MaxVolume {
		return MaxVolume
	}
	return pct
}

// VolumeToFraction converts an integer percentage to the wire fraction.
// The input is already an integer, no rounding is needed.
func VolumeToFraction(percent int) float64 {
	return float64(percent) / 100
}

// formatDuration renders a span of whole seconds as H:MM:SS, with
// unpadded hours. Device timers are sub-day so no day component is
// produced.
func formatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
