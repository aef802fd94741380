package localapi

import (
	"encoding/json"
	"fmt"

	"github.com/castfleet/castfleet-core/internal/device"
)

// Per-endpoint response schemas. Required fields are pointers so a
// missing key is distinguishable from a zero value; a missing required
// field produces ErrMalformedResponse rather than a silent default.

// alarmPayload is the wire form of one alarm in the alarms response.
type alarmPayload struct {
	ID         *string `json:"id"`
	FireTime   *int64  `json:"fire_time"` // milliseconds
	Status     *int    `json:"status"`
	Label      *string `json:"label"`
	Recurrence *string `json:"recurrence"`
}

// timerPayload is the wire form of one timer in the alarms response.
// fire_time is absent for paused timers.
type timerPayload struct {
	ID               *string `json:"id"`
	FireTime         *int64  `json:"fire_time"` // milliseconds
	OriginalDuration *int64  `json:"original_duration"`
	Status           *int    `json:"status"`
	Label            *string `json:"label"`
}

// alarmsEnvelope is the success body of GET setup/assistant/alarms.
// Both keys must be present; a body with either missing is malformed.
type alarmsEnvelope struct {
	Alarm *[]alarmPayload `json:"alarm"`
	Timer *[]timerPayload `json:"timer"`
}

// AlarmsTimers is the parsed result of the alarms endpoint. Records
// carrying unknown status codes are rejected individually; their errors
// are collected in Rejected while valid siblings are kept.
type AlarmsTimers struct {
	Alarms   []device.Alarm
	Timers   []device.Timer
	Rejected []error
}

// ParseAlarmsResponse decodes the alarms endpoint body. Returns
// ErrMalformedResponse when the body is not the expected envelope.
func ParseAlarmsResponse(body []byte) (AlarmsTimers, error) {
	var env alarmsEnvelope
	if len(body) == 0 {
		return AlarmsTimers{}, fmt.Errorf("%w: empty alarms body", ErrMalformedResponse)
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return AlarmsTimers{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if env.Alarm == nil || env.Timer == nil {
		return AlarmsTimers{}, fmt.Errorf("%w: alarms body missing alarm/timer keys", ErrMalformedResponse)
	}

	out := AlarmsTimers{
		Alarms: make([]device.Alarm, 0, len(*env.Alarm)),
		Timers: make([]device.Timer, 0, len(*env.Timer)),
	}

	for _, p := range *env.Alarm {
		if p.ID == nil || p.FireTime == nil || p.Status == nil {
			out.Rejected = append(out.Rejected,
				fmt.Errorf("%w: alarm record missing required fields", ErrMalformedResponse))
			continue
		}
		alarm, err := device.NewAlarm(*p.ID, *p.FireTime, *p.Status, p.Label, p.Recurrence)
		if err != nil {
			out.Rejected = append(out.Rejected, fmt.Errorf("alarm %s: %w", *p.ID, err))
			continue
		}
		out.Alarms = append(out.Alarms, alarm)
	}

	for _, p := range *env.Timer {
		if p.ID == nil || p.OriginalDuration == nil || p.Status == nil {
			out.Rejected = append(out.Rejected,
				fmt.Errorf("%w: timer record missing required fields", ErrMalformedResponse))
			continue
		}
		timer, err := device.NewTimer(*p.ID, p.FireTime, *p.OriginalDuration, *p.Status, p.Label)
		if err != nil {
			out.Rejected = append(out.Rejected, fmt.Errorf("timer %s: %w", *p.ID, err))
			continue
		}
		out.Timers = append(out.Timers, timer)
	}

	return out, nil
}

// volumeEnvelope is the body of POST setup/assistant/alarms/volume.
type volumeEnvelope struct {
	Volume *float64 `json:"volume"`
}

// ParseVolumeResponse decodes the alarm volume body and converts the
// wire fraction to an integer percentage.
func ParseVolumeResponse(body []byte) (int, error) {
	var env volumeEnvelope
	if len(body) == 0 {
		return 0, fmt.Errorf("%w: empty volume body", ErrMalformedResponse)
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if env.Volume == nil {
		return 0, fmt.Errorf("%w: volume body missing volume key", ErrMalformedResponse)
	}
	return device.VolumeToPercent(*env.Volume), nil
}

// notificationsEnvelope is the body of POST setup/assistant/notifications.
type notificationsEnvelope struct {
	NotificationsEnabled *bool `json:"notifications_enabled"`
}

// ParseNotificationsResponse decodes the notifications body into a
// do-not-disturb flag. The setting is inverted on the device:
// notifications enabled means DND is off.
func ParseNotificationsResponse(body []byte) (bool, error) {
	var env notificationsEnvelope
	if len(body) == 0 {
		return false, fmt.Errorf("%w: empty notifications body", ErrMalformedResponse)
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return false, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if env.NotificationsEnabled == nil {
		return false, fmt.Errorf("%w: notifications body missing notifications_enabled key", ErrMalformedResponse)
	}
	return !*env.NotificationsEnabled, nil
}

// deleteEnvelope is the body of POST setup/assistant/alarms/delete.
type deleteEnvelope struct {
	Success *bool `json:"success"`
}

// ParseDeleteResponse decodes the delete confirmation.
func ParseDeleteResponse(body []byte) (bool, error) {
	var env deleteEnvelope
	if len(body) == 0 {
		return false, fmt.Errorf("%w: empty delete body", ErrMalformedResponse)
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return false, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if env.Success == nil {
		return false, fmt.Errorf("%w: delete body missing success key", ErrMalformedResponse)
	}
	return *env.Success, nil
}

// Request payload builders.

// VolumePayload is the write body for the alarm volume endpoint. The
// wire value is a fraction in [0.0, 1.0].
func VolumePayload(percent int) any {
	return map[string]float64{"volume": device.VolumeToFraction(percent)}
}

// NotificationsPayload is the write body for the notifications endpoint.
// Inverted on device: enabling DND disables notifications.
func NotificationsPayload(dndEnabled bool) any {
	return map[string]bool{"notifications_enabled": !dndEnabled}
}

// DeletePayload is the write body for the delete endpoint.
func DeletePayload(itemID string) any {
	return map[string][]string{"ids": {itemID}}
}

// RebootPayload is the write body for the reboot endpoint.
// "now" reboots; "fdr" would factory reset and is deliberately not
// exposed.
func RebootPayload() any {
	return map[string]string{"params": "now"}
}

// Item id shape: "alarm/" or "timer/" followed by a 36-char identifier,
// total length exactly 42.
const itemIDLength = 42

// Item id prefixes.
const (
	ItemPrefixAlarm = "alarm/"
	ItemPrefixTimer = "timer/"
)

// ValidateItemID checks the shape of an alarm/timer id before it is sent
// in a delete request. Malformed ids are rejected locally without any
// network call.
func ValidateItemID(id string) error {
	if len(id) != itemIDLength {
		return fmt.Errorf("%w: %q has length %d, want %d", ErrInvalidItemID, id, len(id), itemIDLength)
	}
	if !hasItemPrefix(id) {
		return fmt.Errorf("%w: %q must start with %q or %q", ErrInvalidItemID, id, ItemPrefixAlarm, ItemPrefixTimer)
	}
	return nil
}

// ItemKind returns "alarm" or "timer" for a valid item id, for log
// context.
func ItemKind(id string) string {
	if len(id) >= len(ItemPrefixTimer) && id[:len(ItemPrefixTimer)] == ItemPrefixTimer {
		return "timer"
	}
	return "alarm"
}

func hasItemPrefix(id string) bool {
	return id[:len(ItemPrefixAlarm)] == ItemPrefixAlarm ||
		id[:len(ItemPrefixTimer)] == ItemPrefixTimer
}
