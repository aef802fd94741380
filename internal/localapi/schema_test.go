package localapi

import (
	"errors"
	"strings"
	"testing"

	"github.com/castfleet/castfleet-core/internal/device"
)

func TestParseAlarmsResponse(t *testing.T) {
	body := []byte(`{
		"alarm": [
			{"id": "alarm/` + strings.Repeat("a", 36) + `", "fire_time": 1618000000000, "status": 1, "label": "wake up"},
			{"id": "alarm/` + strings.Repeat("b", 36) + `", "fire_time": 1618100000000, "status": 2, "recurrence": "0,1,2,3,4"}
		],
		"timer": [
			{"id": "timer/` + strings.Repeat("c", 36) + `", "fire_time": 1618000090000, "original_duration": 90000, "status": 1},
			{"id": "timer/` + strings.Repeat("d", 36) + `", "original_duration": 600000, "status": 2}
		]
	}`)

	got, err := ParseAlarmsResponse(body)
	if err != nil {
		t.Fatalf("ParseAlarmsResponse error = %v", err)
	}
	if len(got.Rejected) != 0 {
		t.Fatalf("Rejected = %v, want none", got.Rejected)
	}

	if len(got.Alarms) != 2 {
		t.Fatalf("got %d alarms, want 2", len(got.Alarms))
	}
	if got.Alarms[0].FireTime != 1618000000 {
		t.Errorf("alarm fire time = %d, want milliseconds converted to seconds", got.Alarms[0].FireTime)
	}
	if got.Alarms[0].Label == nil || *got.Alarms[0].Label != "wake up" {
		t.Errorf("alarm label not carried: %+v", got.Alarms[0])
	}

	if len(got.Timers) != 2 {
		t.Fatalf("got %d timers, want 2", len(got.Timers))
	}
	if got.Timers[0].Duration != "0:01:30" {
		t.Errorf("timer duration = %q, want 0:01:30", got.Timers[0].Duration)
	}
	if got.Timers[1].FireTime != nil {
		t.Errorf("paused timer has fire time %v, want nil", *got.Timers[1].FireTime)
	}
	if got.Timers[1].Status != device.TimerStatusPaused {
		t.Errorf("paused timer status = %v", got.Timers[1].Status)
	}
}

func TestParseAlarmsResponse_MissingKeys(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"only alarms", `{"alarm": []}`},
		{"only timers", `{"timer": []}`},
		{"not json", `hello`},
		{"empty body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAlarmsResponse([]byte(tt.body))
			if !errors.Is(err, ErrMalformedResponse) {
				t.Errorf("error = %v, want ErrMalformedResponse", err)
			}
		})
	}
}

func TestParseAlarmsResponse_RejectsUnknownStatusRecord(t *testing.T) {
	body := []byte(`{
		"alarm": [
			{"id": "alarm/good", "fire_time": 1000, "status": 1},
			{"id": "alarm/bad", "fire_time": 2000, "status": 77}
		],
		"timer": []
	}`)

	got, err := ParseAlarmsResponse(body)
	if err != nil {
		t.Fatalf("ParseAlarmsResponse error = %v", err)
	}
	if len(got.Alarms) != 1 || got.Alarms[0].ID != "alarm/good" {
		t.Errorf("valid sibling not kept: %+v", got.Alarms)
	}
	if len(got.Rejected) != 1 {
		t.Fatalf("Rejected = %v, want one rejection", got.Rejected)
	}
	if !errors.Is(got.Rejected[0], device.ErrUnknownStatus) {
		t.Errorf("rejection = %v, want ErrUnknownStatus", got.Rejected[0])
	}
}

func TestParseVolumeResponse(t *testing.T) {
	got, err := ParseVolumeResponse([]byte(`{"volume": 0.4}`))
	if err != nil {
		t.Fatalf("ParseVolumeResponse error = %v", err)
	}
	if got != 40 {
		t.Errorf("volume = %d, want 40", got)
	}

	if _, err := ParseVolumeResponse([]byte(`{}`)); !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("missing volume key error = %v, want ErrMalformedResponse", err)
	}
}

func TestParseNotificationsResponse_Inverted(t *testing.T) {
	dnd, err := ParseNotificationsResponse([]byte(`{"notifications_enabled": true}`))
	if err != nil {
		t.Fatalf("ParseNotificationsResponse error = %v", err)
	}
	if dnd {
		t.Error("notifications enabled should mean DND off")
	}

	dnd, err = ParseNotificationsResponse([]byte(`{"notifications_enabled": false}`))
	if err != nil {
		t.Fatalf("ParseNotificationsResponse error = %v", err)
	}
	if !dnd {
		t.Error("notifications disabled should mean DND on")
	}
}

func TestParseDeleteResponse(t *testing.T) {
	ok, err := ParseDeleteResponse([]byte(`{"success": true}`))
	if err != nil || !ok {
		t.Errorf("ParseDeleteResponse = %v, %v; want true, nil", ok, err)
	}

	if _, err := ParseDeleteResponse([]byte(`{"deleted": 1}`)); !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("missing success key error = %v, want ErrMalformedResponse", err)
	}
}

func TestValidateItemID(t *testing.T) {
	valid := "alarm/" + strings.Repeat("f", 36)

	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid alarm id", valid, false},
		{"valid timer id", "timer/" + strings.Repeat("0", 36), false},
		{"too short", "alarm/" + strings.Repeat("a", 30), true},
		{"too long", "alarm/" + strings.Repeat("a", 40), true},
		{"wrong prefix", "clock/" + strings.Repeat("a", 36), true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItemID(tt.id)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidItemID) {
					t.Errorf("error = %v, want ErrInvalidItemID", err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateItemID(%q) = %v, want nil", tt.id, err)
			}
		})
	}
}

func TestItemKind(t *testing.T) {
	if got := ItemKind("timer/" + strings.Repeat("a", 36)); got != "timer" {
		t.Errorf("ItemKind = %q, want timer", got)
	}
	if got := ItemKind("alarm/" + strings.Repeat("a", 36)); got != "alarm" {
		t.Errorf("ItemKind = %q, want alarm", got)
	}
}

func TestVolumePayloadShape(t *testing.T) {
	payload, ok := VolumePayload(55).(map[string]float64)
	if !ok {
		t.Fatalf("VolumePayload is %T", VolumePayload(55))
	}
	if payload["volume"] != 0.55 {
		t.Errorf("volume fraction = %f, want 0.55", payload["volume"])
	}
}
