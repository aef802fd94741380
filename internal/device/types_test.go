package device

import (
	"errors"
	"testing"
)

func TestParseAlarmStatus(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		want    AlarmStatus
		wantErr bool
	}{
		{"none", 0, AlarmStatusNone, false},
		{"set", 1, AlarmStatusSet, false},
		{"ringing", 2, AlarmStatusRinging, false},
		{"snoozed", 3, AlarmStatusSnoozed, false},
		{"inactive", 4, AlarmStatusInactive, false},
		{"missed", 5, AlarmStatusMissed, false},
		{"negative", -1, 0, true},
		{"out of range", 6, 0, true},
		{"far out of range", 99, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAlarmStatus(tt.code)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAlarmStatus(%d) expected error, got %v", tt.code, got)
				}
				if !errors.Is(err, ErrUnknownStatus) {
					t.Errorf("error = %v, want ErrUnknownStatus", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAlarmStatus(%d) error = %v", tt.code, err)
			}
			if got != tt.want {
				t.Errorf("ParseAlarmStatus(%d) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestParseTimerStatus(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		want    TimerStatus
		wantErr bool
	}{
		{"none", 0, TimerStatusNone, false},
		{"set", 1, TimerStatusSet, false},
		{"paused", 2, TimerStatusPaused, false},
		{"ringing", 3, TimerStatusRinging, false},
		{"out of range", 4, 0, true},
		{"negative", -2, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimerStatus(tt.code)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTimerStatus(%d) expected error, got %v", tt.code, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimerStatus(%d) error = %v", tt.code, err)
			}
			if got != tt.want {
				t.Errorf("ParseTimerStatus(%d) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestNewAlarm_RejectsUnknownStatus(t *testing.T) {
	_, err := NewAlarm("alarm-1", 1000, 42, nil, nil)
	if !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("NewAlarm error = %v, want ErrUnknownStatus", err)
	}
}

func TestMillisToSeconds(t *testing.T) {
	tests := []struct {
		ms   int64
		want int64
	}{
		{0, 0},
		{1000, 1},
		{1499, 1},
		{1500, 2}, // rounds to nearest
		{1501, 2},
		{1618000000000, 1618000000},
	}

	for _, tt := range tests {
		if got := MillisToSeconds(tt.ms); got != tt.want {
			t.Errorf("MillisToSeconds(%d) = %d, want %d", tt.ms, got, tt.want)
		}
	}
}

func TestVolumeRoundTrip(t *testing.T) {
	// to_percent(to_fraction(v)) == v for every integer v in [0, 100]
	for v := MinVolume; v <= MaxVolume; v++ {
		if got := VolumeToPercent(VolumeToFraction(v)); got != v {
			t.Errorf("round trip %d -> %f -> %d", v, VolumeToFraction(v), got)
		}
	}
}

func TestVolumeToPercent(t *testing.T) {
	tests := []struct {
		fraction float64
		want     int
	}{
		{0.0, 0},
		{1.0, 100},
		{0.3, 30},
		{0.305, 31}, // rounds, not truncates
		{0.304, 30},
		{-0.5, 0},  // clamped
		{1.5, 100}, // clamped
	}

	for _, tt := range tests {
		if got := VolumeToPercent(tt.fraction); got != tt.want {
			t.Errorf("VolumeToPercent(%f) = %d, want %d", tt.fraction, got, tt.want)
		}
	}
}

func TestNewTimer_Duration(t *testing.T) {
	tests := []struct {
		name       string
		durationMS int64
		want       string
	}{
		{"ninety seconds", 90000, "0:01:30"},
		{"one hour", 3600000, "1:00:00"},
		{"zero", 0, "0:00:00"},
		{"hour and change", 3723000, "1:02:03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timer, err := NewTimer("timer-1", nil, tt.durationMS, int(TimerStatusSet), nil)
			if err != nil {
				t.Fatalf("NewTimer error = %v", err)
			}
			if timer.Duration != tt.want {
				t.Errorf("Duration = %q, want %q", timer.Duration, tt.want)
			}
		})
	}
}

func TestNewTimer_PausedHasNoFireTime(t *testing.T) {
	timer, err := NewTimer("timer-1", nil, 60000, int(TimerStatusPaused), nil)
	if err != nil {
		t.Fatalf("NewTimer error = %v", err)
	}
	if timer.FireTime != nil {
		t.Errorf("paused timer FireTime = %v, want nil", *timer.FireTime)
	}
}

func TestDeviceDeepCopy(t *testing.T) {
	ip := "192.168.1.20"
	token := "token-abc"
	d := &Device{
		ID:        "dev-1",
		Name:      "Kitchen speaker",
		IPAddress: &ip,
		AuthToken: &token,
		Alarms:    []Alarm{{ID: "alarm/a", FireTime: 100, Status: AlarmStatusSet}},
		Timers:    []Timer{{ID: "timer/b", Duration: "0:01:00", Status: TimerStatusSet}},
		BluetoothPeers: []BluetoothPeer{
			{MACAddress: "AA:BB:CC:DD:EE:FF", RSSI: -40},
		},
	}

	cpy := d.DeepCopy()
	cpy.Alarms[0].FireTime = 999
	cpy.BluetoothPeers[0].RSSI = 0

	if d.Alarms[0].FireTime != 100 {
		t.Error("DeepCopy shares the alarms slice with the original")
	}
	if d.BluetoothPeers[0].RSSI != -40 {
		t.Error("DeepCopy shares the bluetooth peers slice with the original")
	}
}

func TestPollable(t *testing.T) {
	ip := "1.2.3.4"
	token := "t"
	empty := ""

	tests := []struct {
		name string
		dev  Device
		want bool
	}{
		{"ip and token", Device{IPAddress: &ip, AuthToken: &token}, true},
		{"no ip", Device{AuthToken: &token}, false},
		{"no token", Device{IPAddress: &ip}, false},
		{"empty token", Device{IPAddress: &ip, AuthToken: &empty}, false},
		{"nothing", Device{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dev.Pollable(); got != tt.want {
				t.Errorf("Pollable() = %v, want %v", got, tt.want)
			}
		})
	}
}
