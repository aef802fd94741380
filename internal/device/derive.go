package device

import (
	"math"
	"sort"
)

// sortKey returns the fire time used for ordering. Dormant alarms
// (inactive, missed) sort as if they fired at the maximum representable
// time so they never surface as "next".
func (a Alarm) sortKey() int64 {
	if a.Status.Dormant() {
		return math.MaxInt64
	}
	return a.FireTime
}

// sortKey returns the fire time used for ordering. A paused timer has no
// fire time and sorts last.
func (t Timer) sortKey() int64 {
	if t.FireTime == nil {
		return math.MaxInt64
	}
	return *t.FireTime
}

// SortedAlarms returns the device's alarms ordered by fire time ascending,
// with dormant alarms last. The sort is stable: equal keys keep their
// original relative order. The receiver's slice is not modified.
func (d *Device) SortedAlarms() []Alarm {
	sorted := make([]Alarm, len(d.Alarms))
	copy(sorted, d.Alarms)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].sortKey() < sorted[j].sortKey()
	})
	return sorted
}

// NextAlarm returns the alarm that will fire soonest, or nil if the device
// has no alarms. Dormant alarms are never returned while any other alarm
// exists, but with nothing else present the first dormant one is reported
// so the caller still sees that alarms exist.
func (d *Device) NextAlarm() *Alarm {
	sorted := d.SortedAlarms()
	if len(sorted) == 0 {
		return nil
	}
	return &sorted[0]
}

// SortedTimers returns the device's timers ordered by fire time ascending,
// with paused (fireless) timers last. The sort is stable. The receiver's
// slice is not modified.
func (d *Device) SortedTimers() []Timer {
	sorted := make([]Timer, len(d.Timers))
	copy(sorted, d.Timers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].sortKey() < sorted[j].sortKey()
	})
	return sorted
}

// NextTimer returns the timer that will fire soonest, or nil if the device
// has no timers.
func (d *Device) NextTimer() *Timer {
	sorted := d.SortedTimers()
	if len(sorted) == 0 {
		return nil
	}
	return &sorted[0]
}
