package device

import (
	"sync"
	"sync/atomic"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// entry pairs a device with its own mutex so mutation is serialised per
// device but lock-free across devices.
type entry struct {
	mu  sync.Mutex
	dev *Device
}

// Registry holds the authoritative fleet for the current session.
//
// Devices are keyed by their stable device ID and kept in discovery order.
// A discovery pass replaces the whole fleet; poll cycles mutate single
// devices in place. The registry also owns the fleet-wide token
// invalidation: an auth failure on any device clears the entire cached
// list so the next cycle re-runs discovery with fresh tokens. The observed
// failure mode is a fleet-wide credential rotation, not a single bad token,
// so clearing one device would just leave the rest failing.
//
// All public methods are thread-safe.
type Registry struct {
	mu      sync.RWMutex // guards devices, order, invalidatedGen
	devices map[string]*entry
	order   []string

	// gen is the poll cycle generation. It advances at the start of each
	// cycle and gates both stale-result dropping (last-cycle-wins) and
	// at-most-once invalidation per cycle.
	gen            atomic.Uint64
	invalidatedGen uint64

	logger Logger
}

// NewRegistry creates an empty device registry.
func NewRegistry() *Registry {
	return &Registry{
		devices: make(map[string]*entry),
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// ReplaceAll installs the result of a discovery pass, replacing the whole
// fleet. Duplicate device IDs keep the first occurrence. Devices are
// stored as deep copies; the caller's slice stays untouched.
func (r *Registry) ReplaceAll(devices []*Device) {
	fresh := make(map[string]*entry, len(devices))
	order := make([]string, 0, len(devices))
	for _, d := range devices {
		if d == nil || d.ID == "" {
			continue
		}
		if _, dup := fresh[d.ID]; dup {
			r.logger.Warn("duplicate device id in discovery pass", "id", d.ID, "name", d.Name)
			continue
		}
		fresh[d.ID] = &entry{dev: d.DeepCopy()}
		order = append(order, d.ID)
	}

	r.mu.Lock()
	r.devices = fresh
	r.order = order
	r.mu.Unlock()

	r.logger.Info("fleet replaced from discovery", "count", len(order))
}

// Get retrieves a device by ID.
// The returned device is a deep copy; callers can safely modify it.
func (r *Registry) Get(id string) (*Device, error) {
	e, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dev.DeepCopy(), nil
}

// Snapshot returns deep copies of all devices in discovery order.
func (r *Registry) Snapshot() []*Device {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.order))
	for _, id := range r.order {
		if e, ok := r.devices[id]; ok {
			entries = append(entries, e)
		}
	}
	r.mu.RUnlock()

	out := make([]*Device, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.dev.DeepCopy())
		e.mu.Unlock()
	}
	return out
}

// Count returns the number of known devices.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

// BeginCycle advances and returns the poll cycle generation. The poll
// orchestrator calls this once at the start of each cycle and passes the
// value to ApplyPoll and Invalidate.
func (r *Registry) BeginCycle() uint64 {
	return r.gen.Add(1)
}

// Generation returns the current poll cycle generation.
func (r *Registry) Generation() uint64 {
	return r.gen.Load()
}

// Invalidate performs fleet-wide token invalidation for the given cycle
// generation: the entire cached device list is cleared so the next cycle
// re-runs discovery and re-acquires fresh tokens for every device.
//
// Invalidation fires at most once per generation. Concurrent 401s from
// several devices in the same cycle race here; the first caller clears,
// the rest are no-ops. Returns true if this call performed the clear.
func (r *Registry) Invalidate(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.invalidatedGen >= gen {
		return false
	}
	r.invalidatedGen = gen

	cleared := len(r.devices)
	r.devices = make(map[string]*entry)
	r.order = nil

	r.logger.Warn("fleet-wide token invalidation, forcing rediscovery",
		"cycle", gen,
		"devices_cleared", cleared,
	)
	return true
}

// PollUpdate carries one device's staged poll results. Nil slice and
// pointer fields leave the corresponding device state untouched, so a
// call that failed or returned malformed data simply contributes nothing.
type PollUpdate struct {
	Available    bool
	Alarms       []Alarm
	Timers       []Timer
	AlarmVolume  *int
	DoNotDisturb *bool
}

// ApplyPoll applies staged poll results to one device in place. The update
// is dropped when gen is no longer the current cycle generation (a newer
// cycle has started; last-cycle-wins) or when the device has been removed
// by fleet invalidation. Returns true if the update was applied.
func (r *Registry) ApplyPoll(id string, gen uint64, upd PollUpdate) bool {
	if gen != r.gen.Load() {
		r.logger.Debug("dropping stale poll result", "id", id, "cycle", gen)
		return false
	}

	e, err := r.lookup(id)
	if err != nil {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.dev.Available = upd.Available
	if upd.Alarms != nil {
		e.dev.Alarms = upd.Alarms
	}
	if upd.Timers != nil {
		e.dev.Timers = upd.Timers
	}
	if upd.AlarmVolume != nil {
		e.dev.AlarmVolume = *upd.AlarmVolume
	}
	if upd.DoNotDisturb != nil {
		e.dev.DoNotDisturb = *upd.DoNotDisturb
	}
	return true
}

// SetAvailable updates a single device's reachability flag.
func (r *Registry) SetAvailable(id string, available bool) error {
	return r.mutate(id, func(d *Device) {
		d.Available = available
	})
}

// SetAlarmVolume records a confirmed alarm volume for a device. Used by
// the on-demand write path after the device acknowledges the new value.
func (r *Registry) SetAlarmVolume(id string, percent int) error {
	return r.mutate(id, func(d *Device) {
		d.AlarmVolume = percent
	})
}

// SetDoNotDisturb records a confirmed do-not-disturb flag for a device.
func (r *Registry) SetDoNotDisturb(id string, enabled bool) error {
	return r.mutate(id, func(d *Device) {
		d.DoNotDisturb = enabled
	})
}

// SetBluetoothPeers installs a fresh advertisement capture batch for a
// device, replacing the previous batch wholesale.
func (r *Registry) SetBluetoothPeers(id string, peers []BluetoothPeer) error {
	cpy := make([]BluetoothPeer, len(peers))
	copy(cpy, peers)
	return r.mutate(id, func(d *Device) {
		d.BluetoothPeers = cpy
	})
}

// lookup finds the live entry for a device ID.
func (r *Registry) lookup(id string) (*entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.devices[id]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	return e, nil
}

// mutate runs fn against one device under its per-device lock.
func (r *Registry) mutate(id string, fn func(*Device)) error {
	e, err := r.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.dev)
	return nil
}
