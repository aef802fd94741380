package poller

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/castfleet/castfleet-core/internal/device"
	"github.com/castfleet/castfleet-core/internal/localapi"
)

// errFleetInvalidated cancels the remaining in-flight device tasks once
// any device reports 401. It never escapes Cycle.
var errFleetInvalidated = errors.New("poller: fleet tokens invalidated")

// Logger is the logging interface used by the Poller.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Discoverer supplies the fleet when the registry is empty: at first
// start and after a fleet-wide token invalidation. Implementations are
// expected to return devices with fresh auth tokens.
type Discoverer interface {
	Discover(ctx context.Context) ([]*device.Device, error)
}

// Poller drives poll cycles over the fleet and executes on-demand device
// writes. Each cycle fans out across devices with bounded concurrency;
// within one device the three state requests run sequentially, the way a
// single embedded speaker prefers to be spoken to.
//
// Thread Safety: safe for concurrent use. Overlapping cycles are legal;
// the registry's generation counter makes the newest cycle win.
type Poller struct {
	registry    *device.Registry
	client      localapi.Caller
	discoverer  Discoverer
	logger      Logger
	concurrency int
}

// Option configures a Poller.
type Option func(*Poller)

// WithDiscoverer installs the fleet source used when the registry is
// empty. Without one, an empty registry just produces empty cycles.
func WithDiscoverer(d Discoverer) Option {
	return func(p *Poller) { p.discoverer = d }
}

// WithConcurrency bounds how many devices are polled at once. Zero or
// negative means unbounded.
func WithConcurrency(n int) Option {
	return func(p *Poller) { p.concurrency = n }
}

// WithLogger sets the poller's logger.
func WithLogger(l Logger) Option {
	return func(p *Poller) { p.logger = l }
}

// New creates a Poller over the given registry and device client.
func New(registry *device.Registry, client localapi.Caller, opts ...Option) *Poller {
	p := &Poller{
		registry: registry,
		client:   client,
		logger:   noopLogger{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Cycle runs one full poll pass over the fleet and returns a snapshot of
// the resulting state.
//
// An empty registry triggers a discovery pass first (this is also how the
// fleet recovers after token invalidation). Devices missing an IP address
// or auth token are marked unavailable without any network traffic.
// A 401 from any device clears the whole fleet once and cancels the
// remaining in-flight device tasks.
//
// Cancelling ctx abandons the cycle; devices whose requests were still in
// flight keep their previous state untouched.
func (p *Poller) Cycle(ctx context.Context) []*device.Device {
	cycleID := uuid.NewString()
	start := time.Now()

	if p.registry.Count() == 0 && p.discoverer != nil {
		devices, err := p.discoverer.Discover(ctx)
		if err != nil {
			p.logger.Error("discovery failed", "cycle_id", cycleID, "error", err)
			return p.registry.Snapshot()
		}
		p.registry.ReplaceAll(devices)
	}

	gen := p.registry.BeginCycle()
	snapshot := p.registry.Snapshot()

	pollable := make([]*device.Device, 0, len(snapshot))
	for _, d := range snapshot {
		if d.Pollable() {
			pollable = append(pollable, d)
			continue
		}
		// Nothing to ask; the device stays listed so callers still see it.
		if err := p.registry.SetAvailable(d.ID, false); err == nil {
			p.logger.Debug("device missing ip or token, marked unavailable",
				"cycle_id", cycleID,
				"device", d.Name,
			)
		}
	}

	p.logger.Debug("poll cycle started",
		"cycle_id", cycleID,
		"cycle", gen,
		"devices", len(snapshot),
		"pollable", len(pollable),
	)

	g, gctx := errgroup.WithContext(ctx)
	if p.concurrency > 0 {
		g.SetLimit(p.concurrency)
	}
	for _, d := range pollable {
		d := d
		g.Go(func() error {
			return p.pollDevice(gctx, cycleID, gen, d)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, errFleetInvalidated) {
		p.logger.Error("poll cycle error", "cycle_id", cycleID, "error", err)
	}

	p.logger.Info("poll cycle finished",
		"cycle_id", cycleID,
		"cycle", gen,
		"devices", len(snapshot),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return p.registry.Snapshot()
}

// pollDevice issues the three state requests against one device and
// applies the staged result. Each request contributes independently; a
// 404 on one endpoint does not discard the others. Availability follows
// the most recent contact attempt.
func (p *Poller) pollDevice(ctx context.Context, cycleID string, gen uint64, dev *device.Device) error {
	var upd device.PollUpdate

	res := p.client.Fetch(ctx, dev, localapi.EndpointAlarms, true)
	if res.Outcome == localapi.OutcomeUnauthorized {
		p.registry.Invalidate(gen)
		return errFleetInvalidated
	}
	upd.Available = res.Outcome == localapi.OutcomeOK
	if res.Outcome == localapi.OutcomeOK {
		parsed, err := localapi.ParseAlarmsResponse(res.Body)
		if err != nil {
			p.logger.Error("malformed alarms response",
				"cycle_id", cycleID,
				"device", dev.Name,
				"error", err,
			)
		} else {
			for _, rej := range parsed.Rejected {
				p.logger.Error("rejected alarm record",
					"cycle_id", cycleID,
					"device", dev.Name,
					"error", rej,
				)
			}
			upd.Alarms = parsed.Alarms
			upd.Timers = parsed.Timers
		}
	}

	// The read form of the volume and notifications endpoints is a POST
	// with no payload.
	res = p.client.Send(ctx, dev, localapi.EndpointAlarmVolume, nil, true)
	if res.Outcome == localapi.OutcomeUnauthorized {
		p.registry.Invalidate(gen)
		return errFleetInvalidated
	}
	upd.Available = res.Outcome == localapi.OutcomeOK
	if res.Outcome == localapi.OutcomeOK {
		volume, err := localapi.ParseVolumeResponse(res.Body)
		if err != nil {
			p.logger.Error("malformed volume response",
				"cycle_id", cycleID,
				"device", dev.Name,
				"error", err,
			)
		} else {
			upd.AlarmVolume = &volume
		}
	}

	res = p.client.Send(ctx, dev, localapi.EndpointDoNotDisturb, nil, true)
	if res.Outcome == localapi.OutcomeUnauthorized {
		p.registry.Invalidate(gen)
		return errFleetInvalidated
	}
	upd.Available = res.Outcome == localapi.OutcomeOK
	if res.Outcome == localapi.OutcomeOK {
		dnd, err := localapi.ParseNotificationsResponse(res.Body)
		if err != nil {
			p.logger.Error("malformed notifications response",
				"cycle_id", cycleID,
				"device", dev.Name,
				"error", err,
			)
		} else {
			upd.DoNotDisturb = &dnd
		}
	}

	// A cancelled cycle never half-updates a device.
	if ctx.Err() != nil {
		return nil
	}
	p.registry.ApplyPoll(dev.ID, gen, upd)
	return nil
}
