package poller

import (
	"context"
	"fmt"

	"github.com/castfleet/castfleet-core/internal/device"
	"github.com/castfleet/castfleet-core/internal/localapi"
)

// SetAlarmVolume sets the alarm/timer ring volume on one device to a
// percentage in [0, 100]. The registry is updated only after the device
// acknowledges the write.
func (p *Poller) SetAlarmVolume(ctx context.Context, deviceID string, percent int) error {
	if percent < device.MinVolume || percent > device.MaxVolume {
		return fmt.Errorf("%w: %d", ErrVolumeOutOfRange, percent)
	}

	dev, err := p.registry.Get(deviceID)
	if err != nil {
		return err
	}

	res := p.client.Send(ctx, dev, localapi.EndpointAlarmVolume, localapi.VolumePayload(percent), false)
	if err := p.finishWrite(dev, res); err != nil {
		return err
	}
	return p.registry.SetAlarmVolume(deviceID, percent)
}

// SetDoNotDisturb enables or disables do-not-disturb on one device. The
// wire protocol speaks in notifications-enabled terms, inverted from the
// do-not-disturb flag callers use; the payload builder handles that.
func (p *Poller) SetDoNotDisturb(ctx context.Context, deviceID string, enabled bool) error {
	dev, err := p.registry.Get(deviceID)
	if err != nil {
		return err
	}

	res := p.client.Send(ctx, dev, localapi.EndpointDoNotDisturb, localapi.NotificationsPayload(enabled), false)
	if err := p.finishWrite(dev, res); err != nil {
		return err
	}
	return p.registry.SetDoNotDisturb(deviceID, enabled)
}

// DeleteItem removes one alarm or timer from a device by its full item
// ID. The ID is validated before any network traffic; a malformed ID is
// an immediate error, not a request. The device's answer must positively
// confirm the deletion.
func (p *Poller) DeleteItem(ctx context.Context, deviceID, itemID string) error {
	if err := localapi.ValidateItemID(itemID); err != nil {
		return err
	}

	dev, err := p.registry.Get(deviceID)
	if err != nil {
		return err
	}

	res := p.client.Send(ctx, dev, localapi.EndpointAlarmDelete, localapi.DeletePayload(itemID), false)
	if err := p.finishWrite(dev, res); err != nil {
		return err
	}

	ok, err := localapi.ParseDeleteResponse(res.Body)
	if err != nil {
		return err
	}
	if !ok {
		p.logger.Warn("device rejected deletion",
			"device", dev.Name,
			"kind", localapi.ItemKind(itemID),
		)
		return ErrDeleteRejected
	}
	return nil
}

// Reboot asks a device to restart immediately. The device drops the
// connection while rebooting, so an empty 200 is the best confirmation
// available.
func (p *Poller) Reboot(ctx context.Context, deviceID string) error {
	dev, err := p.registry.Get(deviceID)
	if err != nil {
		return err
	}

	res := p.client.Send(ctx, dev, localapi.EndpointReboot, localapi.RebootPayload(), false)
	return p.finishWrite(dev, res)
}

// finishWrite translates a write outcome into device state and an error.
// An acknowledged write proves the device reachable; a failed one marks
// it unavailable so the fleet view reflects what the user just saw fail.
// A 401 invalidates the whole fleet, same as during polling.
func (p *Poller) finishWrite(dev *device.Device, res localapi.Result) error {
	switch res.Outcome {
	case localapi.OutcomeOK:
		_ = p.registry.SetAvailable(dev.ID, true)
		return nil

	case localapi.OutcomeUnauthorized:
		// Advancing the generation first also drops any in-flight poll
		// cycle's results, which are equally suspect under stale tokens.
		p.registry.Invalidate(p.registry.BeginCycle())
		return fmt.Errorf("%w: %s", ErrWriteFailed, res.Outcome)

	default:
		_ = p.registry.SetAvailable(dev.ID, false)
		return fmt.Errorf("%w: %s", ErrWriteFailed, res.Outcome)
	}
}
