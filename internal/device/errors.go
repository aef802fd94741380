package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a device ID does not exist.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrUnknownStatus is returned when a wire status code is outside the
	// known enumeration. The record carrying it is rejected, not defaulted.
	ErrUnknownStatus = errors.New("device: unknown status code")

	// ErrNotPollable is returned when an operation requires an IP address
	// and auth token the device does not have.
	ErrNotPollable = errors.New("device: missing ip address or auth token")
)
