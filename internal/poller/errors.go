package poller

import "errors"

// Domain-specific errors for poll and write operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrVolumeOutOfRange is returned when a requested alarm volume is
	// outside [0, 100].
	ErrVolumeOutOfRange = errors.New("poller: alarm volume out of range")

	// ErrWriteFailed is returned when a user-initiated device write did
	// not reach the device or was not accepted.
	ErrWriteFailed = errors.New("poller: device write failed")

	// ErrDeleteRejected is returned when the device confirmed receipt of
	// a delete request but reported success=false.
	ErrDeleteRejected = errors.New("poller: device rejected deletion")
)
