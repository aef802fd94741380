package bluetooth

import "errors"

// Domain-specific errors for bluetooth identity resolution.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrInvalidIRK is returned when an identity resolving key is not 32
	// hex characters.
	ErrInvalidIRK = errors.New("bluetooth: invalid identity resolving key")

	// ErrInvalidMAC is returned when a MAC address cannot be parsed as
	// six colon-separated octets.
	ErrInvalidMAC = errors.New("bluetooth: invalid mac address")
)
