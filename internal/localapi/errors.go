package localapi

import "errors"

// Domain-specific errors for the local control API.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrMalformedResponse is returned when a device answered 200 but the
	// body is missing fields the endpoint schema requires. The partial
	// state from that call is discarded.
	ErrMalformedResponse = errors.New("localapi: malformed response")

	// ErrInvalidItemID is returned when an alarm/timer id fails local
	// shape validation. No network call is made for an invalid id.
	ErrInvalidItemID = errors.New("localapi: invalid item id")
)
