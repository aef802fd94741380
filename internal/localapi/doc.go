// Package localapi is the token-gated HTTPS client for the smart-speaker
// local control API.
//
// Every device exposes a control endpoint on a fixed port (8443) secured
// by a per-device local auth token carried in a custom header. The
// devices present self-signed certificates, so TLS verification is
// disabled for this client only.
//
// The client classifies every request into an Outcome rather than
// returning transport errors:
//
//	200         → OutcomeOK (empty/non-JSON body is an empty success)
//	401         → OutcomeUnauthorized (caller invalidates fleet tokens)
//	404         → OutcomeNotFound (incompatible hardware, expected)
//	conn error  → OutcomeUnreachable
//	deadline    → OutcomeTimeout
//	anything    → OutcomeError
//
// Response bodies are decoded through strict per-endpoint schemas
// (schema.go): a 200 body missing required keys is ErrMalformedResponse,
// never a silent default. Alarm/timer records carrying unknown status
// codes are rejected individually while valid siblings are kept.
//
// No retry or backoff lives here; a failed call is simply retried by the
// next scheduled poll cycle.
package localapi
