package localapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/castfleet/castfleet-core/internal/device"
)

// Control plane constants for the device local API.
const (
	// ControlPort is the fixed HTTPS control port. All requests target
	// this port regardless of any port value attached to a device record.
	ControlPort = 8443

	// authHeader carries the device's local auth token.
	authHeader = "cast-local-authorization-token"

	// DefaultTimeout is the per-request timeout. These are LAN calls to
	// embedded devices; anything slower than a couple of seconds is
	// effectively down.
	DefaultTimeout = 2 * time.Second

	// MinTimeout and MaxTimeout bound the tunable request timeout.
	MinTimeout = 2 * time.Second
	MaxTimeout = 10 * time.Second
)

// Endpoints consumed on the device control port.
const (
	EndpointAlarms       = "setup/assistant/alarms"
	EndpointAlarmDelete  = "setup/assistant/alarms/delete"
	EndpointAlarmVolume  = "setup/assistant/alarms/volume"
	EndpointDoNotDisturb = "setup/assistant/notifications"
	EndpointReboot       = "setup/reboot"
)

// Outcome classifies the result of one request to a device.
type Outcome int

// Outcome values.
const (
	// OutcomeOK: HTTP 200. An empty or non-JSON body is still an empty
	// success, not an error.
	OutcomeOK Outcome = iota

	// OutcomeUnauthorized: HTTP 401. The caller must trigger fleet-wide
	// token invalidation.
	OutcomeUnauthorized

	// OutcomeNotFound: HTTP 404. The device model does not support this
	// endpoint; expected for non-compatible hardware.
	OutcomeNotFound

	// OutcomeUnreachable: connection failure before any HTTP response.
	OutcomeUnreachable

	// OutcomeTimeout: the request exceeded the configured timeout.
	OutcomeTimeout

	// OutcomeError: any other HTTP status; unexpected.
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeUnauthorized:
		return "unauthorized"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeUnreachable:
		return "unreachable"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeError:
		return "error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the classified outcome of one request, with the raw body
// retained for parsing (OK) and diagnostics (unexpected statuses).
type Result struct {
	Outcome Outcome
	Status  int // HTTP status, 0 when no response was received
	Body    []byte
}

// Logger is the logging interface used by the Client.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Caller is the request contract consumed by the poll orchestrator.
// Implemented by Client; test code substitutes fakes.
type Caller interface {
	Fetch(ctx context.Context, dev *device.Device, endpoint string, polling bool) Result
	Send(ctx context.Context, dev *device.Device, endpoint string, payload any, polling bool) Result
}

// Client issues token-authenticated HTTPS requests to device control
// endpoints and classifies the responses.
//
// The devices present self-signed or non-matching TLS certificates, so
// certificate verification is disabled. No retry is performed here;
// retries happen implicitly at the next scheduled poll cycle.
//
// Thread Safety: all methods are safe for concurrent use.
type Client struct {
	httpClient *http.Client
	logger     Logger

	// urlFor builds the target URL from a device IP and endpoint.
	// Overridden in tests to point at a local server.
	urlFor func(ip, endpoint string) string
}

var _ Caller = (*Client)(nil)

// New creates a Client with the given per-request timeout. Timeouts
// outside [MinTimeout, MaxTimeout] are clamped.
func New(timeout time.Duration) *Client {
	if timeout < MinTimeout {
		timeout = MinTimeout
	}
	if timeout > MaxTimeout {
		timeout = MaxTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	// Embedded devices use self-signed certs for the local control port.
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: noopLogger{},
		urlFor: URL,
	}
}

// SetLogger sets a logger for request diagnostics.
func (c *Client) SetLogger(logger Logger) {
	c.logger = logger
}

// URL builds the control endpoint URL for a device IP.
func URL(ip, endpoint string) string {
	return fmt.Sprintf("https://%s:%d/%s", ip, ControlPort, endpoint)
}

// Fetch issues a GET to the device's control endpoint.
//
// polling distinguishes scheduled refreshes from user-initiated reads:
// transient failures during routine polling log at debug, the same
// failures on a user action log at warn.
func (c *Client) Fetch(ctx context.Context, dev *device.Device, endpoint string, polling bool) Result {
	return c.do(ctx, http.MethodGet, dev, endpoint, nil, polling)
}

// Send issues a POST with a JSON payload to the device's control
// endpoint. A nil payload sends an empty body (the read form of the
// volume and notifications endpoints).
func (c *Client) Send(ctx context.Context, dev *device.Device, endpoint string, payload any, polling bool) Result {
	return c.do(ctx, http.MethodPost, dev, endpoint, payload, polling)
}

func (c *Client) do(ctx context.Context, method string, dev *device.Device, endpoint string, payload any, polling bool) Result {
	if !dev.Pollable() {
		// The orchestrator filters these out; reaching here means a
		// write was requested for a device discovery never completed.
		c.logger.Warn("device has no ip address or auth token", "device", dev.Name)
		return Result{Outcome: OutcomeUnreachable}
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			c.logger.Error("encoding request payload", "device", dev.Name, "endpoint", endpoint, "error", err)
			return Result{Outcome: OutcomeError}
		}
		body = bytes.NewReader(raw)
	}

	url := c.urlFor(*dev.IPAddress, endpoint)
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		c.logger.Error("building request", "device", dev.Name, "endpoint", endpoint, "error", err)
		return Result{Outcome: OutcomeError}
	}
	req.Header.Set(authHeader, *dev.AuthToken)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("requesting device endpoint", "device", dev.Name, "endpoint", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.classifyTransportError(dev, endpoint, err, polling)
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		c.logger.Error("reading response body", "device", dev.Name, "endpoint", endpoint, "error", readErr)
		return Result{Outcome: OutcomeError, Status: resp.StatusCode}
	}

	return c.classifyStatus(dev, endpoint, resp.StatusCode, raw, polling)
}

// classifyTransportError maps pre-response failures onto Timeout or
// Unreachable.
func (c *Client) classifyTransportError(dev *device.Device, endpoint string, err error, polling bool) Result {
	var netErr net.Error
	timedOut := errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout())

	if timedOut {
		c.logger.Debug("device timed out",
			"device", dev.Name,
			"endpoint", endpoint,
		)
		return Result{Outcome: OutcomeTimeout}
	}

	// Connection refused, no route, DNS, cancelled context: the device
	// is probably offline.
	if polling {
		c.logger.Debug("failed to connect to device, probably offline",
			"device", dev.Name,
			"endpoint", endpoint,
			"error", err,
		)
	} else {
		c.logger.Warn("failed to connect to device, probably offline",
			"device", dev.Name,
			"endpoint", endpoint,
			"error", err,
		)
	}
	return Result{Outcome: OutcomeUnreachable}
}

// classifyStatus maps an HTTP response onto an Outcome, applying the
// severity contract: 404 and routine-poll 401s are expected and stay at
// debug, unexpected statuses log at error.
func (c *Client) classifyStatus(dev *device.Device, endpoint string, status int, body []byte, polling bool) Result {
	switch status {
	case http.StatusOK:
		return Result{Outcome: OutcomeOK, Status: status, Body: body}

	case http.StatusUnauthorized:
		if polling {
			c.logger.Debug("invalid token, fleet tokens will be refreshed",
				"device", dev.Name,
			)
		} else {
			c.logger.Warn("request rejected due to invalid token, tokens will be refreshed",
				"device", dev.Name,
			)
		}
		return Result{Outcome: OutcomeUnauthorized, Status: status}

	case http.StatusNotFound:
		hardware := ""
		if dev.Hardware != nil {
			hardware = *dev.Hardware
		}
		c.logger.Debug("endpoint not supported, device is possibly not assistant-compatible",
			"device", dev.Name,
			"endpoint", endpoint,
			"hardware", hardware,
		)
		return Result{Outcome: OutcomeNotFound, Status: status}

	default:
		c.logger.Error("unexpected device response",
			"device", dev.Name,
			"endpoint", endpoint,
			"status", status,
			"body", string(body),
		)
		return Result{Outcome: OutcomeError, Status: status, Body: body}
	}
}
