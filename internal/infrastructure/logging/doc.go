// Package logging provides structured logging for Castfleet Core.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting poll loop", "interval", cfg.PollInterval())
//	logger.Error("broker connection failed", "error", err)
//
// # Severity Contract
//
// Polling a fleet of consumer devices produces a steady stream of
// expected failures. To keep the log usable, callers follow one rule:
// routine poll failures (offline device, unsupported endpoint) log at
// debug, failed user-initiated writes log at warn, and anything the
// engine cannot classify logs at error.
//
// # Security
//
// Never log device auth tokens, broker passwords, or identity resolving
// keys. Device names and IDs are fine.
package logging
