// Package pkg provides shared utilities for the card authenticator.
//
// This package contains common functionality used by the authentication
// core, the platform disk layer and the command-line front end, including:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel error types for operational faults
//   - Component identifiers for log filtering
//
// # Logging
//
// The logging subsystem wraps [log/slog] with component context:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentAuth, "entered health report mode", "attempt", 1)
//
// A colorized development format is available through [LogFormatDev].
//
// # Errors
//
// Operational faults are defined as sentinel values:
//
//	if errors.Is(err, pkg.ErrLockFailed) {
//	    // Another process holds the disk
//	}
package pkg
