// Package logging provides structured logging for chihirosctl.
//
// This package wraps zap with convenience functions for the logging
// patterns used across the tool: connection events, frame traffic and
// raw byte dumps while debugging protocol issues.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (hex dumps, frame fields)
//   - Info: Normal operations (connections, commands sent)
//   - Warn: Non-fatal issues (connection drops, retries)
//   - Error: Fatal issues (startup failures, critical errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Command sent",
//	    zap.String("device", "DYNWRGB1234"),
//	    zap.Uint8("command_id", 90),
//	)
//
// # Configuration
//
// CLI commands are silent by default. Verbosity is controlled by the
// CHIHIROSCTL_LOG_LEVEL environment variable:
//
//	CHIHIROSCTL_LOG_LEVEL=debug chihirosctl set-brightness ...
//
// or programmatically at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
