// Package logging provides structured logging for pmcconfig.
//
// This package wraps Go's standard log/slog package. Operator output of the
// tool goes to stdout, so diagnostics default to warnings only, as text, on
// stderr.
//
// # Features
//
//   - Text or JSON output
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Optional size-rotated log file (lumberjack)
//
// # Configuration
//
//	logging:
//	  level: "warn"      # debug, info, warn, error
//	  format: "text"     # text, json
//	  output: "stderr"   # stdout, stderr
//	  file:
//	    path: "/var/log/pmcconfig.log"
//	    max_size: 10     # megabytes
//	    max_backups: 3
//	    max_age: 28      # days
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version, os.Stdout, os.Stderr)
//	defer logger.Close()
//	logger.Info("saved", "file", path)
package logging
