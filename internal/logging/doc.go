// Package logging provides structured logging for sixhats.
//
// It wraps log/slog to write JSON lines, one per event, so that analysis
// sessions can be reconstructed after the fact. Every entry written through a
// session-scoped logger carries session_id; entries about a hat's turn also
// carry hat.
//
// # Features
//
//   - JSON-formatted structured logging via slog
//   - Configurable log levels (DEBUG, INFO, WARN, ERROR)
//   - Context propagation (session ID, hat, component)
//   - Size-based rotation with optional gzip compression of backups
//   - Reading, filtering, and pretty-printing of existing log files
//
// # Basic Usage
//
//	logger, err := logging.NewLogger(dir, "INFO", logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	sessionLog := logger.WithSession(sessionID)
//	sessionLog.WithHat("white").Info("turn completed", "elapsed_ms", 812)
//
// With an empty directory the logger writes to stderr. Stdout is reserved for
// command output.
//
// # Reading Logs
//
//	entries, err := logging.ReadEntries(dir)
//	errs := logging.Filter{Level: "WARN", SessionID: id}.Apply(entries)
//	logging.WriteText(os.Stdout, errs)
package logging
