// Package logger provides the structured logging interface used across
// feedscraper.
//
// It wraps zerolog and adds:
//   - pretty console output when stdout is a terminal, JSON lines otherwise
//   - optional append-only file output
//   - child loggers carrying fields (WithField, WithFields, WithError)
//   - a global logger instance (Initialize, GetLogger)
//   - a no-op logger and a capturing TestLogger for tests
//
// Basic Usage:
//
//	err := logger.Initialize(&cfg.Logging)
//	log := logger.GetLogger().WithField("run_id", runID)
//	log.InfoWithFields("Collection run finished", map[string]interface{}{
//	    "accounts": 3,
//	    "items":    41,
//	})
package logger
