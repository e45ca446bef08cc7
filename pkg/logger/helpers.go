package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LogAccountStart logs the dispatch of one account's collection task
func LogAccountStart(log Logger, account string, index int) {
	log.WithFields(map[string]interface{}{
		"account": account,
		"index":   index,
	}).Debug("Account collection started")
}

// LogAccountResult logs how one account's collection task ended
func LogAccountResult(log Logger, account string, items int, duration time.Duration, err error) {
	fields := map[string]interface{}{
		"account":  account,
		"items":    items,
		"duration": duration,
	}

	l := log.WithFields(fields)
	if err != nil {
		l.WithError(err).Warn("Account collection failed, using empty result")
		return
	}
	l.Info("Account collection completed")
}

// LogCacheEvent logs a cache hit or miss for a window size
func LogCacheEvent(log Logger, windowHours int, hit bool) {
	action := "miss"
	if hit {
		action = "hit"
	}
	log.WithFields(map[string]interface{}{
		"window_hours": windowHours,
		"cache":        action,
	}).Debug("Cache lookup")
}

// LogRunSummary logs the outcome of a whole multi-account run
func LogRunSummary(log Logger, accounts, items, failed int, duration time.Duration) {
	log.InfoWithFields("Collection run finished", map[string]interface{}{
		"accounts": accounts,
		"items":    items,
		"failed":   failed,
		"duration": duration,
	})
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
