package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// MaskSecret masks all but the first 3 and last 4 characters of a secret
func MaskSecret(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:3] + "..." + s[len(s)-4:]
}

// LogComponentStart logs when a component starts
func LogComponentStart(log Logger, component string, config map[string]interface{}) {
	l := log.WithField("component", component)
	if len(config) > 0 {
		l = l.WithFields(config)
	}
	l.Info("Component started")
}

// LogGeneration logs the outcome of one generated row
func LogGeneration(log Logger, username string, index, total int, duration time.Duration, err error) {
	fields := map[string]interface{}{
		"username": username,
		"index":    index + 1,
		"total":    total,
		"duration": duration,
	}

	if err != nil {
		log.WithError(err).WarnWithFields("Message generation failed", fields)
		return
	}
	log.DebugWithFields("Message generated", fields)
}

// LogRunSummary logs the totals of a finished batch run
func LogRunSummary(log Logger, runID string, rows, failed int, duration time.Duration) {
	log.InfoWithFields("Batch run finished", map[string]interface{}{
		"run_id":   runID,
		"rows":     rows,
		"failed":   failed,
		"duration": duration,
	})
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
