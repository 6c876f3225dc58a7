// Package logger provides the structured logging interface used across igdm.
//
// It wraps zerolog with a small API: leveled methods, field-carrying child
// loggers and a global instance configured from config.LoggingConfig.
// Console output is written to stderr.
//
//	logger.Initialize(&cfg.Logging)
//	logger.WithField("username", "alice").Info("Resolving profile")
//
// Tests use NewTestLogger to capture messages or NewNopLogger to drop them.
// Secrets such as the API key must go through MaskSecret before being logged.
package logger
