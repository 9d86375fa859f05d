// Package logger provides structured logging for the follower viewer.
//
// It wraps zerolog behind a small interface so the HTTP layer, the lookup
// pool and the CLI can log with fields without importing zerolog directly.
// Console output is colored; when a log file is configured every line is
// also appended to it as JSON.
//
//	logger.Initialize(&config.LoggingConfig{Level: "info"})
//	logger.WithField("username", "alice").Info("Follower List stored")
//
// NewTestLogger captures messages in memory for assertions in tests.
package logger
