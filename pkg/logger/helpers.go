package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LogRequest writes one access log line for a served HTTP request
func LogRequest(log Logger, method, path string, statusCode int, duration time.Duration, requestID string) {
	fields := map[string]interface{}{
		"method":      method,
		"path":        path,
		"status_code": statusCode,
		"duration_ms": float64(duration.Microseconds()) / 1000,
	}
	if requestID != "" {
		fields["request_id"] = requestID
	}

	switch {
	case statusCode >= 500:
		log.ErrorWithFields("HTTP request server error", fields)
	case statusCode >= 400:
		log.WarnWithFields("HTTP request client error", fields)
	default:
		log.InfoWithFields("HTTP request completed", fields)
	}
}

// LogRateLimit records that a lookup had to wait for the limiter
func LogRateLimit(log Logger, username string, waited time.Duration) {
	log.WithFields(map[string]interface{}{
		"username": username,
		"waited":   waited,
		"action":   "rate_limited",
	}).Warn("Lookup paced by rate limiter")
}

// LogComponentStart logs when a component starts
func LogComponentStart(log Logger, component string, settings map[string]interface{}) {
	l := log.WithField("component", component)
	if len(settings) > 0 {
		l = l.WithFields(settings)
	}
	l.Info("Component started")
}

// LogComponentStop logs when a component stops
func LogComponentStop(log Logger, component string, reason string) {
	log.WithFields(map[string]interface{}{
		"component": component,
		"reason":    reason,
	}).Info("Component stopped")
}

// LogMetrics logs performance metrics for an operation
func LogMetrics(log Logger, operation string, metrics map[string]interface{}) {
	fields := map[string]interface{}{
		"operation": operation,
		"type":      "metrics",
	}
	for k, v := range metrics {
		fields[k] = v
	}
	log.InfoWithFields("Performance metrics", fields)
}

// NewNopLogger creates a no-operation logger
func NewNopLogger() Logger {
	return &nopLogger{}
}

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
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}
