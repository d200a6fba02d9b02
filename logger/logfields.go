// logfields.go
package logger

import (
	"time"

	"go.uber.org/zap"
)

// LogRequestStart logs the initiation of an HTTP request. Headers are expected to be
// redacted by the caller when sensitive data must stay out of the logs.
func (d *defaultLogger) LogRequestStart(requestID string, method string, url string, headers map[string][]string) {
	if d.logLevel <= LogLevelDebug {
		d.logger.Debug("HTTP request started",
			zap.String("event", "request_start"),
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("url", url),
			zap.Any("headers", headers),
		)
	}
}

// LogRequestEnd logs the completion of an HTTP request.
func (d *defaultLogger) LogRequestEnd(requestID string, method string, url string, statusCode int, duration time.Duration) {
	if d.logLevel <= LogLevelInfo {
		d.logger.Info("HTTP request completed",
			zap.String("event", "request_end"),
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status_code", statusCode),
			zap.Duration("duration", duration),
		)
	}
}

// LogError logs an error encountered during the lifecycle of an HTTP request.
func (d *defaultLogger) LogError(event string, method string, url string, statusCode int, err error) {
	if d.logLevel > LogLevelError {
		return
	}
	fields := []zap.Field{
		zap.String("event", event),
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status_code", statusCode),
	}
	if err != nil {
		fields = append(fields, zap.String("error_message", err.Error()))
	}
	d.logger.Error("Error during HTTP request", fields...)
}

// LogAuthFailure logs a 401 from the backend for a known shop.
func (d *defaultLogger) LogAuthFailure(method string, url string, shop string) {
	if d.logLevel <= LogLevelWarn {
		d.logger.Warn("Backend rejected session token",
			zap.String("event", "auth_failure"),
			zap.String("method", method),
			zap.String("url", url),
			zap.String("shop", shop),
		)
	}
}

// LogCancelled logs a request abandoned because its context ended.
func (d *defaultLogger) LogCancelled(method string, url string, err error) {
	if d.logLevel > LogLevelDebug {
		return
	}
	fields := []zap.Field{
		zap.String("event", "request_cancelled"),
		zap.String("method", method),
		zap.String("url", url),
	}
	if err != nil {
		fields = append(fields, zap.String("reason", err.Error()))
	}
	d.logger.Debug("HTTP request cancelled", fields...)
}
