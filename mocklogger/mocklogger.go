// mocklogger/mocklogger.go
package mocklogger

import (
	"time"

	"github.com/deploymenttheory/go-tryon-dashboard-client/logger"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockLogger is a mock type for the Logger interface, embedding a *zap.Logger to satisfy the type requirement.
type MockLogger struct {
	mock.Mock
	*zap.Logger
	logLevel logger.LogLevel
}

// NewMockLogger creates a new instance of MockLogger with an embedded no-op *zap.Logger.
func NewMockLogger() *MockLogger {
	return &MockLogger{
		Logger: zap.NewNop(),
	}
}

var _ logger.Logger = (*MockLogger)(nil)

// GetLogLevel returns the level last passed to SetLevel.
func (m *MockLogger) GetLogLevel() logger.LogLevel {
	return m.logLevel
}

// SetLevel sets the logging level of the MockLogger.
func (m *MockLogger) SetLevel(level logger.LogLevel) {
	m.logLevel = level
	m.Called(level)
}

// With returns the same mock so expectations set on it keep matching.
func (m *MockLogger) With(fields ...zap.Field) logger.Logger {
	m.Called(fields)
	return m
}

func (m *MockLogger) Debug(msg string, fields ...zap.Field) {
	m.Called(msg, fields)
}

func (m *MockLogger) Info(msg string, fields ...zap.Field) {
	m.Called(msg, fields)
}

func (m *MockLogger) Warn(msg string, fields ...zap.Field) {
	m.Called(msg, fields)
}

// Error logs a message at the Error level and returns the error configured on the expectation.
func (m *MockLogger) Error(msg string, fields ...zap.Field) error {
	return m.Called(msg, fields).Error(0)
}

func (m *MockLogger) Panic(msg string, fields ...zap.Field) {
	m.Called(msg, fields)
}

func (m *MockLogger) Fatal(msg string, fields ...zap.Field) {
	m.Called(msg, fields)
}

// LogRequestStart logs the start of an HTTP request.
func (m *MockLogger) LogRequestStart(requestID string, method string, url string, headers map[string][]string) {
	m.Called(requestID, method, url, headers)
}

// LogRequestEnd logs the end of an HTTP request.
func (m *MockLogger) LogRequestEnd(requestID string, method string, url string, statusCode int, duration time.Duration) {
	m.Called(requestID, method, url, statusCode, duration)
}

// LogError logs an error event.
func (m *MockLogger) LogError(event string, method string, url string, statusCode int, err error) {
	m.Called(event, method, url, statusCode, err)
}

// LogAuthFailure logs a rejected session token.
func (m *MockLogger) LogAuthFailure(method string, url string, shop string) {
	m.Called(method, url, shop)
}

// LogCancelled logs an abandoned request.
func (m *MockLogger) LogCancelled(method string, url string, err error) {
	m.Called(method, url, err)
}
