// loggerconfig.go
package logger

import (
	"fmt"

	"github.com/deploymenttheory/go-tryon-dashboard-client/version"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LogOutputJSON   = "json"
	LogOutputPretty = "pretty"
)

// BuildLogger creates a zap backed Logger. JSON is the default encoding; "pretty"
// switches to the console encoder with coloured levels. The application and version
// fields are attached to every entry and always written last.
func BuildLogger(logLevel LogLevel, logOutputFormat string) Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	config := zap.Config{
		Level:             zap.NewAtomicLevelAt(convertToZapLevel(logLevel)),
		Development:       false,
		Encoding:          "json",
		DisableCaller:     true,
		DisableStacktrace: true,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}

	if logOutputFormat == LogOutputPretty {
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	base, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	wrapped := zap.New(&customCore{base.Core()}).With(
		zap.String("application", version.GetAppName()),
		zap.String("version", version.GetVersion()),
	)

	return &defaultLogger{
		logger:   wrapped,
		logLevel: logLevel,
	}
}

// convertToZapLevel converts the custom LogLevel to a zapcore.Level
func convertToZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case LogLevelDebug:
		return zap.DebugLevel
	case LogLevelInfo:
		return zap.InfoLevel
	case LogLevelWarn:
		return zap.WarnLevel
	case LogLevelError:
		return zap.ErrorLevel
	case LogLevelDPanic:
		return zap.DPanicLevel
	case LogLevelPanic:
		return zap.PanicLevel
	case LogLevelFatal, LogLevelNone:
		return zap.FatalLevel
	default:
		return zap.InfoLevel
	}
}
