package debug

import (
	"os"

	"go.uber.org/zap"
)

// Sink receives structured events from the core pipeline. Decoders and
// the budgeter take a Sink injected instead of writing to the console,
// so they stay pure; a nil Sink is always safe to pass.
type Sink interface {
	Event(level, message string, metadata map[string]interface{})
}

var (
	enabled bool
	logger  *zap.Logger
)

func init() {
	enabled = os.Getenv("KYOTRANSIT_DEBUG_DASHBOARD") == "true"

	var err error
	if os.Getenv("APP_ENV") == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		logger = zap.NewNop()
	}
	if enabled {
		logger.Info("debug dashboard enabled")
	}
}

// IsEnabled reports whether the websocket debug dashboard is active.
func IsEnabled() bool {
	return enabled
}

// Logger exposes the shared zap logger for components that want typed fields.
func Logger() *zap.Logger {
	return logger
}

// Default returns the process-wide sink: zap plus, when enabled, the
// websocket dashboard broadcast.
func Default() Sink {
	return defaultSink{}
}

type defaultSink struct{}

func (defaultSink) Event(level, message string, metadata map[string]interface{}) {
	logAt(level, message, metadata)
}

// LogDebug emits a debug-level event.
func LogDebug(message string, metadata map[string]interface{}) {
	logAt("debug", message, metadata)
}

// LogInfo emits an info-level event.
func LogInfo(message string, metadata map[string]interface{}) {
	logAt("info", message, metadata)
}

// LogWarn emits a warn-level event.
func LogWarn(message string, metadata map[string]interface{}) {
	logAt("warn", message, metadata)
}

// LogError emits an error-level event.
func LogError(message string, metadata map[string]interface{}) {
	logAt("error", message, metadata)
}

func logAt(level, message string, metadata map[string]interface{}) {
	fields := make([]zap.Field, 0, len(metadata))
	for k, v := range metadata {
		fields = append(fields, zap.Any(k, v))
	}
	switch level {
	case "debug":
		logger.Debug(message, fields...)
	case "warn":
		logger.Warn(message, fields...)
	case "error":
		logger.Error(message, fields...)
	default:
		logger.Info(message, fields...)
	}
	if enabled {
		SendLog("backend", level, message, metadata)
	}
}

// Sync flushes buffered log entries. Called on shutdown.
func Sync() {
	_ = logger.Sync()
}
