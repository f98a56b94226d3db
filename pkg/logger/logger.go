// pkg/logger/logger.go

package logger

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// ReplaceGlobals installs l as both the zap global and the otelzap global.
// Domain packages log through otelzap.Ctx, which reads the otelzap global;
// replacing only the zap global leaves those callers on a nop logger. The
// returned function restores the previous globals.
func ReplaceGlobals(l *zap.Logger) func() {
	undoZap := zap.ReplaceGlobals(l)
	undoOtel := otelzap.ReplaceGlobals(otelzap.New(l))
	return func() {
		undoOtel()
		undoZap()
	}
}

// L returns the global logger, initializing a console fallback if needed.
func L() *zap.Logger {
	if log == nil {
		InitializeWithFallback()
	}
	return log
}

// Sync flushes any buffered log entries.
func Sync() error {
	if log == nil {
		return nil
	}
	return log.Sync()
}

// ParseLogLevel maps LOG_LEVEL / DEBUG_MODE values to a zap level.
// Unknown values fall back to Info.
func ParseLogLevel(value string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug", "true":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func activeLevel() zapcore.Level {
	if strings.EqualFold(os.Getenv("DEBUG_MODE"), "true") {
		return zapcore.DebugLevel
	}
	return ParseLogLevel(os.Getenv("LOG_LEVEL"))
}

// FindWritableLogPath returns the first log file path whose directory we can
// create and write to. Container images run us as root so /var/log/cerberus
// normally wins; the home fallback keeps local development working.
func FindWritableLogPath() (string, error) {
	candidates := []string{
		"/var/log/cerberus/cerberus.log",
		filepath.Join(os.Getenv("HOME"), ".cerberus", "cerberus.log"),
	}
	var lastErr error
	for _, path := range candidates {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			lastErr = err
			continue
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			lastErr = err
			continue
		}
		f.Close()
		return path, nil
	}
	return "", lastErr
}

// GetLogFileWriter opens the log file for appending.
func GetLogFileWriter(path string) (zapcore.WriteSyncer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, err
	}
	return zapcore.AddSync(f), nil
}

func DefaultConsoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}
