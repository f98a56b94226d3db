package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestReplaceGlobalsWiresContextLogging(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	restore := ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)

	otelzap.Ctx(context.Background()).Warn("backend downgraded")

	require.Equal(t, 1, logs.Len(), "otelzap.Ctx output must reach the installed global")
	assert.Equal(t, "backend downgraded", logs.All()[0].Message)
}

func TestInitializeWithFallbackWiresContextLogging(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	InitializeWithFallback()

	// The nop logger's core rejects every level; a wired global must not.
	assert.True(t, otelzap.L().Core().Enabled(zapcore.WarnLevel),
		"otelzap global still on the nop logger after initialization")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLogLevel("debug"))
	assert.Equal(t, zapcore.DebugLevel, ParseLogLevel("true"))
	assert.Equal(t, zapcore.WarnLevel, ParseLogLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLogLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLogLevel(""))
	assert.Equal(t, zapcore.InfoLevel, ParseLogLevel("verbose"))
}
