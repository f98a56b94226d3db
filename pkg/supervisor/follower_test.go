package supervisor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFollowerStopsOnContextCancel(t *testing.T) {
	dir := t.TempDir()
	f := NewFollower(filepath.Join(dir, "kadmind.log"), filepath.Join(dir, "krb5kdc.log"))
	f.pollInterval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.Run(ctx, zap.NewNop())
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("follower did not stop after cancellation")
	}
}

func TestFollowerCreatesMissingLogFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "krb5kdc.log")
	f := NewFollower(path)
	f.pollInterval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.Run(ctx, zap.NewNop())
		close(done)
	}()

	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, 2*time.Second, 5*time.Millisecond, "follower should create the log file it waits on")

	cancel()
	<-done
	assert.FileExists(t, path)
}

func TestFollowerDiagnosticsUseProvidedLogger(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := zap.New(core).With(zap.String("command", "cerberus"))

	// Parent directory does not exist, so the open fails and is reported.
	f := NewFollower(filepath.Join(t.TempDir(), "no-such-dir", "krb5kdc.log"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f.Run(ctx, log)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Cannot follow log file", entry.Message)
	assert.Equal(t, "cerberus", entry.ContextMap()["command"])
}
