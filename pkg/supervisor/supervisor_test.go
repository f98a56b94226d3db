package supervisor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func testContext(t *testing.T) *cerberus_io.RuntimeContext {
	t.Helper()
	return cerberus_io.NewContext(context.Background(), "test")
}

func writePIDFile(t *testing.T, dir, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name+".pid")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadPIDFile(t *testing.T) {
	dir := t.TempDir()

	path := writePIDFile(t, dir, "kadmind", "1234\n")
	pid, err := ReadPIDFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1234, pid)

	_, err = ReadPIDFile(filepath.Join(dir, "missing.pid"))
	assert.Error(t, err)

	garbage := writePIDFile(t, dir, "krb5kdc", "not-a-pid\n")
	_, err = ReadPIDFile(garbage)
	assert.Error(t, err)

	zero := writePIDFile(t, dir, "zero", "0\n")
	_, err = ReadPIDFile(zero)
	assert.Error(t, err)
}

type signalRecorder struct {
	sent []string
}

func (r *signalRecorder) record(pid int, sig unix.Signal) error {
	r.sent = append(r.sent, fmt.Sprintf("%d:%v", pid, sig))
	return nil
}

func newShutdownSupervisor(kdcPID, kadminPID int) (*Supervisor, *signalRecorder) {
	rec := &signalRecorder{}
	s := &Supervisor{
		Grace:        10 * time.Millisecond,
		PollInterval: time.Millisecond,
		Signal:       rec.record,
		Alive:        func(pid int) bool { return false },
	}
	s.kadmind = &DaemonHandle{Name: "kadmind", pid: kadminPID}
	s.krb5kdc = &DaemonHandle{Name: "krb5kdc", pid: kdcPID}
	return s, rec
}

func TestShutdownSignalsKDCBeforeKadmind(t *testing.T) {
	s, rec := newShutdownSupervisor(100, 200)

	require.NoError(t, s.Shutdown(testContext(t)))

	assert.Equal(t, []string{
		fmt.Sprintf("100:%v", unix.SIGTERM),
		fmt.Sprintf("200:%v", unix.SIGTERM),
	}, rec.sent)
	assert.Equal(t, StateStopped, s.State())
}

func TestShutdownEscalatesToSIGKILLAfterGrace(t *testing.T) {
	s, rec := newShutdownSupervisor(100, 200)
	// krb5kdc ignores SIGTERM, kadmind exits promptly.
	s.Alive = func(pid int) bool { return pid == 100 }

	require.NoError(t, s.Shutdown(testContext(t)))

	assert.Contains(t, rec.sent, fmt.Sprintf("100:%v", unix.SIGKILL))
	assert.NotContains(t, rec.sent, fmt.Sprintf("200:%v", unix.SIGKILL))
	assert.Equal(t, StateStopped, s.State())
}

func TestShutdownSkipsNeverStartedDaemons(t *testing.T) {
	s, rec := newShutdownSupervisor(0, 0)

	require.NoError(t, s.Shutdown(testContext(t)))

	assert.Empty(t, rec.sent)
	assert.Equal(t, StateStopped, s.State())
}

func TestHealthcheckPasses(t *testing.T) {
	dir := t.TempDir()
	writePIDFile(t, dir, "kadmind", "100\n")
	writePIDFile(t, dir, "krb5kdc", "200\n")

	c := &Checker{
		RunDir: dir,
		Alive:  func(pid int) bool { return true },
		Comm: func(pid int) (string, error) {
			if pid == 100 {
				return "kadmind", nil
			}
			return "krb5kdc", nil
		},
	}

	assert.NoError(t, c.Healthcheck(testContext(t)))
}

func TestHealthcheckReportsEveryDeadDaemon(t *testing.T) {
	dir := t.TempDir()
	writePIDFile(t, dir, "kadmind", "100\n")
	// krb5kdc has no pidfile at all.

	c := &Checker{
		RunDir: dir,
		Alive:  func(pid int) bool { return false },
		Comm:   func(pid int) (string, error) { return "", fmt.Errorf("no such process") },
	}

	err := c.Healthcheck(testContext(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kadmind")
	assert.Contains(t, err.Error(), "krb5kdc")
}

func TestHealthcheckDetectsPIDReuse(t *testing.T) {
	dir := t.TempDir()
	writePIDFile(t, dir, "kadmind", "100\n")
	writePIDFile(t, dir, "krb5kdc", "200\n")

	c := &Checker{
		RunDir: dir,
		Alive:  func(pid int) bool { return true },
		Comm: func(pid int) (string, error) {
			if pid == 200 {
				return "sleep", nil
			}
			return "kadmind", nil
		},
	}

	err := c.Healthcheck(testContext(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `pid 200 is "sleep"`)
	assert.NotContains(t, err.Error(), "kadmind:")
}
