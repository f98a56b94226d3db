// pkg/supervisor/supervisor.go

package supervisor

import (
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/shared"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// State tracks the supervisor lifecycle.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateShuttingDown
	StateStopped
)

// DaemonHandle identifies one supervised daemon. Owned exclusively by the
// Supervisor.
type DaemonHandle struct {
	Name    string
	PIDFile string
	LogPath string
	pid     int
}

// Supervisor starts kadmind and krb5kdc, keeps the container foreground on
// a log follower, and performs ordered graceful shutdown. Signal delivery
// and liveness checks are injectable for tests.
type Supervisor struct {
	RunDir       string
	LogDir       string
	Grace        time.Duration
	PollInterval time.Duration

	Signal func(pid int, sig unix.Signal) error
	Alive  func(pid int) bool

	state   State
	kadmind *DaemonHandle
	krb5kdc *DaemonHandle
}

func New() *Supervisor {
	s := &Supervisor{
		RunDir:       shared.RunDir,
		LogDir:       shared.LogDir,
		Grace:        30 * time.Second,
		PollInterval: time.Second,
		Signal:       unix.Kill,
		Alive:        ProcessAlive,
	}
	s.kadmind = s.handle("kadmind")
	s.krb5kdc = s.handle("krb5kdc")
	return s
}

func (s *Supervisor) handle(name string) *DaemonHandle {
	return &DaemonHandle{
		Name:    name,
		PIDFile: filepath.Join(s.RunDir, name+".pid"),
		LogPath: filepath.Join(s.LogDir, name+".log"),
	}
}

func (s *Supervisor) State() State { return s.state }

// ProcessAlive reports pid liveness via the null signal.
func ProcessAlive(pid int) bool {
	return unix.Kill(pid, 0) == nil
}

// Run drives the full lifecycle: start both daemons, follow their logs
// until a termination signal arrives, then shut down in order. Signal
// handling is installed only once the daemons are running.
func (s *Supervisor) Run(rc *cerberus_io.RuntimeContext) error {
	logger := otelzap.Ctx(rc.Ctx)

	if err := os.MkdirAll(s.RunDir, 0o755); err != nil {
		return cerr.Wrap(err, "create run directory")
	}
	if err := os.MkdirAll(s.LogDir, 0o755); err != nil {
		return cerr.Wrap(err, "create log directory")
	}

	// kadmind first: administrative availability should bracket the KDC.
	if err := s.startDaemon(rc, s.kadmind); err != nil {
		return err
	}
	if err := s.startDaemon(rc, s.krb5kdc); err != nil {
		return err
	}
	s.state = StateRunning
	logger.Info("Daemons running",
		zap.Int("kadmind_pid", s.kadmind.pid),
		zap.Int("krb5kdc_pid", s.krb5kdc.pid),
	)

	ctx, stop := signal.NotifyContext(rc.Ctx, unix.SIGINT, unix.SIGTERM)
	defer stop()

	// The follower is the foreground: it forwards daemon logs to stdout
	// and returns when the signal context is cancelled. The daemons are
	// never signalled directly here.
	follower := NewFollower(s.kadmind.LogPath, s.krb5kdc.LogPath)
	follower.Run(ctx, rc.Log)

	logger.Info("Termination requested, beginning ordered shutdown")
	return s.Shutdown(rc)
}

// startDaemon launches a self-daemonizing krb5 daemon with a pidfile and
// waits for the pidfile to appear.
func (s *Supervisor) startDaemon(rc *cerberus_io.RuntimeContext, h *DaemonHandle) error {
	logger := otelzap.Ctx(rc.Ctx)

	_ = os.Remove(h.PIDFile)
	if _, err := execute.Run(rc.Ctx, execute.Options{
		Command: h.Name,
		Args:    []string{"-P", h.PIDFile},
		Timeout: 30 * time.Second,
	}); err != nil {
		return cerr.Wrapf(err, "start %s", h.Name)
	}

	pid, err := s.waitForPIDFile(h.PIDFile, 10*time.Second)
	if err != nil {
		return cerr.Wrapf(err, "%s did not record a pid", h.Name)
	}
	h.pid = pid

	logger.Info("Daemon started", zap.String("daemon", h.Name), zap.Int("pid", pid))
	return nil
}

func (s *Supervisor) waitForPIDFile(path string, timeout time.Duration) (int, error) {
	deadline := time.Now().Add(timeout)
	for {
		if pid, err := ReadPIDFile(path); err == nil {
			return pid, nil
		}
		if time.Now().After(deadline) {
			return 0, cerr.Newf("pidfile %s not written within %s", path, timeout)
		}
		time.Sleep(200 * time.Millisecond)
	}
}

// ReadPIDFile parses a daemon pidfile.
func ReadPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, cerr.Newf("pidfile %s holds no valid pid", path)
	}
	return pid, nil
}

// Shutdown terminates krb5kdc first so ticket clients fail fast, then
// kadmind, and polls until both are gone. The grace period is bounded:
// a wedged daemon is force-killed rather than hanging the container stop.
func (s *Supervisor) Shutdown(rc *cerberus_io.RuntimeContext) error {
	logger := otelzap.Ctx(rc.Ctx)
	s.state = StateShuttingDown

	for _, h := range []*DaemonHandle{s.krb5kdc, s.kadmind} {
		if h.pid <= 0 {
			continue
		}
		if err := s.Signal(h.pid, unix.SIGTERM); err != nil {
			logger.Warn("Failed to signal daemon",
				zap.String("daemon", h.Name),
				zap.Int("pid", h.pid),
				zap.Error(err))
		} else {
			logger.Info("Sent SIGTERM", zap.String("daemon", h.Name), zap.Int("pid", h.pid))
		}
	}

	deadline := time.Now().Add(s.Grace)
	for {
		if !s.anyAlive() {
			break
		}
		if time.Now().After(deadline) {
			for _, h := range []*DaemonHandle{s.krb5kdc, s.kadmind} {
				if h.pid > 0 && s.Alive(h.pid) {
					logger.Warn("Daemon did not exit within grace period, sending SIGKILL",
						zap.String("daemon", h.Name),
						zap.Int("pid", h.pid))
					_ = s.Signal(h.pid, unix.SIGKILL)
				}
			}
			break
		}
		time.Sleep(s.PollInterval)
	}

	s.state = StateStopped
	logger.Info("All daemons stopped")
	return nil
}

func (s *Supervisor) anyAlive() bool {
	for _, h := range []*DaemonHandle{s.krb5kdc, s.kadmind} {
		if h.pid > 0 && s.Alive(h.pid) {
			return true
		}
	}
	return false
}
