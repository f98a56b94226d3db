// pkg/supervisor/healthcheck.go

package supervisor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/shared"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Checker verifies both daemons independently of the main supervisor state
// machine; it is the side-channel used by the container healthcheck.
type Checker struct {
	RunDir string
	Alive  func(pid int) bool
	Comm   func(pid int) (string, error)
}

func NewChecker() *Checker {
	return &Checker{
		RunDir: shared.RunDir,
		Alive:  ProcessAlive,
		Comm:   processComm,
	}
}

// Healthcheck verifies that both daemon pids are alive and named correctly.
// All failures are collected so the combined message names every dead
// daemon, not just the first.
func (c *Checker) Healthcheck(rc *cerberus_io.RuntimeContext) error {
	logger := otelzap.Ctx(rc.Ctx)

	var failures []string
	for _, name := range []string{"kadmind", "krb5kdc"} {
		if err := c.checkDaemon(name); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
		}
	}

	if len(failures) > 0 {
		msg := strings.Join(failures, "; ")
		logger.Error("Healthcheck failed", zap.String("failures", msg))
		return cerberus_err.NewExpectedError(cerr.Newf("unhealthy: %s", msg))
	}

	logger.Info("Healthcheck passed")
	return nil
}

func (c *Checker) checkDaemon(name string) error {
	pidFile := filepath.Join(c.RunDir, name+".pid")
	pid, err := ReadPIDFile(pidFile)
	if err != nil {
		return cerr.Wrap(err, "pidfile missing or invalid")
	}

	if !c.Alive(pid) {
		return cerr.Newf("pid %d is not running", pid)
	}

	comm, err := c.Comm(pid)
	if err != nil {
		return cerr.Wrapf(err, "cannot read process name for pid %d", pid)
	}
	if comm != name {
		return cerr.Newf("pid %d is %q, expected %q", pid, comm, name)
	}
	return nil
}

func processComm(pid int) (string, error) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
