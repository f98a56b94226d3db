// pkg/execute/helpers.go

package execute

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// Options controls a single external command invocation.
type Options struct {
	Command string
	Args    []string
	Dir     string
	Env     []string // appended to the inherited environment
	Stdin   string   // piped to the child when non-empty
	Capture bool     // return combined output to the caller
	Quiet   bool     // capture only, no passthrough to stdout
	Retries int
	Delay   time.Duration
	Timeout time.Duration
	Logger  *zap.Logger
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func defaultTimeout(t time.Duration) time.Duration {
	if t > 0 {
		return t
	}
	return 30 * time.Second
}

func buildCommandString(command string, args ...string) string {
	return command + " " + strings.Join(args, " ")
}
