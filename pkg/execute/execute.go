// pkg/execute/execute.go

package execute

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Run executes a command with structured logging and proper error handling.
// Shell execution is not supported; callers pass explicit Args.
func Run(ctx context.Context, opts Options) (string, error) {
	cmdStr := buildCommandString(opts.Command, opts.Args...)

	logger := opts.Logger
	if logger == nil {
		logger = zap.L()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithTimeout(ctx, defaultTimeout(opts.Timeout))
	defer cancel()

	runCtx, span := telemetry.Start(runCtx, "execute.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("command", opts.Command),
		attribute.String("args", strings.Join(opts.Args, " ")),
	)

	logger.Debug("Starting execution", zap.String("command", cmdStr))

	var output string
	var err error

	for i := 1; i <= max(1, opts.Retries); i++ {
		cmd := exec.CommandContext(runCtx, opts.Command, opts.Args...)
		if opts.Dir != "" {
			cmd.Dir = opts.Dir
		}
		if len(opts.Env) > 0 {
			cmd.Env = append(os.Environ(), opts.Env...)
		}
		if opts.Stdin != "" {
			cmd.Stdin = strings.NewReader(opts.Stdin)
		}

		var buf bytes.Buffer
		var writer io.Writer = &buf
		if !opts.Quiet {
			writer = io.MultiWriter(os.Stdout, &buf)
		}
		cmd.Stdout = writer
		cmd.Stderr = writer

		err = cmd.Run()
		output = buf.String()

		if err == nil {
			logger.Debug("Execution succeeded", zap.String("command", cmdStr))
			break
		}

		summary := cerberus_err.ExtractSummary(output, 2)
		span.RecordError(err)
		logger.Error("Execution failed",
			zap.Error(err),
			zap.Int("attempt", i),
			zap.String("command", cmdStr),
			zap.String("summary", summary),
		)

		if i < opts.Retries {
			time.Sleep(opts.Delay)
		}
	}

	if err != nil {
		return output, cerr.Wrapf(err, "command %s failed", opts.Command)
	}

	if opts.Capture {
		return output, nil
	}
	return "", nil
}
