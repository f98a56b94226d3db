// pkg/cerberus_cli/wrap.go

package cerberus_cli

import (
	"context"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/logger"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// Wrap ensures panic recovery, telemetry, logging and error classification
// around a cobra handler.
func Wrap(fn func(rc *cerberus_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		logger.InitFallback()

		rc := cerberus_io.NewContext(context.Background(), cmd.Name())
		defer rc.End(&err)
		defer rc.HandlePanic(&err)

		err = fn(rc, cmd, args)
		if err != nil && !cerberus_err.IsExpectedUserError(err) {
			err = cerr.WithStack(err)
		}
		return err
	}
}
