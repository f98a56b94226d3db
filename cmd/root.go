/* cmd/root.go */

package cmd

import (
	"fmt"
	"os"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/bootstrap"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_cli"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd is the container entrypoint: with no arguments it bootstraps the
// realm and supervises the daemons until termination.
var RootCmd = &cobra.Command{
	Use:   "cerberus",
	Short: "Kerberos KDC container entrypoint",
	Long: `Cerberus bootstraps a Kerberos KDC and its administration daemon inside a
container: it resolves configuration, provisions the principal database
(local or LDAP-backed), renders the realm configuration, and supervises
krb5kdc and kadmind until the container is stopped.`,
	Args: cobra.NoArgs,
	RunE: cerberus_cli.Wrap(func(rc *cerberus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return bootstrap.Run(rc)
	}),
}

// Execute runs the root command and maps errors to the container exit code.
func Execute() {
	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Failed to flush logs: %v\n", err)
		}
	}()

	RootCmd.AddCommand(HealthcheckCmd)

	if err := RootCmd.Execute(); err != nil {
		if cerberus_err.IsExpectedUserError(err) {
			logger.L().Warn("Exiting with expected error", zap.Error(err))
		} else {
			logger.L().Error("Exiting with error", zap.Error(err))
		}
		os.Exit(1)
	}
}
