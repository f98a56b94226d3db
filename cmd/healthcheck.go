// cmd/healthcheck.go

package cmd

import (
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_cli"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/supervisor"
	"github.com/spf13/cobra"
)

// HealthcheckCmd is the side-channel health probe: it checks that both
// daemon pids are alive and named correctly, independent of the main
// supervisor state machine. Wired as the container HEALTHCHECK command.
var HealthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that krb5kdc and kadmind are running",
	Args:  cobra.NoArgs,
	RunE: cerberus_cli.Wrap(func(rc *cerberus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return supervisor.NewChecker().Healthcheck(rc)
	}),
}
