// pkg/bootstrap/bootstrap.go

package bootstrap

import (
	"os"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/kerberos"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/ldap"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/secrets"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/supervisor"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Run drives the whole entrypoint: resolve configuration once, decide the
// backend, provision it, render configuration for the final decision, then
// supervise the daemons until termination.
//
// Ordering is load-bearing: provisioning completes (success or downgrade)
// before the final render, the final render completes before any daemon
// starts, and signal handling is installed only once daemons run.
func Run(rc *cerberus_io.RuntimeContext) error {
	logger := otelzap.Ctx(rc.Ctx)

	secrets.LoadEnvFile(rc)
	cfg := kerberos.LoadRealmConfig(rc)
	endpoint := kerberos.LoadEndpoint(rc)

	decision := kerberos.SelectBackend(rc, endpoint.Host != "", cfg.ForceLDAP)

	if err := os.MkdirAll(shared.DataDir, 0o700); err != nil {
		return cerr.Wrap(err, "create data directory")
	}

	// Provisional render: the LDAP database utility reads these files. The
	// daemons never see this render, only the final one below.
	if err := kerberos.RenderConfigs(rc, decision, cfg, endpoint); err != nil {
		return err
	}

	var dir kerberos.DirectoryClient
	if decision.IsLDAP() {
		logger.Info("LDAP backend selected",
			zap.String("url", endpoint.URL()),
			zap.Int("lldap_ui_port", cfg.LLDAPUIPort),
		)

		client, err := ldap.Connect(rc, endpoint, cfg.DirectoryManagerDN, cfg.DirectoryManagerPassword)
		if err != nil {
			logger.Warn("Cannot connect to directory server, downgrading to the local database", zap.Error(err))
			decision.Downgrade("directory connection failed")
		} else {
			defer client.Close()
			dir = client
		}
	}

	prov := &kerberos.Provisioner{Dir: dir, KDC: &kerberos.LocalKDC{}}
	if err := prov.Provision(rc, decision, cfg, endpoint); err != nil {
		return err
	}

	if decision.IsLDAP() {
		if !ldap.NewProber().Probe(rc, endpoint) {
			decision.Downgrade("directory unreachable")
		}
	}

	// Final render, after every downgrade point. Rendering a provisional
	// decision here would hand the daemons a backend that was never
	// provisioned.
	if err := kerberos.RenderConfigs(rc, decision, cfg, endpoint); err != nil {
		return err
	}

	logger.Info("Bootstrap complete",
		zap.String("backend", decision.Backend().String()),
		zap.String("reason", decision.Reason()),
		zap.String("realm", cfg.RealmName),
	)

	return supervisor.New().Run(rc)
}
