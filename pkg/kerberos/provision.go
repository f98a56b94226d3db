// pkg/kerberos/provision.go

package kerberos

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/shared"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// DirectoryClient is the narrow interface over the directory-modification
// protocol the LDAP provisioning path needs. Implemented by pkg/ldap; test
// doubles simulate every failure branch without a live directory.
type DirectoryClient interface {
	// EnsureServiceIdentity creates the service entry at dn; an entry that
	// already exists is success.
	EnsureServiceIdentity(ctx context.Context, dn string) error
	// SetPassword sets the entry's password via a password-change operation.
	SetPassword(ctx context.Context, dn, password string) error
	// GrantContainerAccess adds access-control entries giving the service
	// DNs write access to the container subtree.
	GrantContainerAccess(ctx context.Context, containerDN string, serviceDNs ...string) error
	// DestroyRealmSubtree deletes the realm subtree, children first.
	DestroyRealmSubtree(ctx context.Context, containerDN string) error
}

// Admin is the narrow interface over the local KDC administration commands.
// Implemented by LocalKDC; test doubles stand in for the krb5 tooling.
type Admin interface {
	CreateLocalDatabase(ctx context.Context, cfg *RealmConfig) error
	CreateLDAPDatabase(ctx context.Context, cfg *RealmConfig, endpoint LDAPEndpoint) error
	AddAdminPrincipal(ctx context.Context, cfg *RealmConfig) error
	ExportAdminKeytab(ctx context.Context, cfg *RealmConfig, keytabPath string) error
}

// Provisioner performs the one-time backend setup, gated by the persistent
// marker. It mutates the decision (downgrade) but never un-downgrades.
type Provisioner struct {
	Dir DirectoryClient
	KDC Admin

	// DataDir overrides the persistent volume root; empty means the
	// production layout.
	DataDir string
}

func (p *Provisioner) dataPath(name string) string {
	dir := p.DataDir
	if dir == "" {
		dir = shared.DataDir
	}
	return filepath.Join(dir, name)
}

func (p *Provisioner) markerPath() string { return p.dataPath(shared.MarkerFileName) }

// Provisioned reports whether the volume already holds an initialized realm:
// either the dedicated marker or a principal database exists.
func (p *Provisioner) Provisioned() bool {
	for _, path := range []string{p.markerPath(), p.dataPath(shared.PrincipalDBName)} {
		if _, err := os.Stat(path); err == nil {
			return true
		}
	}
	return false
}

// Provision runs the one-time setup for the decided backend. Re-running
// against an already-initialized volume is a no-op unless the destructive
// recreation flag is set for an LDAP realm. LDAP failures downgrade the
// decision and fall through to local provisioning; they are never fatal.
func (p *Provisioner) Provision(rc *cerberus_io.RuntimeContext, decision *BackendDecision, cfg *RealmConfig, endpoint LDAPEndpoint) error {
	logger := otelzap.Ctx(rc.Ctx)

	if p.Provisioned() {
		if cfg.DestroyAndRecreate && decision.IsLDAP() {
			logger.Warn("DESTROY_AND_RECREATE set, destroying the existing LDAP realm")
			p.destroyRealm(rc, cfg)
		} else {
			if cfg.DestroyAndRecreate {
				logger.Warn("DESTROY_AND_RECREATE only applies to the LDAP backend, ignoring for the local database")
			}
			logger.Info("Realm already provisioned, skipping setup",
				zap.String("marker", p.markerPath()))
			return nil
		}
	} else if cfg.DestroyAndRecreate && decision.IsLDAP() {
		// A fresh volume can still face a stale directory subtree from a
		// previous volume lifetime.
		p.destroyRealm(rc, cfg)
	}

	if decision.IsLDAP() {
		if err := p.provisionLDAP(rc, cfg, endpoint); err != nil {
			logger.Warn("LDAP provisioning failed, downgrading to the local database", zap.Error(err))
			decision.Downgrade(fmt.Sprintf("ldap provisioning failed: %v", err))
		}
	}

	if !decision.IsLDAP() {
		if err := p.provisionLocal(rc, cfg); err != nil {
			// Fatal to correct operation, but the daemons surface it via
			// their own startup and the healthcheck.
			logger.Error("Local database provisioning failed, daemons will not start correctly", zap.Error(err))
			return nil
		}
	}

	if err := os.WriteFile(p.markerPath(), []byte(decision.Backend().String()+"\n"), 0o600); err != nil {
		return cerr.Wrap(err, "write provisioning marker")
	}
	logger.Info("Provisioning complete",
		zap.String("backend", decision.Backend().String()),
		zap.String("reason", decision.Reason()),
	)
	return nil
}

// destroyRealm is best-effort: failure is logged, never fatal, and does not
// abort the subsequent create attempt.
func (p *Provisioner) destroyRealm(rc *cerberus_io.RuntimeContext, cfg *RealmConfig) {
	logger := otelzap.Ctx(rc.Ctx)

	if err := p.Dir.DestroyRealmSubtree(rc.Ctx, cfg.ContainerDN); err != nil {
		logger.Warn("Failed to destroy existing realm subtree, continuing",
			zap.String("container_dn", cfg.ContainerDN),
			zap.Error(err))
	}
	if err := os.Remove(p.markerPath()); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to remove provisioning marker", zap.Error(err))
	}
}

func (p *Provisioner) provisionLDAP(rc *cerberus_io.RuntimeContext, cfg *RealmConfig, endpoint LDAPEndpoint) error {
	logger := otelzap.Ctx(rc.Ctx)

	identities := []struct {
		dn       string
		password string
	}{
		{cfg.KDCDN, cfg.KDCPassword},
		{cfg.AdminDN, cfg.AdminPassword},
	}

	for _, id := range identities {
		if err := p.Dir.EnsureServiceIdentity(rc.Ctx, id.dn); err != nil {
			return cerr.Wrapf(err, "create service identity %s", id.dn)
		}
		if err := p.Dir.SetPassword(rc.Ctx, id.dn, id.password); err != nil {
			return cerr.Wrapf(err, "set password for %s", id.dn)
		}
		logger.Info("Service identity ready", zap.String("dn", id.dn))
	}

	stashPath := p.dataPath(shared.StashFileName)
	if err := WriteStashFile(stashPath, map[string]string{
		cfg.KDCDN:   cfg.KDCPassword,
		cfg.AdminDN: cfg.AdminPassword,
	}); err != nil {
		return cerr.Wrap(err, "write service password stash")
	}
	logger.Info("Service password stash written", zap.String("path", stashPath))

	if err := p.KDC.CreateLDAPDatabase(rc.Ctx, cfg, endpoint); err != nil {
		return cerr.Wrap(err, "initialize directory-backed database")
	}

	if err := p.Dir.GrantContainerAccess(rc.Ctx, cfg.ContainerDN, cfg.KDCDN, cfg.AdminDN); err != nil {
		// The database exists at this point; a missing ACI is repairable by
		// the operator without reprovisioning.
		logger.Warn("Failed to grant container access to service identities",
			zap.String("container_dn", cfg.ContainerDN),
			zap.Error(err))
	}

	return nil
}

func (p *Provisioner) provisionLocal(rc *cerberus_io.RuntimeContext, cfg *RealmConfig) error {
	logger := otelzap.Ctx(rc.Ctx)

	if err := p.KDC.CreateLocalDatabase(rc.Ctx, cfg); err != nil {
		return cerr.Wrap(err, "create local database")
	}
	logger.Info("Local database created", zap.String("realm", cfg.RealmName))

	if err := p.KDC.AddAdminPrincipal(rc.Ctx, cfg); err != nil {
		return cerr.Wrapf(err, "add admin principal %s", cfg.AdminPrincipal())
	}

	keytabPath := p.dataPath(shared.KeytabFileName)
	if err := p.KDC.ExportAdminKeytab(rc.Ctx, cfg, keytabPath); err != nil {
		return cerr.Wrap(err, "export admin keytab")
	}

	aclPath := p.dataPath(shared.ACLFileName)
	acl := fmt.Sprintf("%s *\n", cfg.AdminPrincipal())
	if err := os.WriteFile(aclPath, []byte(acl), 0o600); err != nil {
		return cerr.Wrap(err, "write kadm5.acl")
	}
	logger.Info("Administrative ACL written",
		zap.String("path", aclPath),
		zap.String("principal", cfg.AdminPrincipal()))

	return nil
}
