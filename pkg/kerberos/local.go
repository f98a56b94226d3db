// pkg/kerberos/local.go

package kerberos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/execute"
	cerr "github.com/cockroachdb/errors"
)

// LocalKDC implements Admin by shelling out to the MIT krb5 administration
// tools present in the image: kdb5_util, kadmin.local and kdb5_ldap_util.
type LocalKDC struct{}

const adminToolTimeout = 2 * time.Minute

// CreateLocalDatabase runs kdb5_util create with a stashed master key. The
// master password is piped on stdin rather than passed as an argument so it
// never shows up in command logs or the process table.
func (k *LocalKDC) CreateLocalDatabase(ctx context.Context, cfg *RealmConfig) error {
	_, err := execute.Run(ctx, execute.Options{
		Command: "kdb5_util",
		Args:    []string{"create", "-r", cfg.RealmName, "-s"},
		Stdin:   cfg.MasterPassword + "\n" + cfg.MasterPassword + "\n",
		Quiet:   true,
		Capture: true,
		Timeout: adminToolTimeout,
	})
	if err != nil {
		return cerr.Wrap(err, "kdb5_util create")
	}
	return nil
}

// CreateLDAPDatabase initializes the directory-backed database under the
// container DN. kdb5_ldap_util reads the dbmodules stanza from the
// provisionally rendered config files, so rendering must precede this call.
// Both passwords go over stdin: without -w the tool prompts for the bind
// password, without -P it prompts for the master key twice.
func (k *LocalKDC) CreateLDAPDatabase(ctx context.Context, cfg *RealmConfig, endpoint LDAPEndpoint) error {
	_, err := execute.Run(ctx, execute.Options{
		Command: "kdb5_ldap_util",
		Args:    ldapCreateArgs(cfg, endpoint),
		Stdin:   ldapCreateStdin(cfg),
		Quiet:   true,
		Capture: true,
		Timeout: adminToolTimeout,
	})
	if err != nil {
		return cerr.Wrap(err, "kdb5_ldap_util create")
	}
	return nil
}

func ldapCreateArgs(cfg *RealmConfig, endpoint LDAPEndpoint) []string {
	return []string{
		"-D", cfg.DirectoryManagerDN,
		"-H", endpoint.URL(),
		"create",
		"-subtrees", cfg.BaseDN,
		"-r", cfg.RealmName,
		"-s",
	}
}

func ldapCreateStdin(cfg *RealmConfig) string {
	return cfg.DirectoryManagerPassword + "\n" +
		cfg.MasterPassword + "\n" + cfg.MasterPassword + "\n"
}

// AddAdminPrincipal creates the administrative principal in the database.
func (k *LocalKDC) AddAdminPrincipal(ctx context.Context, cfg *RealmConfig) error {
	query := fmt.Sprintf("addprinc -pw %s %s", cfg.AdminPassword, cfg.AdminPrincipal())
	out, err := execute.Run(ctx, execute.Options{
		Command: "kadmin.local",
		Args:    []string{"-r", cfg.RealmName, "-q", query},
		Quiet:   true,
		Capture: true,
		Timeout: adminToolTimeout,
	})
	if err != nil {
		// kadmin.local exits zero on "already exists" but guard anyway for
		// re-runs against partially initialized volumes.
		if strings.Contains(out, "already exists") {
			return nil
		}
		return cerr.Wrap(err, "kadmin.local addprinc")
	}
	return nil
}

// ExportAdminKeytab extracts the keytab kadmind authenticates with: the
// admin principal plus the kadmin service principals.
func (k *LocalKDC) ExportAdminKeytab(ctx context.Context, cfg *RealmConfig, keytabPath string) error {
	query := fmt.Sprintf("ktadd -k %s %s kadmin/admin kadmin/changepw", keytabPath, cfg.AdminPrincipal())
	_, err := execute.Run(ctx, execute.Options{
		Command: "kadmin.local",
		Args:    []string{"-r", cfg.RealmName, "-q", query},
		Quiet:   true,
		Capture: true,
		Timeout: adminToolTimeout,
	})
	if err != nil {
		return cerr.Wrap(err, "kadmin.local ktadd")
	}
	return nil
}
