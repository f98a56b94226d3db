// pkg/kerberos/render.go

package kerberos

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/shared"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// DBModuleName is the [dbmodules] stanza key referenced by database_module.
const DBModuleName = "openldap_ldapconf"

// LDAPModule is the database-module stanza emitted when and only when the
// final backend decision is LDAP.
type LDAPModule struct {
	Name        string
	KDCBindDN   string
	AdminBindDN string
	ContainerDN string
	StashFile   string
	ServerURL   string
}

// Krb5Conf is the typed form of /etc/krb5.conf. Building one requires the
// final BackendDecision, which is what keeps a provisional decision from
// ever reaching a rendered file.
type Krb5Conf struct {
	Realm    string
	Domain   string
	DBModule *LDAPModule
}

// KDCConf is the typed form of <data>/kdc.conf.
type KDCConf struct {
	Realm       string
	ACLFile     string
	AdminKeytab string
	DBModule    *LDAPModule
}

func buildModule(cfg *RealmConfig, endpoint LDAPEndpoint) *LDAPModule {
	return &LDAPModule{
		Name:        DBModuleName,
		KDCBindDN:   cfg.KDCDN,
		AdminBindDN: cfg.AdminDN,
		ContainerDN: cfg.ContainerDN,
		StashFile:   shared.StashPath(),
		ServerURL:   endpoint.URL(),
	}
}

// BuildKrb5Conf assembles the krb5.conf document for the given decision.
func BuildKrb5Conf(decision *BackendDecision, cfg *RealmConfig, endpoint LDAPEndpoint) *Krb5Conf {
	doc := &Krb5Conf{
		Realm:  cfg.RealmName,
		Domain: DomainFromRealm(cfg.RealmName),
	}
	if decision.IsLDAP() {
		doc.DBModule = buildModule(cfg, endpoint)
	}
	return doc
}

// BuildKDCConf assembles the kdc.conf document for the given decision.
func BuildKDCConf(decision *BackendDecision, cfg *RealmConfig, endpoint LDAPEndpoint) *KDCConf {
	doc := &KDCConf{
		Realm:       cfg.RealmName,
		ACLFile:     shared.ACLPath(),
		AdminKeytab: shared.KeytabPath(),
	}
	if decision.IsLDAP() {
		doc.DBModule = buildModule(cfg, endpoint)
	}
	return doc
}

func renderModule(b *strings.Builder, m *LDAPModule) {
	fmt.Fprintf(b, "[dbmodules]\n")
	fmt.Fprintf(b, "    %s = {\n", m.Name)
	fmt.Fprintf(b, "        db_library = kldap\n")
	fmt.Fprintf(b, "        ldap_kdc_dn = %s\n", m.KDCBindDN)
	fmt.Fprintf(b, "        ldap_kadmind_dn = %s\n", m.AdminBindDN)
	fmt.Fprintf(b, "        ldap_kerberos_container_dn = %s\n", m.ContainerDN)
	fmt.Fprintf(b, "        ldap_service_password_file = %s\n", m.StashFile)
	fmt.Fprintf(b, "        ldap_servers = %s\n", m.ServerURL)
	fmt.Fprintf(b, "        ldap_conns_per_server = 5\n")
	fmt.Fprintf(b, "    }\n")
}

// Render serializes the krb5.conf document. Pure function of the receiver.
func (c *Krb5Conf) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[libdefaults]\n")
	fmt.Fprintf(&b, "    default_realm = %s\n", c.Realm)
	fmt.Fprintf(&b, "    dns_lookup_realm = false\n")
	fmt.Fprintf(&b, "    dns_lookup_kdc = false\n")
	fmt.Fprintf(&b, "    forwardable = true\n")
	fmt.Fprintf(&b, "    rdns = false\n")
	fmt.Fprintf(&b, "\n[realms]\n")
	fmt.Fprintf(&b, "    %s = {\n", c.Realm)
	fmt.Fprintf(&b, "        kdc = localhost:%d\n", shared.PortKDC)
	fmt.Fprintf(&b, "        admin_server = localhost:%d\n", shared.PortKAdmin)
	if c.DBModule != nil {
		fmt.Fprintf(&b, "        database_module = %s\n", c.DBModule.Name)
	}
	fmt.Fprintf(&b, "    }\n")
	fmt.Fprintf(&b, "\n[domain_realm]\n")
	fmt.Fprintf(&b, "    .%s = %s\n", c.Domain, c.Realm)
	fmt.Fprintf(&b, "    %s = %s\n", c.Domain, c.Realm)
	fmt.Fprintf(&b, "\n[logging]\n")
	fmt.Fprintf(&b, "    kdc = FILE:%s/krb5kdc.log\n", shared.LogDir)
	fmt.Fprintf(&b, "    admin_server = FILE:%s/kadmind.log\n", shared.LogDir)
	fmt.Fprintf(&b, "    default = FILE:%s/krb5lib.log\n", shared.LogDir)
	if c.DBModule != nil {
		fmt.Fprintf(&b, "\n")
		renderModule(&b, c.DBModule)
	}

	return b.String()
}

// Render serializes the kdc.conf document. Pure function of the receiver.
func (c *KDCConf) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[kdcdefaults]\n")
	fmt.Fprintf(&b, "    kdc_ports = %d\n", shared.PortKDC)
	fmt.Fprintf(&b, "    kdc_tcp_ports = %d\n", shared.PortKDC)
	fmt.Fprintf(&b, "\n[realms]\n")
	fmt.Fprintf(&b, "    %s = {\n", c.Realm)
	if c.DBModule != nil {
		fmt.Fprintf(&b, "        database_module = %s\n", c.DBModule.Name)
	}
	fmt.Fprintf(&b, "        acl_file = %s\n", c.ACLFile)
	fmt.Fprintf(&b, "        admin_keytab = FILE:%s\n", c.AdminKeytab)
	fmt.Fprintf(&b, "        max_life = 10h 0m 0s\n")
	fmt.Fprintf(&b, "        max_renewable_life = 7d 0h 0m 0s\n")
	fmt.Fprintf(&b, "        supported_enctypes = aes256-cts-hmac-sha384-192:normal aes128-cts-hmac-sha256-128:normal\n")
	fmt.Fprintf(&b, "    }\n")
	if c.DBModule != nil {
		fmt.Fprintf(&b, "\n")
		renderModule(&b, c.DBModule)
	}

	return b.String()
}

// RenderConfigs writes both realm configuration files for the given
// decision. Called twice per run: once provisionally before provisioning
// (the LDAP database utility reads the files) and once with the final
// decision after every downgrade point.
func RenderConfigs(rc *cerberus_io.RuntimeContext, decision *BackendDecision, cfg *RealmConfig, endpoint LDAPEndpoint) error {
	logger := otelzap.Ctx(rc.Ctx)

	krb5 := BuildKrb5Conf(decision, cfg, endpoint)
	kdc := BuildKDCConf(decision, cfg, endpoint)

	if err := writeConfig(shared.Krb5ConfPath, krb5.Render()); err != nil {
		return cerr.Wrap(err, "write krb5.conf")
	}
	if err := writeConfig(shared.KDCConfPath(), kdc.Render()); err != nil {
		return cerr.Wrap(err, "write kdc.conf")
	}

	logger.Info("Rendered realm configuration",
		zap.String("backend", decision.Backend().String()),
		zap.String("krb5_conf", shared.Krb5ConfPath),
		zap.String("kdc_conf", shared.KDCConfPath()),
	)
	return nil
}

func writeConfig(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
