// pkg/kerberos/config.go

package kerberos

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/secrets"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/shared"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Widely-published test defaults. Using any of these in production trips the
// insecure-default warning in the resolver.
const (
	DefaultRealm      = "EXAMPLE.COM"
	DefaultBaseDN     = "dc=example,dc=com"
	DefaultMasterPass = "mastertemp"
	DefaultDMPass     = "password"
)

// DN derivation templates, applied when the corresponding variable is unset.
const (
	kdcDNTemplate       = "cn=kdc-service,%s"
	adminDNTemplate     = "cn=kadmin-service,%s"
	containerDNTemplate = "cn=krbContainer,%s"
	dmDNTemplate        = "uid=admin,ou=people,%s"
)

// LoadRealmConfig resolves the full realm configuration through the secret
// resolver. Every DN defaults relative to the base DN; passwords either fall
// back to a documented insecure default or are freshly generated, never
// silently empty.
func LoadRealmConfig(rc *cerberus_io.RuntimeContext) *RealmConfig {
	baseDN := secrets.ResolveCritical(rc, "BASE_DN", DefaultBaseDN)

	cfg := &RealmConfig{
		RealmName:      secrets.ResolveCritical(rc, "REALM_NAME", DefaultRealm),
		MasterPassword: secrets.ResolveCritical(rc, "MASTER_PASS", DefaultMasterPass),

		BaseDN:      baseDN,
		KDCDN:       secrets.Resolve(rc, "KDC_DN", fmt.Sprintf(kdcDNTemplate, baseDN)),
		KDCPassword: secrets.ResolveGenerated(rc, "KDC_PASS"),

		AdminDN:       secrets.Resolve(rc, "ADMIN_DN", fmt.Sprintf(adminDNTemplate, baseDN)),
		AdminPassword: secrets.ResolveGenerated(rc, "ADMIN_PASS"),

		ContainerDN: secrets.Resolve(rc, "CONTAINER_DN", fmt.Sprintf(containerDNTemplate, baseDN)),

		DirectoryManagerDN:       secrets.Resolve(rc, "DM_DN", fmt.Sprintf(dmDNTemplate, baseDN)),
		DirectoryManagerPassword: secrets.ResolveCritical(rc, "DM_PASS", DefaultDMPass),

		ForceLDAP:          parseBool(secrets.Resolve(rc, "USE_LDAP", "false")),
		DestroyAndRecreate: parseBool(secrets.Resolve(rc, "DESTROY_AND_RECREATE", "false")),
		LLDAPUIPort:        parsePort(rc, "LLDAP_UI_PORT", secrets.Resolve(rc, "LLDAP_UI_PORT", ""), shared.PortLLDAPUI),
	}

	return cfg
}

// LoadEndpoint resolves the LDAP endpoint. Host may legitimately be empty:
// that is the signal for the local backend. Port defaults depend on scheme.
func LoadEndpoint(rc *cerberus_io.RuntimeContext) LDAPEndpoint {
	logger := otelzap.Ctx(rc.Ctx)

	scheme := strings.ToLower(secrets.Resolve(rc, "LDAP_SCHEME", "ldap"))
	if scheme != "ldap" && scheme != "ldaps" {
		logger.Warn("Invalid LDAP_SCHEME, falling back to ldap", zap.String("scheme", scheme))
		scheme = "ldap"
	}

	defPort := shared.PortLDAPPlain
	if scheme == "ldaps" {
		defPort = shared.PortLDAPS
	}

	return LDAPEndpoint{
		Scheme: scheme,
		Host:   secrets.Resolve(rc, "LDAP_HOST", ""),
		Port:   parsePort(rc, "LDAP_PORT", secrets.Resolve(rc, "LDAP_PORT", ""), defPort),
	}
}

func parseBool(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}

func parsePort(rc *cerberus_io.RuntimeContext, name, v string, def int) int {
	if v == "" {
		return def
	}
	p, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || p < 1 || p > 65535 {
		otelzap.Ctx(rc.Ctx).Warn("Invalid port value, using default",
			zap.String("name", name),
			zap.String("value", v),
			zap.Int("default", def),
		)
		return def
	}
	return p
}
