package kerberos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearRealmEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"REALM_NAME", "MASTER_PASS", "BASE_DN",
		"KDC_DN", "KDC_PASS", "ADMIN_DN", "ADMIN_PASS",
		"CONTAINER_DN", "DM_DN", "DM_PASS",
		"USE_LDAP", "DESTROY_AND_RECREATE", "LLDAP_UI_PORT",
		"LDAP_SCHEME", "LDAP_HOST", "LDAP_PORT",
	} {
		t.Setenv(name, "")
		t.Setenv(name+"_FILE", "")
	}
}

func TestLoadRealmConfigDefaults(t *testing.T) {
	clearRealmEnv(t)
	rc := testContext(t)

	cfg := LoadRealmConfig(rc)

	assert.Equal(t, "EXAMPLE.COM", cfg.RealmName)
	assert.Equal(t, "mastertemp", cfg.MasterPassword)
	assert.Equal(t, "dc=example,dc=com", cfg.BaseDN)
	assert.Equal(t, "cn=kdc-service,dc=example,dc=com", cfg.KDCDN)
	assert.Equal(t, "cn=kadmin-service,dc=example,dc=com", cfg.AdminDN)
	assert.Equal(t, "cn=krbContainer,dc=example,dc=com", cfg.ContainerDN)
	assert.Equal(t, "uid=admin,ou=people,dc=example,dc=com", cfg.DirectoryManagerDN)
	assert.Equal(t, "password", cfg.DirectoryManagerPassword)
	assert.False(t, cfg.ForceLDAP)
	assert.False(t, cfg.DestroyAndRecreate)

	// Service passwords are generated, never a fixed default.
	assert.Len(t, cfg.KDCPassword, 24)
	assert.Len(t, cfg.AdminPassword, 24)
	assert.NotEqual(t, cfg.KDCPassword, cfg.AdminPassword)
}

func TestLoadRealmConfigDNsFollowBaseDN(t *testing.T) {
	clearRealmEnv(t)
	t.Setenv("BASE_DN", "dc=corp,dc=internal")
	rc := testContext(t)

	cfg := LoadRealmConfig(rc)

	assert.Equal(t, "cn=kdc-service,dc=corp,dc=internal", cfg.KDCDN)
	assert.Equal(t, "cn=kadmin-service,dc=corp,dc=internal", cfg.AdminDN)
	assert.Equal(t, "cn=krbContainer,dc=corp,dc=internal", cfg.ContainerDN)
	assert.Equal(t, "uid=admin,ou=people,dc=corp,dc=internal", cfg.DirectoryManagerDN)
}

func TestLoadRealmConfigExplicitDNsWin(t *testing.T) {
	clearRealmEnv(t)
	t.Setenv("KDC_DN", "cn=my-kdc,ou=services,dc=corp,dc=internal")
	t.Setenv("USE_LDAP", "TRUE")
	rc := testContext(t)

	cfg := LoadRealmConfig(rc)

	assert.Equal(t, "cn=my-kdc,ou=services,dc=corp,dc=internal", cfg.KDCDN)
	assert.True(t, cfg.ForceLDAP)
}

func TestLoadEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		scheme   string
		host     string
		port     string
		expected LDAPEndpoint
	}{
		{
			name:     "empty host means local backend",
			expected: LDAPEndpoint{Scheme: "ldap", Host: "", Port: 3890},
		},
		{
			name:     "plain scheme defaults to the lldap port",
			host:     "directory",
			expected: LDAPEndpoint{Scheme: "ldap", Host: "directory", Port: 3890},
		},
		{
			name:     "ldaps defaults to 636",
			scheme:   "ldaps",
			host:     "directory",
			expected: LDAPEndpoint{Scheme: "ldaps", Host: "directory", Port: 636},
		},
		{
			name:     "explicit port wins",
			scheme:   "ldaps",
			host:     "directory",
			port:     "10636",
			expected: LDAPEndpoint{Scheme: "ldaps", Host: "directory", Port: 10636},
		},
		{
			name:     "unknown scheme falls back to ldap",
			scheme:   "ldapi",
			host:     "directory",
			expected: LDAPEndpoint{Scheme: "ldap", Host: "directory", Port: 3890},
		},
		{
			name:     "garbage port falls back to the scheme default",
			scheme:   "ldaps",
			host:     "directory",
			port:     "not-a-port",
			expected: LDAPEndpoint{Scheme: "ldaps", Host: "directory", Port: 636},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearRealmEnv(t)
			t.Setenv("LDAP_SCHEME", tt.scheme)
			t.Setenv("LDAP_HOST", tt.host)
			t.Setenv("LDAP_PORT", tt.port)
			rc := testContext(t)

			assert.Equal(t, tt.expected, LoadEndpoint(rc))
		})
	}
}

func TestEndpointURL(t *testing.T) {
	ep := LDAPEndpoint{Scheme: "ldaps", Host: "directory", Port: 636}
	assert.Equal(t, "ldaps://directory:636", ep.URL())
}
