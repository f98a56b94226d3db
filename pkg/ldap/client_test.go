package ldap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstRDN(t *testing.T) {
	tests := []struct {
		name    string
		dn      string
		attr    string
		value   string
		wantErr bool
	}{
		{name: "cn entry", dn: "cn=kdc-service,dc=example,dc=com", attr: "cn", value: "kdc-service"},
		{name: "uid entry", dn: "uid=admin,ou=people,dc=example,dc=com", attr: "uid", value: "admin"},
		{name: "attr case folded", dn: "CN=krbContainer,dc=example,dc=com", attr: "cn", value: "krbContainer"},
		{name: "spaces trimmed", dn: " cn = kdc-service , dc=example", attr: "cn", value: "kdc-service"},
		{name: "no equals", dn: "kdc-service,dc=example", wantErr: true},
		{name: "empty value", dn: "cn=,dc=example", wantErr: true},
		{name: "empty dn", dn: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr, value, err := firstRDN(tt.dn)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.attr, attr)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestACIValueTargetsServiceDN(t *testing.T) {
	aci := aciValue("cn=kdc-service,dc=example,dc=com")
	assert.Contains(t, aci, `acl "kerberos-service-kdc-service"`)
	assert.Contains(t, aci, `userdn="ldap:///cn=kdc-service,dc=example,dc=com"`)
	assert.Contains(t, aci, "allow (all)")
}

func TestRDNValueFallsBackOnMalformedDN(t *testing.T) {
	assert.Equal(t, "unknown", rdnValue("not-a-dn"))
}
