package kerberos

import (
	"context"
	"testing"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/stretchr/testify/assert"
)

func testContext(t *testing.T) *cerberus_io.RuntimeContext {
	t.Helper()
	return cerberus_io.NewContext(context.Background(), "test")
}

func TestSelectBackend(t *testing.T) {
	rc := testContext(t)

	tests := []struct {
		name      string
		hostSet   bool
		forceLDAP bool
		expected  Backend
	}{
		{name: "no host, no force", hostSet: false, forceLDAP: false, expected: BackendLocal},
		{name: "host configured", hostSet: true, forceLDAP: false, expected: BackendLDAP},
		{name: "host configured and forced", hostSet: true, forceLDAP: true, expected: BackendLDAP},
		{name: "forced without host", hostSet: false, forceLDAP: true, expected: BackendLocal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := SelectBackend(rc, tt.hostSet, tt.forceLDAP)
			assert.Equal(t, tt.expected, decision.Backend())
			assert.NotEmpty(t, decision.Reason())
		})
	}
}

func TestDowngradeIsMonotonic(t *testing.T) {
	decision := NewDecision(BackendLDAP, "ldap host configured")
	assert.True(t, decision.IsLDAP())
	assert.False(t, decision.Locked())

	decision.Downgrade("provisioning failed")
	assert.Equal(t, BackendLocal, decision.Backend())
	assert.Equal(t, "provisioning failed", decision.Reason())
	assert.True(t, decision.Locked())

	// A second downgrade must not clobber the original reason, and the
	// decision can never flip back to LDAP.
	decision.Downgrade("probe failed")
	assert.Equal(t, BackendLocal, decision.Backend())
	assert.Equal(t, "provisioning failed", decision.Reason())
}

func TestLocalDecisionStartsLocked(t *testing.T) {
	decision := NewDecision(BackendLocal, "no ldap host configured")
	assert.True(t, decision.Locked())
	decision.Downgrade("noop")
	assert.Equal(t, "no ldap host configured", decision.Reason())
}

func TestDomainFromRealm(t *testing.T) {
	assert.Equal(t, "example.com", DomainFromRealm("EXAMPLE.COM"))
	assert.Equal(t, "kerberos.internal", DomainFromRealm("KERBEROS.INTERNAL"))
}
