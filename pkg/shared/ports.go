// pkg/shared/ports.go

package shared

// Service ports. The realm service listens on KDC over both TCP and UDP;
// kadmind listens on KAdmin over TCP only.
const (
	PortKDC    = 88
	PortKAdmin = 749

	// Directory defaults: LDAPS uses the standard secure port, plain LDAP
	// defaults to the LLDAP test-profile port.
	PortLDAPS     = 636
	PortLDAPPlain = 3890
	PortLLDAPUI   = 17170
)
