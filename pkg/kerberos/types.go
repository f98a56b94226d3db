/* pkg/kerberos/types.go */

package kerberos

import (
	"fmt"
	"strings"
)

// Backend identifies which principal store the realm runs against.
type Backend int

const (
	BackendLocal Backend = iota
	BackendLDAP
)

func (b Backend) String() string {
	if b == BackendLDAP {
		return "ldap"
	}
	return "local"
}

// BackendDecision is the selector's output. The only legal transition is
// LDAP → Local via Downgrade; once downgraded the decision is locked for
// the remainder of the run.
type BackendDecision struct {
	backend Backend
	reason  string
	locked  bool
}

func NewDecision(b Backend, reason string) *BackendDecision {
	return &BackendDecision{backend: b, reason: reason, locked: b == BackendLocal}
}

func (d *BackendDecision) Backend() Backend { return d.backend }
func (d *BackendDecision) Reason() string   { return d.reason }
func (d *BackendDecision) IsLDAP() bool     { return d.backend == BackendLDAP }

// Downgrade flips the decision to the local backend permanently. Calling it
// on an already-local decision is a no-op.
func (d *BackendDecision) Downgrade(reason string) {
	if d.backend == BackendLocal {
		return
	}
	d.backend = BackendLocal
	d.reason = reason
	d.locked = true
}

// Locked reports whether the decision can still change.
func (d *BackendDecision) Locked() bool { return d.locked }

// RealmConfig holds every environment-derived value, resolved exactly once
// at startup and passed explicitly from then on.
type RealmConfig struct {
	RealmName      string
	MasterPassword string

	BaseDN      string
	KDCDN       string
	KDCPassword string

	AdminDN       string
	AdminPassword string

	ContainerDN string

	DirectoryManagerDN       string
	DirectoryManagerPassword string

	ForceLDAP          bool
	DestroyAndRecreate bool
	LLDAPUIPort        int
}

// AdminPrincipal is the administrative principal created in the local
// database, qualified with the realm.
func (c *RealmConfig) AdminPrincipal() string {
	return fmt.Sprintf("admin/admin@%s", c.RealmName)
}

// LDAPEndpoint describes the directory server the LDAP backend talks to.
type LDAPEndpoint struct {
	Scheme string // "ldap" or "ldaps"
	Host   string
	Port   int
}

func (e LDAPEndpoint) URL() string {
	return fmt.Sprintf("%s://%s:%d", e.Scheme, e.Host, e.Port)
}

// DomainFromRealm derives the DNS domain used for the domain_realm mapping.
func DomainFromRealm(realm string) string {
	return strings.ToLower(realm)
}
