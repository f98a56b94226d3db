// pkg/ldap/client.go

package ldap

import (
	"context"
	"crypto/tls"
	"sort"
	"strings"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/kerberos"
	cerr "github.com/cockroachdb/errors"
	"github.com/go-ldap/ldap/v3"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Client implements kerberos.DirectoryClient over go-ldap. One bound
// connection per bootstrap run; the provisioner is strictly sequential.
type Client struct {
	conn *ldap.Conn
}

// Connect dials the endpoint and binds as the directory manager.
func Connect(rc *cerberus_io.RuntimeContext, endpoint kerberos.LDAPEndpoint, bindDN, password string) (*Client, error) {
	logger := otelzap.Ctx(rc.Ctx)

	var opts []ldap.DialOpt
	if endpoint.Scheme == "ldaps" {
		// In-cluster directory certs rarely carry the service hostname.
		opts = append(opts, ldap.DialWithTLSConfig(&tls.Config{InsecureSkipVerify: true}))
	}

	conn, err := ldap.DialURL(endpoint.URL(), opts...)
	if err != nil {
		return nil, cerr.Wrapf(err, "dial %s", endpoint.URL())
	}

	if err := conn.Bind(bindDN, password); err != nil {
		conn.Close()
		return nil, cerr.Wrapf(err, "bind as %s", bindDN)
	}

	logger.Info("Connected to directory server",
		zap.String("url", endpoint.URL()),
		zap.String("bind_dn", bindDN),
	)
	return &Client{conn: conn}, nil
}

func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// EnsureServiceIdentity creates the service entry at dn. An entry that
// already exists is success: identities persist across container restarts.
func (c *Client) EnsureServiceIdentity(ctx context.Context, dn string) error {
	attr, value, err := firstRDN(dn)
	if err != nil {
		return err
	}

	add := ldap.NewAddRequest(dn, nil)
	switch attr {
	case "uid":
		add.Attribute("objectClass", []string{"top", "account", "simpleSecurityObject"})
		add.Attribute("uid", []string{value})
		// Placeholder, replaced by SetPassword immediately after.
		add.Attribute("userPassword", []string{"*"})
	default:
		add.Attribute("objectClass", []string{"top", "person"})
		add.Attribute("cn", []string{value})
		add.Attribute("sn", []string{value})
	}

	if err := c.conn.Add(add); err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultEntryAlreadyExists) {
			otelzap.Ctx(ctx).Info("Service identity already exists", zap.String("dn", dn))
			return nil
		}
		return cerr.Wrapf(err, "add entry %s", dn)
	}
	return nil
}

// SetPassword changes the entry's password through the password modify
// extended operation.
func (c *Client) SetPassword(ctx context.Context, dn, password string) error {
	req := ldap.NewPasswordModifyRequest(dn, "", password)
	if _, err := c.conn.PasswordModify(req); err != nil {
		return cerr.Wrapf(err, "password modify for %s", dn)
	}
	return nil
}

// GrantContainerAccess adds one ACI per service DN allowing full write
// access to the container subtree.
func (c *Client) GrantContainerAccess(ctx context.Context, containerDN string, serviceDNs ...string) error {
	values := make([]string, 0, len(serviceDNs))
	for _, dn := range serviceDNs {
		values = append(values, aciValue(dn))
	}

	mod := ldap.NewModifyRequest(containerDN, nil)
	mod.Add("aci", values)

	if err := c.conn.Modify(mod); err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultAttributeOrValueExists) {
			otelzap.Ctx(ctx).Info("Container access already granted", zap.String("dn", containerDN))
			return nil
		}
		return cerr.Wrapf(err, "grant access on %s", containerDN)
	}
	return nil
}

// DestroyRealmSubtree deletes the container subtree, deepest entries first.
// A container that never existed is success.
func (c *Client) DestroyRealmSubtree(ctx context.Context, containerDN string) error {
	logger := otelzap.Ctx(ctx)

	search := ldap.NewSearchRequest(
		containerDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
		"(objectClass=*)",
		[]string{"dn"},
		nil,
	)

	result, err := c.conn.Search(search)
	if err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject) {
			logger.Info("No existing realm subtree to destroy", zap.String("dn", containerDN))
			return nil
		}
		return cerr.Wrapf(err, "search subtree %s", containerDN)
	}

	dns := make([]string, 0, len(result.Entries))
	for _, entry := range result.Entries {
		dns = append(dns, entry.DN)
	}
	// Children before parents.
	sort.Slice(dns, func(i, j int) bool {
		return strings.Count(dns[i], ",") > strings.Count(dns[j], ",")
	})

	for _, dn := range dns {
		if err := c.conn.Del(ldap.NewDelRequest(dn, nil)); err != nil {
			return cerr.Wrapf(err, "delete %s", dn)
		}
	}

	logger.Info("Destroyed realm subtree",
		zap.String("dn", containerDN),
		zap.Int("entries", len(dns)),
	)
	return nil
}

func aciValue(serviceDN string) string {
	return `(targetattr="*")(version 3.0; acl "kerberos-service-` + rdnValue(serviceDN) +
		`"; allow (all) userdn="ldap:///` + serviceDN + `";)`
}

func firstRDN(dn string) (attr, value string, err error) {
	first, _, _ := strings.Cut(dn, ",")
	attr, value, ok := strings.Cut(strings.TrimSpace(first), "=")
	if !ok || attr == "" || value == "" {
		return "", "", cerr.Newf("malformed DN %q", dn)
	}
	return strings.ToLower(strings.TrimSpace(attr)), strings.TrimSpace(value), nil
}

func rdnValue(dn string) string {
	_, value, err := firstRDN(dn)
	if err != nil {
		return "unknown"
	}
	return value
}
