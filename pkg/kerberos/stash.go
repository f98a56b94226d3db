// pkg/kerberos/stash.go

package kerberos

import (
	"fmt"
	"os"
	"path/filepath"

	cerr "github.com/cockroachdb/errors"
)

// WriteStashFile persists service-account credentials in the krb5 service
// password file format consumed by the kldap driver: one "dn#{HEX}<hex>"
// line per account. Mode 0600, the file holds live directory credentials.
func WriteStashFile(path string, creds map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return cerr.Wrap(err, "create stash directory")
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return cerr.Wrap(err, "open stash file")
	}
	defer f.Close()

	for dn, password := range creds {
		if _, err := fmt.Fprintf(f, "%s#{HEX}%x\n", dn, password); err != nil {
			return cerr.Wrap(err, "write stash entry")
		}
	}
	return nil
}
