// pkg/shared/constants.go

package shared

import "path/filepath"

const Version = "0.2.1"

// Persistent volume layout. Everything under DataDir survives container
// restarts; Krb5ConfPath lives outside the volume and is regenerated on
// every start.
const (
	DataDir         = "/var/lib/krb5kdc"
	Krb5ConfPath    = "/etc/krb5.conf"
	RunDir          = "/run/cerberus"
	LogDir          = "/var/log/cerberus"
	CerberusEnvFile = "/etc/cerberus/cerberus.env"

	MarkerFileName  = ".cerberus_provisioned"
	StashFileName   = "service.keyfile"
	ACLFileName     = "kadm5.acl"
	KeytabFileName  = "kadm5.keytab"
	KDCConfFileName = "kdc.conf"
	PrincipalDBName = "principal"
)

func DataPath(name string) string { return filepath.Join(DataDir, name) }

func StashPath() string   { return DataPath(StashFileName) }
func ACLPath() string     { return DataPath(ACLFileName) }
func KeytabPath() string  { return DataPath(KeytabFileName) }
func KDCConfPath() string { return DataPath(KDCConfFileName) }
