// pkg/kerberos/selector.go

package kerberos

import (
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// SelectBackend makes the provisional backend decision. A configured LDAP
// host enables the LDAP backend; USE_LDAP=true without a host is a
// configuration mistake that warns and runs local. The returned decision is
// provisional when LDAP: the provisioner and the reachability prober may
// still downgrade it, and each downgrade is permanent for the run.
func SelectBackend(rc *cerberus_io.RuntimeContext, hostSet, forceLDAP bool) *BackendDecision {
	logger := otelzap.Ctx(rc.Ctx)

	if forceLDAP && !hostSet {
		logger.Warn("USE_LDAP=true but LDAP_HOST is not set, running with the local database")
		return NewDecision(BackendLocal, "ldap requested without a host")
	}

	if hostSet {
		logger.Info("LDAP host configured, provisionally selecting the LDAP backend")
		return NewDecision(BackendLDAP, "ldap host configured")
	}

	logger.Info("No LDAP host configured, using the local database",
		zap.String("backend", BackendLocal.String()))
	return NewDecision(BackendLocal, "no ldap host configured")
}
