// pkg/ldap/probe.go
package ldap

import (
	"time"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/kerberos"
	"github.com/go-ldap/ldap/v3"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Prober checks directory reachability before the daemons start. Dial and
// SleepUnit are injectable so tests can simulate failing endpoints without
// waiting on real sockets.
type Prober struct {
	MaxAttempts int
	SleepUnit   time.Duration
	Dial        func(url string) error
}

func NewProber() *Prober {
	return &Prober{
		MaxAttempts: 5,
		SleepUnit:   time.Second,
		Dial:        dialAndReadRootDSE,
	}
}

// Probe performs up to MaxAttempts connectivity checks against the
// directory's base-level metadata, sleeping 0, 1, 2, ... sleep units before
// successive attempts. It returns false once all attempts are exhausted;
// the caller downgrades the backend decision and never retries LDAP again
// within the run.
func (p *Prober) Probe(rc *cerberus_io.RuntimeContext, endpoint kerberos.LDAPEndpoint) bool {
	logger := otelzap.Ctx(rc.Ctx)
	url := endpoint.URL()

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * p.SleepUnit)
		}

		err := p.Dial(url)
		if err == nil {
			logger.Info("Directory server reachable",
				zap.String("url", url),
				zap.Int("attempt", attempt+1),
			)
			return true
		}

		logger.Warn("Directory server not reachable",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", p.MaxAttempts),
			zap.Error(err),
		)
	}

	logger.Warn("Directory server unreachable after all attempts, downgrading to the local database",
		zap.String("url", url),
		zap.Int("attempts", p.MaxAttempts),
	)
	return false
}

// dialAndReadRootDSE connects anonymously and reads the root DSE, the
// cheapest operation every directory server answers.
func dialAndReadRootDSE(url string) error {
	conn, err := ldap.DialURL(url)
	if err != nil {
		return err
	}
	defer conn.Close()

	search := ldap.NewSearchRequest(
		"",
		ldap.ScopeBaseObject, ldap.NeverDerefAliases, 0, 5, false,
		"(objectClass=*)",
		[]string{"namingContexts"},
		nil,
	)
	_, err = conn.Search(search)
	return err
}
