// pkg/secrets/resolver.go

package secrets

import (
	"os"
	"strings"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/crypto"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/shared"
	"github.com/joho/godotenv"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const generatedLength = 24

// LoadEnvFile layers an optional dotenv file under the process environment.
// godotenv.Load never overrides variables that are already set, so the
// precedence env > env-file is preserved. A missing file is normal.
func LoadEnvFile(rc *cerberus_io.RuntimeContext) {
	logger := otelzap.Ctx(rc.Ctx)

	path := os.Getenv("CERBERUS_ENV_FILE")
	if path == "" {
		path = shared.CerberusEnvFile
	}

	if _, err := os.Stat(path); err != nil {
		logger.Debug("No env file present", zap.String("path", path))
		return
	}
	if err := godotenv.Load(path); err != nil {
		logger.Warn("Failed to load env file", zap.String("path", path), zap.Error(err))
		return
	}
	logger.Info("Loaded env file", zap.String("path", path))
}

// Resolve returns the value for name with precedence: environment variable,
// then the file named by <name>_FILE, then the default. A referenced secret
// file that does not exist logs a warning and falls through.
func Resolve(rc *cerberus_io.RuntimeContext, name, def string) string {
	value, source := resolve(rc, name, def)
	otelzap.Ctx(rc.Ctx).Debug("Resolved configuration value",
		zap.String("name", name),
		zap.String("source", source),
	)
	return value
}

// ResolveCritical is Resolve for values that affect security or correctness:
// falling back to the widely-published default is loudly warned about.
func ResolveCritical(rc *cerberus_io.RuntimeContext, name, def string) string {
	value, source := resolve(rc, name, def)
	logger := otelzap.Ctx(rc.Ctx)
	if source == "default" {
		logger.Warn("⚠️  INSECURE DEFAULT IN USE — set this before any production deployment",
			zap.String("name", name),
			zap.String("default", def),
		)
	} else {
		logger.Debug("Resolved configuration value",
			zap.String("name", name),
			zap.String("source", source),
		)
	}
	return value
}

// ResolveGenerated resolves name like Resolve but generates a fresh random
// value instead of using a fixed default.
func ResolveGenerated(rc *cerberus_io.RuntimeContext, name string) string {
	value, source := resolve(rc, name, "")
	logger := otelzap.Ctx(rc.Ctx)
	if source != "default" {
		logger.Debug("Resolved configuration value",
			zap.String("name", name),
			zap.String("source", source),
		)
		return value
	}

	generated, err := crypto.GeneratePassword(generatedLength)
	if err != nil {
		// crypto/rand failing means the platform is broken; surface loudly
		// but keep the documented never-silently-empty invariant.
		logger.Error("Random generation failed, using fallback default", zap.String("name", name), zap.Error(err))
		return "changeme-" + name
	}
	logger.Info("Generated random value", zap.String("name", name))
	return generated
}

func resolve(rc *cerberus_io.RuntimeContext, name, def string) (value, source string) {
	if v := os.Getenv(name); v != "" {
		return v, "env"
	}

	if path := os.Getenv(name + "_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			otelzap.Ctx(rc.Ctx).Warn("Secret file not readable, falling back to default",
				zap.String("name", name),
				zap.String("path", path),
				zap.Error(err),
			)
		} else {
			return strings.TrimSpace(string(data)), "secret file"
		}
	}

	return def, "default"
}
