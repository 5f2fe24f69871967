package authcore

import (
	"errors"
	"time"

	"github.com/virelio/authcore/password"
)

// Config assembles every tunable of the engine. Zero value is not usable;
// start from [DefaultConfig] and override.
type Config struct {
	// Domain is used as the token issuer and as the audience fallback when
	// an operation receives no per-request origin.
	Domain    string
	Tokens    TokensConfig
	Password  password.Config
	Blacklist BlacklistConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

// TokensConfig holds the four independent secret/TTL pairs. Secrets must be
// pairwise distinct; verification never falls back to another kind's secret.
type TokensConfig struct {
	Access        TokenConfig
	Confirmation  TokenConfig
	ResetPassword TokenConfig
	Refresh       TokenConfig

	// Leeway tolerates clock skew during expiry validation, capped at two
	// minutes.
	Leeway time.Duration
}

// TokenConfig is one secret/TTL pair.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
}

// BlacklistConfig controls the stock Redis revocation store.
type BlacklistConfig struct {
	// RedisPrefix namespaces blacklist keys. Defaults to "bl".
	RedisPrefix string
	// Retention bounds how long a revocation record is kept. Zero defaults
	// to the refresh TTL: once every JWT naming a tokenID has expired, the
	// record no longer protects anything.
	Retention time.Duration
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the baseline configuration: ten-minute access
// tokens, one-hour confirmation, thirty-minute reset, seven-day refresh,
// moderate Argon2id parameters, audit and metrics enabled. Secrets and
// Domain have no default and must be supplied.
func DefaultConfig() Config {
	return Config{
		Tokens: TokensConfig{
			Access:        TokenConfig{TTL: 10 * time.Minute},
			Confirmation:  TokenConfig{TTL: time.Hour},
			ResetPassword: TokenConfig{TTL: 30 * time.Minute},
			Refresh:       TokenConfig{TTL: 7 * 24 * time.Hour},
		},
		Password: password.DefaultConfig(),
		Blacklist: BlacklistConfig{
			RedisPrefix: "bl",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func validateConfig(cfg Config) error {
	if cfg.Domain == "" {
		return errors.New("config: domain required")
	}
	// Token secrets and TTLs are validated by jwt.NewManager, password
	// parameters by password.NewHasher.
	if cfg.Audit.Enabled && cfg.Audit.BufferSize < 0 {
		return errors.New("config: negative audit buffer")
	}
	if cfg.Blacklist.Retention < 0 {
		return errors.New("config: negative blacklist retention")
	}
	return nil
}
