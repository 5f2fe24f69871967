package authcore

import (
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/virelio/authcore/blacklist"
	internalaudit "github.com/virelio/authcore/internal/audit"
	"github.com/virelio/authcore/jwt"
	"github.com/virelio/authcore/password"
)

// Builder assembles an [Engine]. Collaborators are optional except the user
// directory and a revocation backing (either a Redis client or a custom
// [RevocationStore]).
type Builder struct {
	config      Config
	redis       redis.UniversalClient
	revocations RevocationStore
	users       UserDirectory
	mailer      Mailer
	auditSink   AuditSink
	now         func() time.Time
}

// New starts a builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis supplies the client backing the stock blacklist revocation
// store. Ignored when [Builder.WithRevocationStore] is also used.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithRevocationStore substitutes a custom revocation store for the stock
// Redis blacklist.
func (b *Builder) WithRevocationStore(store RevocationStore) *Builder {
	b.revocations = store
	return b
}

// WithUserDirectory supplies the persistence collaborator. Required.
func (b *Builder) WithUserDirectory(users UserDirectory) *Builder {
	b.users = users
	return b
}

// WithMailer supplies the outgoing-mail collaborator. Defaults to
// [NoOpMailer].
func (b *Builder) WithMailer(mailer Mailer) *Builder {
	b.mailer = mailer
	return b
}

// WithAuditSink supplies the destination for audit events. Without a sink
// the dispatcher is disabled regardless of [AuditConfig].
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// withClock overrides the engine clock. Test hook.
func (b *Builder) withClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the configuration and wires the engine. The builder can
// be discarded afterwards.
func (b *Builder) Build() (*Engine, error) {
	cfg := b.config
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if b.users == nil {
		return nil, errors.New("build: user directory required")
	}

	tokens, err := jwt.NewManager(jwt.Config{
		Access:        jwt.TokenConfig{Secret: cfg.Tokens.Access.Secret, TTL: cfg.Tokens.Access.TTL},
		Confirmation:  jwt.TokenConfig{Secret: cfg.Tokens.Confirmation.Secret, TTL: cfg.Tokens.Confirmation.TTL},
		ResetPassword: jwt.TokenConfig{Secret: cfg.Tokens.ResetPassword.Secret, TTL: cfg.Tokens.ResetPassword.TTL},
		Refresh:       jwt.TokenConfig{Secret: cfg.Tokens.Refresh.Secret, TTL: cfg.Tokens.Refresh.TTL},
		Issuer:        cfg.Domain,
		Leeway:        cfg.Tokens.Leeway,
	})
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	hasher, err := password.NewHasher(cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	revocations := b.revocations
	if revocations == nil {
		if b.redis == nil {
			return nil, errors.New("build: revocation store or redis client required")
		}
		retention := cfg.Blacklist.Retention
		if retention <= 0 {
			retention = cfg.Tokens.Refresh.TTL
		}
		revocations = blacklist.NewStore(b.redis, cfg.Blacklist.RedisPrefix, retention)
	}

	mailer := b.mailer
	if mailer == nil {
		mailer = NoOpMailer{}
	}

	auditCfg := internalaudit.Config{
		Enabled:    cfg.Audit.Enabled && b.auditSink != nil,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		tokens:      tokens,
		hasher:      hasher,
		users:       b.users,
		mailer:      mailer,
		revocations: revocations,
		audit:       internalaudit.NewDispatcher(auditCfg, b.auditSink),
		metrics:     NewMetrics(cfg.Metrics),
		now:         now,
	}, nil
}
