package tokenauth

import (
	"errors"
	"time"

	"github.com/MrEthical07/tokenauth/credential"
	"github.com/MrEthical07/tokenauth/internal/rate"
	"github.com/MrEthical07/tokenauth/jwt"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Builder collects dependencies and produces an immutable Engine. A Builder
// can be used for exactly one Build call.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	identityStore credential.IdentityStore
	auditSink     AuditSink
	logger        zerolog.Logger
	clock         func() time.Time

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
		logger: zerolog.Nop(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis enables login throttling and, when no identity store is set,
// the Redis identity store under Security.RedisPrefix.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

func (b *Builder) WithIdentityStore(store credential.IdentityStore) *Builder {
	b.identityStore = store
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the logger used for backend failures that do not surface
// to the caller.
func (b *Builder) WithLogger(l zerolog.Logger) *Builder {
	b.logger = l
	return b
}

// WithClock overrides time.Now for issuance, expiry checks, and audit timestamps.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// Build validates the configuration and wires the engine. Any configuration
// error is returned wrapped in ErrMisconfiguration.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := b.identityStore
	if store == nil {
		if b.redis == nil {
			return nil, misconfigured("identity store or redis client required")
		}
		store = credential.NewRedisStore(b.redis, cfg.Security.RedisPrefix)
	}

	ph, err := NewPasswordHasher(cfg.Password)
	if err != nil {
		return nil, err
	}

	verifier, err := credential.NewVerifier(store, ph)
	if err != nil {
		return nil, err
	}

	jm, err := jwt.NewManager(jwt.Config{
		Key:      cloneBytes(cfg.JWT.SigningKey),
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		Subject:  cfg.JWT.Subject,
		TTL:      cfg.JWT.TTL,
		Now:      b.clock,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:       cfg,
		verifier:     verifier,
		passwordHash: ph,
		jwtManager:   jm,
		audit:        newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:      NewMetrics(cfg.Metrics),
		logger:       b.logger,
		clock:        b.clock,
	}

	if cfg.Security.EnableLoginThrottle {
		if b.redis != nil {
			engine.rateLimiter = rate.New(b.redis, rate.Config{
				MaxAttempts:      cfg.Security.MaxLoginAttempts,
				Cooldown:         cfg.Security.LoginCooldown,
				EnableIPThrottle: cfg.Security.EnableIPThrottle,
				Prefix:           cfg.Security.RedisPrefix,
			})
		} else {
			b.logger.Warn().Msg("login throttling enabled but no redis client configured; throttling disabled")
		}
	}

	b.built = true

	return engine, nil
}
