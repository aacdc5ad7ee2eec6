package tokenauth

import (
	"fmt"
	"time"

	"github.com/MrEthical07/tokenauth/jwt"
	"github.com/MrEthical07/tokenauth/password"
)

// Config is built once at startup and copied into the Engine by Build.
type Config struct {
	JWT      JWTConfig
	Password PasswordConfig
	Security SecurityConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig configures token issuance and verification.
type JWTConfig struct {
	SigningKey []byte
	Issuer     string
	Audience   string
	// Subject, when set, is written as sub on every token instead of the
	// identity's identifier.
	Subject string
	TTL     time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds Argon2id parameters used to verify stored secret hashes.
type PasswordConfig struct {
	Memory         uint32 // in KB
	Time           uint32
	Parallelism    uint8
	SaltLength     uint32
	KeyLength      uint32
	MinSecretBytes int
	MaxSecretBytes int
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig controls failed-login throttling. Throttling requires Redis.
type SecurityConfig struct {
	EnableLoginThrottle bool
	EnableIPThrottle    bool
	MaxLoginAttempts    int
	LoginCooldown       time.Duration
	RedisPrefix         string
}

type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns production defaults. SigningKey is left empty and must
// be supplied.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			TTL: jwt.DefaultTTL,
		},
		Password: PasswordConfig{
			Memory:         65536,
			Time:           3,
			Parallelism:    2,
			SaltLength:     16,
			KeyLength:      32,
			MinSecretBytes: 1,
			MaxSecretBytes: 1024,
		},
		Security: SecurityConfig{
			EnableLoginThrottle: true,
			EnableIPThrottle:    false,
			MaxLoginAttempts:    5,
			LoginCooldown:       15 * time.Minute,
			RedisPrefix:         "ta",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.SigningKey = cloneBytes(cfg.JWT.SigningKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration problem as ErrMisconfiguration.
func (c *Config) Validate() error {
	if len(c.JWT.SigningKey) == 0 {
		return misconfigured("JWT SigningKey is required")
	}
	if c.JWT.TTL <= 0 {
		return misconfigured("JWT TTL must be > 0")
	}

	if c.Password.Memory == 0 || c.Password.Time == 0 || c.Password.Parallelism == 0 {
		return misconfigured("Password Memory, Time and Parallelism must be > 0")
	}
	if c.Password.SaltLength < 16 {
		return misconfigured("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return misconfigured("Password KeyLength must be >= 16")
	}
	if c.Password.MinSecretBytes < 0 {
		return misconfigured("Password MinSecretBytes must be >= 0")
	}
	if c.Password.MaxSecretBytes != 0 && c.Password.MaxSecretBytes < c.Password.MinSecretBytes {
		return misconfigured("Password MaxSecretBytes must be >= MinSecretBytes")
	}

	if c.Security.EnableLoginThrottle {
		if c.Security.MaxLoginAttempts <= 0 {
			return misconfigured("Security MaxLoginAttempts must be > 0")
		}
		if c.Security.LoginCooldown <= 0 {
			return misconfigured("Security LoginCooldown must be > 0")
		}
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return misconfigured("Audit BufferSize must be > 0 when enabled")
	}
	return nil
}

func misconfigured(msg string) error {
	return fmt.Errorf("%w: %s", ErrMisconfiguration, msg)
}

// NewPasswordHasher builds the Argon2id hasher described by cfg. Stores seeded
// before Build use it so their hashes match what the engine verifies.
func NewPasswordHasher(cfg PasswordConfig) (*password.Argon2, error) {
	ph, err := password.NewArgon2(password.Config{
		Memory:           cfg.Memory,
		Time:             cfg.Time,
		Parallelism:      cfg.Parallelism,
		SaltLength:       cfg.SaltLength,
		KeyLength:        cfg.KeyLength,
		MinPasswordBytes: cfg.MinSecretBytes,
		MaxPasswordBytes: cfg.MaxSecretBytes,
	})
	if err != nil {
		return nil, misconfigured(err.Error())
	}
	return ph, nil
}
