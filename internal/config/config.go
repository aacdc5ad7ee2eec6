// Package config loads the service configuration for cmd/tokenauth from a
// YAML file and TOKENAUTH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/MrEthical07/tokenauth"
)

const EnvPrefix = "TOKENAUTH"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Security   SecurityConfig   `mapstructure:"security"`
	Audit      AuditConfig      `mapstructure:"audit"`
	Identities []IdentityConfig `mapstructure:"identities"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type JWTConfig struct {
	// Key is the signing key itself. Prefer KeyRef outside of development.
	Key string `mapstructure:"key"`

	// KeyRef names where the key is stored: "env:NAME" or "file:PATH".
	// Exactly one of Key and KeyRef must be set.
	KeyRef string `mapstructure:"key_ref"`

	Issuer   string        `mapstructure:"issuer"`
	Audience string        `mapstructure:"audience"`
	Subject  string        `mapstructure:"subject"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	// Addr enables the Redis identity store and login throttling when set.
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type SecurityConfig struct {
	LoginThrottle    bool          `mapstructure:"login_throttle"`
	IPThrottle       bool          `mapstructure:"ip_throttle"`
	MaxLoginAttempts int           `mapstructure:"max_login_attempts"`
	LoginCooldown    time.Duration `mapstructure:"login_cooldown"`
}

// AuditConfig enables JSON audit lines on stderr.
type AuditConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	BufferSize int  `mapstructure:"buffer_size"`
}

// IdentityConfig seeds one identity. SecretHash takes precedence over Secret;
// Secret is hashed at startup and never kept.
type IdentityConfig struct {
	ID          int64  `mapstructure:"id"`
	Identifier  string `mapstructure:"identifier"`
	Secret      string `mapstructure:"secret"`
	SecretHash  string `mapstructure:"secret_hash"`
	GivenName   string `mapstructure:"given_name"`
	FamilyName  string `mapstructure:"family_name"`
	DisplayName string `mapstructure:"display_name"`
}

// NewViper returns a viper instance with defaults for every key, reading
// TOKENAUTH_* variables (jwt.key_ref -> TOKENAUTH_JWT_KEY_REF).
func NewViper() *viper.Viper {
	v := viper.New()
	def := tokenauth.DefaultConfig()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("jwt.key", "")
	v.SetDefault("jwt.key_ref", "")
	v.SetDefault("jwt.issuer", "")
	v.SetDefault("jwt.audience", "")
	v.SetDefault("jwt.subject", "")
	v.SetDefault("jwt.ttl", def.JWT.TTL)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", def.Security.RedisPrefix)

	v.SetDefault("security.login_throttle", def.Security.EnableLoginThrottle)
	v.SetDefault("security.ip_throttle", def.Security.EnableIPThrottle)
	v.SetDefault("security.max_login_attempts", def.Security.MaxLoginAttempts)
	v.SetDefault("security.login_cooldown", def.Security.LoginCooldown)

	v.SetDefault("audit.enabled", def.Audit.Enabled)
	v.SetDefault("audit.buffer_size", def.Audit.BufferSize)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path (or ./tokenauth.yaml when path is empty) into v and decodes
// the result. A missing default file is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("tokenauth")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// SigningKey resolves the configured key material.
func (c JWTConfig) SigningKey() ([]byte, error) {
	switch {
	case c.Key != "" && c.KeyRef != "":
		return nil, misconfigured("jwt.key and jwt.key_ref are mutually exclusive")
	case c.Key != "":
		return []byte(c.Key), nil
	case c.KeyRef != "":
		return resolveKeyRef(c.KeyRef)
	default:
		return nil, misconfigured("jwt.key or jwt.key_ref is required")
	}
}

// resolveKeyRef reads "env:NAME" or "file:PATH". File contents are trimmed of
// a trailing newline only.
func resolveKeyRef(ref string) ([]byte, error) {
	scheme, target, ok := strings.Cut(ref, ":")
	if !ok || strings.TrimSpace(target) == "" {
		return nil, misconfigured(fmt.Sprintf("jwt.key_ref %q must be env:NAME or file:PATH", ref))
	}

	switch scheme {
	case "env":
		val, ok := os.LookupEnv(target)
		if !ok || val == "" {
			return nil, misconfigured(fmt.Sprintf("jwt.key_ref: environment variable %q is empty or unset", target))
		}
		return []byte(val), nil
	case "file":
		raw, err := os.ReadFile(target)
		if err != nil {
			return nil, misconfigured(fmt.Sprintf("jwt.key_ref: %v", err))
		}
		raw = []byte(strings.TrimRight(string(raw), "\r\n"))
		if len(raw) == 0 {
			return nil, misconfigured(fmt.Sprintf("jwt.key_ref: file %q is empty", target))
		}
		return raw, nil
	default:
		return nil, misconfigured(fmt.Sprintf("jwt.key_ref: unsupported scheme %q", scheme))
	}
}

// EngineConfig maps the service configuration onto the library configuration.
func (c *Config) EngineConfig() (tokenauth.Config, error) {
	key, err := c.JWT.SigningKey()
	if err != nil {
		return tokenauth.Config{}, err
	}

	out := tokenauth.DefaultConfig()
	out.JWT.SigningKey = key
	out.JWT.Issuer = c.JWT.Issuer
	out.JWT.Audience = c.JWT.Audience
	out.JWT.Subject = c.JWT.Subject
	if c.JWT.TTL > 0 {
		out.JWT.TTL = c.JWT.TTL
	}

	out.Security.EnableLoginThrottle = c.Security.LoginThrottle
	out.Security.EnableIPThrottle = c.Security.IPThrottle
	out.Security.MaxLoginAttempts = c.Security.MaxLoginAttempts
	out.Security.LoginCooldown = c.Security.LoginCooldown
	if c.Redis.Prefix != "" {
		out.Security.RedisPrefix = c.Redis.Prefix
	}

	out.Audit.Enabled = c.Audit.Enabled
	if c.Audit.BufferSize > 0 {
		out.Audit.BufferSize = c.Audit.BufferSize
	}

	if err := out.Validate(); err != nil {
		return tokenauth.Config{}, err
	}
	return out, nil
}

func misconfigured(msg string) error {
	return fmt.Errorf("%w: %s", tokenauth.ErrMisconfiguration, msg)
}
