package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/tokenauth"
	"github.com/MrEthical07/tokenauth/credential"
	"github.com/MrEthical07/tokenauth/password"
)

const sampleYAML = `
server:
  addr: ":9090"
jwt:
  key: "0123456789abcdef0123456789abcdef"
  issuer: "tokenauth"
  audience: "tokenauth-api"
  ttl: 2h
security:
  max_login_attempts: 7
audit:
  enabled: true
identities:
  - id: 1
    identifier: foo@gmail.com
    secret: password
    given_name: foo
    family_name: bar
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func fastHasher(t *testing.T) *password.Argon2 {
	t.Helper()
	h, err := password.NewArgon2(password.Config{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}
	return h
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(NewViper(), writeFile(t, "tokenauth.yaml", sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Fatalf("addr: got %q", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Fatalf("shutdown timeout default: got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.JWT.TTL != 2*time.Hour {
		t.Fatalf("ttl: got %v", cfg.JWT.TTL)
	}
	if cfg.Security.MaxLoginAttempts != 7 || !cfg.Security.LoginThrottle {
		t.Fatalf("security: got %+v", cfg.Security)
	}
	if cfg.Redis.Prefix != "ta" {
		t.Fatalf("redis prefix default: got %q", cfg.Redis.Prefix)
	}
	if len(cfg.Identities) != 1 || cfg.Identities[0].GivenName != "foo" {
		t.Fatalf("identities: got %+v", cfg.Identities)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("TOKENAUTH_JWT_ISSUER", "from-env")
	t.Setenv("TOKENAUTH_SERVER_ADDR", ":7070")

	cfg, err := Load(NewViper(), writeFile(t, "tokenauth.yaml", sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWT.Issuer != "from-env" || cfg.Server.Addr != ":7070" {
		t.Fatalf("env override not applied: %+v %+v", cfg.JWT, cfg.Server)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(NewViper(), filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestSigningKeyResolution(t *testing.T) {
	t.Setenv("TOKENAUTH_TEST_KEY", "env-key-material")
	keyFile := writeFile(t, "key", "file-key-material\n")
	emptyFile := writeFile(t, "empty", "\n")

	tests := []struct {
		name    string
		cfg     JWTConfig
		want    string
		wantErr bool
	}{
		{name: "inline", cfg: JWTConfig{Key: "inline"}, want: "inline"},
		{name: "env ref", cfg: JWTConfig{KeyRef: "env:TOKENAUTH_TEST_KEY"}, want: "env-key-material"},
		{name: "file ref", cfg: JWTConfig{KeyRef: "file:" + keyFile}, want: "file-key-material"},
		{name: "both", cfg: JWTConfig{Key: "a", KeyRef: "env:TOKENAUTH_TEST_KEY"}, wantErr: true},
		{name: "neither", cfg: JWTConfig{}, wantErr: true},
		{name: "unset env", cfg: JWTConfig{KeyRef: "env:TOKENAUTH_TEST_KEY_UNSET"}, wantErr: true},
		{name: "empty file", cfg: JWTConfig{KeyRef: "file:" + emptyFile}, wantErr: true},
		{name: "unknown scheme", cfg: JWTConfig{KeyRef: "vault:secret/jwt"}, wantErr: true},
		{name: "no scheme", cfg: JWTConfig{KeyRef: "TOKENAUTH_TEST_KEY"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.SigningKey()
			if tt.wantErr {
				if !errors.Is(err, tokenauth.ErrMisconfiguration) {
					t.Fatalf("expected ErrMisconfiguration, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestEngineConfig(t *testing.T) {
	cfg, err := Load(NewViper(), writeFile(t, "tokenauth.yaml", sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ec, err := cfg.EngineConfig()
	if err != nil {
		t.Fatalf("EngineConfig: %v", err)
	}
	if ec.JWT.TTL != 2*time.Hour || ec.JWT.Issuer != "tokenauth" || ec.Security.MaxLoginAttempts != 7 {
		t.Fatalf("unexpected engine config: %+v", ec)
	}

	if !ec.Audit.Enabled || ec.Audit.BufferSize != 1024 {
		t.Fatalf("audit not mapped: %+v", ec.Audit)
	}

	cfg.JWT.Key = ""
	if _, err := cfg.EngineConfig(); !errors.Is(err, tokenauth.ErrMisconfiguration) {
		t.Fatalf("expected ErrMisconfiguration without key, got %v", err)
	}
}

func TestSeedIdentities(t *testing.T) {
	hasher := fastHasher(t)
	preHashed, err := hasher.Hash("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	cfg := &Config{Identities: []IdentityConfig{
		{ID: 1, Identifier: "foo@gmail.com", Secret: "password"},
		{ID: 2, Identifier: "bar@gmail.com", SecretHash: preHashed},
	}}
	ids, err := cfg.SeedIdentities(hasher)
	if err != nil {
		t.Fatalf("SeedIdentities: %v", err)
	}
	if ok, _ := hasher.Verify("password", ids[0].SecretHash); !ok {
		t.Fatal("inline secret was not hashed correctly")
	}
	if ids[1].SecretHash != preHashed {
		t.Fatal("pre-hashed secret must be kept as is")
	}

	for name, bad := range map[string]IdentityConfig{
		"no identifier": {Secret: "x"},
		"no secret":     {Identifier: "x"},
		"bad hash":      {Identifier: "x", SecretHash: "plaintext"},
	} {
		cfg := &Config{Identities: []IdentityConfig{bad}}
		if _, err := cfg.SeedIdentities(hasher); !errors.Is(err, tokenauth.ErrMisconfiguration) {
			t.Fatalf("%s: expected ErrMisconfiguration, got %v", name, err)
		}
	}
}

func TestOpenStore(t *testing.T) {
	ids := []credential.Identity{{ID: 1, Identifier: "foo@gmail.com", SecretHash: "$argon2id$stub"}}

	mem, err := OpenStore(context.Background(), nil, "ta", ids)
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	if mem.Redis != nil {
		t.Fatal("memory store must not report a redis backend")
	}
	if _, err := mem.FindByIdentifier(context.Background(), "foo@gmail.com"); err != nil {
		t.Fatalf("memory lookup: %v", err)
	}

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	rs, err := OpenStore(context.Background(), rdb, "ta", ids)
	if err != nil {
		t.Fatalf("redis store: %v", err)
	}
	if rs.Redis == nil {
		t.Fatal("expected redis backend")
	}
	got, err := rs.FindByIdentifier(context.Background(), "foo@gmail.com")
	if err != nil || got.ID != 1 {
		t.Fatalf("redis lookup: %+v %v", got, err)
	}
	if !mr.Exists("ta:identity:foo@gmail.com") {
		t.Fatal("expected seeded hash key")
	}
}

func TestRedisClientDisabledWithoutAddr(t *testing.T) {
	if c := (RedisConfig{}).Client(); c != nil {
		t.Fatal("expected nil client without addr")
	}
}
