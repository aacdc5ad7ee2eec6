package password

import (
	"errors"
	"strings"
	"testing"
)

func fastConfig() Config {
	return Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func newHasher(t *testing.T, cfg Config) *Argon2 {
	t.Helper()
	h, err := NewArgon2(cfg)
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}
	return h
}

func TestHashAndVerify(t *testing.T) {
	hasher := newHasher(t, fastConfig())

	hash, err := hasher.Hash("password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", hash)
	}

	ok, err := hasher.Verify("password", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatal("expected secret verification to succeed")
	}
}

func TestHashIsSalted(t *testing.T) {
	hasher := newHasher(t, fastConfig())
	a, err := hasher.Hash("password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	b, err := hasher.Hash("password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct hashes for the same secret")
	}
}

func TestVerifyIsCaseSensitive(t *testing.T) {
	hasher := newHasher(t, fastConfig())
	hash, err := hasher.Hash("password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	for _, wrong := range []string{"Password", "password ", "wrong", ""} {
		ok, err := hasher.Verify(wrong, hash)
		if err != nil {
			t.Fatalf("Verify(%q) error: %v", wrong, err)
		}
		if ok {
			t.Fatalf("expected %q not to match", wrong)
		}
	}
}

func TestVerifyAcceptsPaddedEncoding(t *testing.T) {
	hasher := newHasher(t, fastConfig())
	hash, err := hasher.Hash("password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	parts := strings.Split(hash, "$")
	for i := 4; i <= 5; i++ {
		for len(parts[i])%4 != 0 {
			parts[i] += "="
		}
	}
	ok, err := hasher.Verify("password", strings.Join(parts, "$"))
	if err != nil || !ok {
		t.Fatalf("expected padded hash to verify: ok=%v err=%v", ok, err)
	}
}

func TestNeedsUpgrade(t *testing.T) {
	weak := newHasher(t, fastConfig())
	hash, err := weak.Hash("upgrade-me")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	strong := newHasher(t, DefaultConfig())
	needs, err := strong.NeedsUpgrade(hash)
	if err != nil {
		t.Fatalf("NeedsUpgrade error: %v", err)
	}
	if !needs {
		t.Fatal("expected weaker hash to need upgrade")
	}

	needs, err = weak.NeedsUpgrade(hash)
	if err != nil {
		t.Fatalf("NeedsUpgrade error: %v", err)
	}
	if needs {
		t.Fatal("expected hash with current parameters not to need upgrade")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	hasher := newHasher(t, fastConfig())
	good, err := hasher.Hash("malformed-test")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	cases := map[string]string{
		"not phc":       "not-a-phc-hash",
		"wrong version": strings.Replace(good, "$v=19$", "$v=18$", 1),
		"wrong algo":    strings.Replace(good, "$argon2id$", "$argon2i$", 1),
		"low memory":    strings.Replace(good, "m=8192", "m=1024", 1),
		"extra param":   strings.Replace(good, "p=1", "p=1,x=2", 1),
	}
	for name, encoded := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := hasher.Verify("malformed-test", encoded); !errors.Is(err, ErrMalformedHash) {
				t.Fatalf("expected ErrMalformedHash, got %v", err)
			}
		})
	}
}

func TestLengthBounds(t *testing.T) {
	cfg := fastConfig()
	cfg.MinPasswordBytes = 8
	cfg.MaxPasswordBytes = 64
	hasher := newHasher(t, cfg)

	if _, err := hasher.Hash("short"); !errors.Is(err, ErrPasswordShort) {
		t.Fatalf("expected ErrPasswordShort, got %v", err)
	}
	if _, err := hasher.Hash(strings.Repeat("a", 65)); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}

	exact := strings.Repeat("b", 64)
	hash, err := hasher.Hash(exact)
	if err != nil {
		t.Fatalf("expected max-length secret to hash: %v", err)
	}
	if _, err := hasher.Verify(strings.Repeat("c", 65), hash); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected Verify to reject long secret, got %v", err)
	}
}

func TestDefaultBoundsApplied(t *testing.T) {
	hasher := newHasher(t, fastConfig())
	if _, err := hasher.Hash(""); !errors.Is(err, ErrPasswordShort) {
		t.Fatalf("expected empty secret to be rejected, got %v", err)
	}
	if _, err := hasher.Hash(strings.Repeat("d", DefaultMaxPasswordBytes+1)); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected secret over %d bytes to be rejected", DefaultMaxPasswordBytes)
	}
}

func TestNewArgon2RejectsWeakConfig(t *testing.T) {
	cfg := fastConfig()
	cfg.Memory = 1024
	if _, err := NewArgon2(cfg); err == nil {
		t.Fatal("expected low memory config to be rejected")
	}

	cfg = fastConfig()
	cfg.MinPasswordBytes = 10
	cfg.MaxPasswordBytes = 5
	if _, err := NewArgon2(cfg); err == nil {
		t.Fatal("expected inverted length bounds to be rejected")
	}
}
