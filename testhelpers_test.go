package tokenauth

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/tokenauth/credential"
	"github.com/MrEthical07/tokenauth/password"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.SigningKey = testSigningKey
	cfg.JWT.Issuer = "tokenauth"
	cfg.JWT.Audience = "tokenauth-api"
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Security.MaxLoginAttempts = 3
	return cfg
}

func fastHasher(t *testing.T) *password.Argon2 {
	t.Helper()
	h, err := password.NewArgon2(password.Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	return h
}

func fooIdentity(t *testing.T) Identity {
	t.Helper()
	hash, err := fastHasher(t).Hash("password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return Identity{
		ID:         1,
		Identifier: "foo@gmail.com",
		SecretHash: hash,
		GivenName:  "foo",
		FamilyName: "bar",
	}
}

// countingStore wraps a store and counts lookups.
type countingStore struct {
	inner credential.IdentityStore
	calls atomic.Int64
}

func (s *countingStore) FindByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	s.calls.Add(1)
	return s.inner.FindByIdentifier(ctx, identifier)
}

func newMemoryStore(t *testing.T, ids ...Identity) *countingStore {
	t.Helper()
	store, err := credential.NewMemoryStore(ids...)
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	return &countingStore{inner: store}
}

type clock struct {
	now atomic.Int64
}

func newClock(t time.Time) *clock {
	c := &clock{}
	c.now.Store(t.UnixNano())
	return c
}

func (c *clock) Now() time.Time {
	return time.Unix(0, c.now.Load()).UTC()
}

func (c *clock) Advance(d time.Duration) {
	c.now.Add(int64(d))
}
