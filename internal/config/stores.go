package config

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/tokenauth/credential"
	"github.com/MrEthical07/tokenauth/password"
)

// Client returns a Redis client for c, or nil when no address is configured.
func (c RedisConfig) Client() redis.UniversalClient {
	if c.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	})
}

// SeedIdentities converts the configured identities, hashing inline secrets
// with hasher.
func (c *Config) SeedIdentities(hasher *password.Argon2) ([]credential.Identity, error) {
	out := make([]credential.Identity, 0, len(c.Identities))
	for i, ic := range c.Identities {
		if ic.Identifier == "" {
			return nil, misconfigured(fmt.Sprintf("identities[%d]: identifier is required", i))
		}

		hash := ic.SecretHash
		switch {
		case hash != "":
			if _, err := hasher.NeedsUpgrade(hash); err != nil {
				return nil, misconfigured(fmt.Sprintf("identities[%d]: %v", i, err))
			}
		case ic.Secret != "":
			h, err := hasher.Hash(ic.Secret)
			if err != nil {
				return nil, misconfigured(fmt.Sprintf("identities[%d]: %v", i, err))
			}
			hash = h
		default:
			return nil, misconfigured(fmt.Sprintf("identities[%d]: secret or secret_hash is required", i))
		}

		out = append(out, credential.Identity{
			ID:          ic.ID,
			Identifier:  ic.Identifier,
			SecretHash:  hash,
			GivenName:   ic.GivenName,
			FamilyName:  ic.FamilyName,
			DisplayName: ic.DisplayName,
		})
	}
	return out, nil
}

// Store is the identity store selected by the configuration.
type Store struct {
	credential.IdentityStore

	// Redis is set when the store is Redis-backed; the HTTP health check
	// pings it.
	Redis *credential.RedisStore
}

// OpenStore builds the identity store. With a Redis client the seeded
// identities are written to Redis (overwriting existing records with the same
// identifier); without one they form a static in-memory store.
func OpenStore(ctx context.Context, client redis.UniversalClient, prefix string, ids []credential.Identity) (*Store, error) {
	if client == nil {
		mem, err := credential.NewMemoryStore(ids...)
		if err != nil {
			return nil, misconfigured(err.Error())
		}
		return &Store{IdentityStore: mem}, nil
	}

	rs := credential.NewRedisStore(client, prefix)
	for _, id := range ids {
		if err := rs.Put(ctx, id); err != nil {
			return nil, fmt.Errorf("seed identity %q: %w", id.Identifier, err)
		}
	}
	return &Store{IdentityStore: rs, Redis: rs}, nil
}
