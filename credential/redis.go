package credential

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	fieldID          = "id"
	fieldIdentifier  = "identifier"
	fieldSecretHash  = "secret_hash"
	fieldGivenName   = "given_name"
	fieldFamilyName  = "family_name"
	fieldDisplayName = "display_name"
)

// RedisStore keeps one hash per identity under "<prefix>:identity:<identifier>".
//
//	Performance: FindByIdentifier is one HGETALL.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

var _ IdentityStore = (*RedisStore)(nil)

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ta"
	}
	return &RedisStore{redis: client, prefix: prefix}
}

func (s *RedisStore) key(identifier string) string {
	return s.prefix + ":identity:" + identifier
}

func (s *RedisStore) FindByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	fields, err := s.redis.HGetAll(ctx, s.key(identifier)).Result()
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(fields) == 0 {
		return Identity{}, ErrNotFound
	}

	id, err := strconv.ParseInt(fields[fieldID], 10, 64)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: corrupt id for %q", ErrStoreUnavailable, identifier)
	}
	return Identity{
		ID:          id,
		Identifier:  fields[fieldIdentifier],
		SecretHash:  fields[fieldSecretHash],
		GivenName:   fields[fieldGivenName],
		FamilyName:  fields[fieldFamilyName],
		DisplayName: fields[fieldDisplayName],
	}, nil
}

// Put writes or replaces an identity. It is used for seeding; the verifier
// itself never writes.
func (s *RedisStore) Put(ctx context.Context, id Identity) error {
	if id.Identifier == "" || id.SecretHash == "" {
		return ErrInvalidInput
	}
	key := s.key(id.Identifier)
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, map[string]any{
			fieldID:          strconv.FormatInt(id.ID, 10),
			fieldIdentifier:  id.Identifier,
			fieldSecretHash:  id.SecretHash,
			fieldGivenName:   id.GivenName,
			fieldFamilyName:  id.FamilyName,
			fieldDisplayName: id.DisplayName,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, identifier string) error {
	if err := s.redis.Del(ctx, s.key(identifier)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time availability check and its latency.
func (s *RedisStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return time.Since(start), nil
}
