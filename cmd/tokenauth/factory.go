package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/MrEthical07/tokenauth"
	"github.com/MrEthical07/tokenauth/internal/config"
)

type runtime struct {
	engine *tokenauth.Engine
	store  *config.Store
	redis  redis.UniversalClient
}

// buildRuntime resolves the signing key, seeds the identity store and builds
// the engine. Any configuration problem is returned before a listener opens.
func buildRuntime(ctx context.Context, cfg *config.Config) (*runtime, error) {
	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return nil, err
	}

	hasher, err := tokenauth.NewPasswordHasher(engineCfg.Password)
	if err != nil {
		return nil, err
	}
	ids, err := cfg.SeedIdentities(hasher)
	if err != nil {
		return nil, err
	}

	client := cfg.Redis.Client()
	store, err := config.OpenStore(ctx, client, engineCfg.Security.RedisPrefix, ids)
	if err != nil {
		if client != nil {
			_ = client.Close()
		}
		return nil, err
	}

	builder := tokenauth.New().
		WithConfig(engineCfg).
		WithIdentityStore(store).
		WithRedis(client).
		WithLogger(log.With().Str("component", "engine").Logger())
	if engineCfg.Audit.Enabled {
		builder = builder.WithAuditSink(tokenauth.NewJSONWriterSink(os.Stderr))
	}
	engine, err := builder.Build()
	if err != nil {
		if client != nil {
			_ = client.Close()
		}
		return nil, fmt.Errorf("building engine: %w", err)
	}

	log.Debug().
		Int("identities", len(ids)).
		Bool("redis", client != nil).
		Dur("ttl", engine.TokenTTL()).
		Msg("engine ready")

	return &runtime{engine: engine, store: store, redis: client}, nil
}

func (r *runtime) Close() error {
	r.engine.Close()
	if r.redis != nil {
		if err := r.redis.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			return err
		}
	}
	return nil
}
