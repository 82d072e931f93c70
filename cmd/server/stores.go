package main

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	soidc "go.pilab.hu/shadow-oidc"
	"go.pilab.hu/shadow-oidc/cache"
	redisstore "go.pilab.hu/shadow-oidc/cache/redis"
	"go.pilab.hu/shadow-oidc/config"
	"go.pilab.hu/shadow-oidc/mongodb"
)

// newSessionStore builds the configured backend. The returned func releases
// its resources.
func newSessionStore(ctx context.Context, cfg *config.Config) (soidc.SessionStore, func(), error) {
	switch cfg.SessionBackend {
	case config.StorageTypeRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}

		return redisstore.NewSessionStore(client, cfg.RedisPrefix, cfg.SessionTTL), func() {
			if err := client.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing Redis client")
			}
		}, nil

	case config.StorageTypeMongoDB:
		client, err := mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}

		store := mongodb.NewSessionStore(client.Database(cfg.MongoDBName), cfg.SessionTTL)
		if err := store.EnsureIndexes(ctx); err != nil {
			mongodb.Disconnect(context.Background(), client)
			return nil, nil, err
		}

		return store, func() { mongodb.Disconnect(context.Background(), client) }, nil

	default:
		store := cache.NewMemorySessionStore(cfg.SessionTTL)
		return store, func() { _ = store.Close() }, nil
	}
}
