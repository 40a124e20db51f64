package app

import (
	"context"
	"fmt"

	"github.com/noteapp/client/internal/core/ports"
	"github.com/noteapp/client/internal/infrastructure/config"
	"github.com/noteapp/client/internal/infrastructure/db/memory"
	"github.com/noteapp/client/internal/infrastructure/db/mongo"
	"github.com/noteapp/client/internal/infrastructure/db/redis"
	"github.com/noteapp/client/internal/infrastructure/db/sqlite"
)

// OpenStore opens the KVStore selected by cfg.Driver.
func OpenStore(ctx context.Context, cfg config.StorageConfig) (ports.KVStore, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		return sqlite.Open(ctx, sqlite.Config{Path: cfg.SQLite.Path})
	case config.DriverRedis:
		return redis.Open(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	case config.DriverMongo:
		return mongo.Open(ctx, mongo.Config{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		})
	case config.DriverMemory:
		return memory.NewStore(), nil
	}
	return nil, fmt.Errorf("open store: unknown driver %q", cfg.Driver)
}
