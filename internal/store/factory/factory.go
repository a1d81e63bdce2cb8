// Package factory escolhe a implementação do store a partir da config.
package factory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/radieske/pub-bets/internal/shared/cache"
	"github.com/radieske/pub-bets/internal/shared/config"
	"github.com/radieske/pub-bets/internal/shared/db"
	"github.com/radieske/pub-bets/internal/store"
	"github.com/radieske/pub-bets/internal/store/live"
	"github.com/radieske/pub-bets/internal/store/memory"
	"github.com/radieske/pub-bets/internal/store/postgres"
)

// Open devolve o store configurado. STORE=postgres usa Postgres + Redis
// (cache e pub/sub); STORE=memory não precisa de infraestrutura
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (store.Store, error) {
	switch cfg.Store {
	case "memory":
		log.Warn("using in-memory store, data is lost on restart")
		return memory.New(), nil
	case "postgres", "":
		pg, err := OpenPostgres(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		rdb, err := cache.ConnectRedis(cfg.RedisAddr)
		if err != nil {
			_ = pg.Close()
			return nil, fmt.Errorf("redis connect: %w", err)
		}
		return live.New(pg, rdb, cfg.CatalogCacheTTL, log), nil
	}
	return nil, fmt.Errorf("unknown STORE %q", cfg.Store)
}

// OpenPostgres conecta e garante o schema
func OpenPostgres(ctx context.Context, cfg config.Config, log *zap.Logger) (*postgres.Store, error) {
	conn, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	pg := postgres.New(conn, cfg.PostgresDSN, log)
	if err := pg.EnsureSchema(ctx); err != nil {
		_ = pg.Close()
		return nil, err
	}
	return pg, nil
}
