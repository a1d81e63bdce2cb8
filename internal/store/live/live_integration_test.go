//go:build integration

// Usa o mesmo banco dos testes de postgres; rode com -p 1.
package live_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/pub-bets/internal/catalog"
	"github.com/radieske/pub-bets/internal/shared/cache"
	"github.com/radieske/pub-bets/internal/shared/db"
	"github.com/radieske/pub-bets/internal/store"
	"github.com/radieske/pub-bets/internal/store/live"
	"github.com/radieske/pub-bets/internal/store/postgres"
)

func testStore(t *testing.T) (*live.Store, *redis.Client) {
	t.Helper()
	dsn, addr := os.Getenv("PUB_BETS_TEST_DSN"), os.Getenv("PUB_BETS_TEST_REDIS")
	if dsn == "" || addr == "" {
		t.Skip("PUB_BETS_TEST_DSN and PUB_BETS_TEST_REDIS not set")
	}
	ctx := context.Background()
	conn, err := db.ConnectPostgres(dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	pg := postgres.New(conn, dsn, zap.NewNop())
	if err := pg.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if _, err := conn.ExecContext(ctx, `DELETE FROM catalog_doc`); err != nil {
		t.Fatalf("reset: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Del(ctx, live.KeyCatalog).Err(); err != nil {
		t.Fatalf("redis: %v", err)
	}
	s := live.New(pg, rdb, time.Minute, zap.NewNop())
	t.Cleanup(func() { _ = s.Close() })
	return s, rdb
}

func TestSaveInvalidatesCatalogCache(t *testing.T) {
	s, rdb := testStore(t)
	ctx := context.Background()

	c, err := s.LoadOrInitialize(ctx, catalog.Default("Quiz"))
	if err != nil {
		t.Fatalf("LoadOrInitialize: %v", err)
	}
	var cached catalog.Catalog
	if ok, err := cache.GetJSON(ctx, rdb, live.KeyCatalog, &cached); !ok || err != nil {
		t.Fatalf("catalog not cached after load: ok=%v err=%v", ok, err)
	}

	c = catalog.SetEventTitle(c, "Grand Final")
	if err := s.SaveCatalog(ctx, c); err != nil {
		t.Fatalf("SaveCatalog: %v", err)
	}
	if ok, _ := cache.GetJSON(ctx, rdb, live.KeyCatalog, &cached); ok {
		t.Errorf("cache still holds %q after save", cached.EventTitle)
	}
	if got, err := s.LoadCatalog(ctx); err != nil || got.EventTitle != "Grand Final" {
		t.Errorf("LoadCatalog = %q, %v", got.EventTitle, err)
	}
}

func TestFreshLoadSkipsStaleCache(t *testing.T) {
	s, rdb := testStore(t)
	ctx := context.Background()

	if err := s.SaveCatalog(ctx, catalog.Default("Committed")); err != nil {
		t.Fatalf("SaveCatalog: %v", err)
	}
	// documento antigo deixado por outra réplica
	if err := cache.SetJSON(ctx, rdb, live.KeyCatalog, catalog.Default("Stale"), time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	if got, _ := s.LoadCatalog(ctx); got.EventTitle != "Stale" {
		t.Fatalf("expected the cached read to be served, got %q", got.EventTitle)
	}
	got, err := store.LoadFresh(ctx, s, catalog.Default("x"))
	if err != nil || got.EventTitle != "Committed" {
		t.Errorf("LoadFresh = %q, %v", got.EventTitle, err)
	}
}

func TestSubscribeCatalogSeesSaves(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	got := make(chan string, 4)
	stop, err := s.SubscribeCatalog(ctx, catalog.Default("First"), func(c catalog.Catalog) { got <- c.EventTitle })
	if err != nil {
		t.Fatalf("SubscribeCatalog: %v", err)
	}
	defer stop()

	if err := s.SaveCatalog(ctx, catalog.Default("Second")); err != nil {
		t.Fatalf("SaveCatalog: %v", err)
	}
	deadline := time.After(5 * time.Second)
	for {
		select {
		case title := <-got:
			if title == "Second" {
				return
			}
		case <-deadline:
			t.Fatal("subscriber never saw the saved catalog")
		}
	}
}
