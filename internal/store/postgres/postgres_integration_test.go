//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/pub-bets/internal/bets"
	"github.com/radieske/pub-bets/internal/catalog"
	"github.com/radieske/pub-bets/internal/golf"
	"github.com/radieske/pub-bets/internal/shared/db"
	"github.com/radieske/pub-bets/internal/store"
	"github.com/radieske/pub-bets/internal/store/postgres"
)

func testStore(t *testing.T) *postgres.Store {
	t.Helper()
	dsn := os.Getenv("PUB_BETS_TEST_DSN")
	if dsn == "" {
		t.Skip("PUB_BETS_TEST_DSN not set")
	}
	conn, err := db.ConnectPostgres(dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	s := postgres.New(conn, dsn, zap.NewNop())
	ctx := context.Background()
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	for _, q := range []string{`DELETE FROM catalog_doc`, `DELETE FROM bets`, `DELETE FROM bets_archive`, `DELETE FROM golf_scores`} {
		if _, err := conn.ExecContext(ctx, q); err != nil {
			t.Fatalf("reset: %v", err)
		}
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCatalogRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.LoadCatalog(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("LoadCatalog empty err = %v", err)
	}
	c, err := s.LoadOrInitialize(ctx, catalog.Default("Seeded"))
	if err != nil || c.EventTitle != "Seeded" {
		t.Fatalf("LoadOrInitialize = %+v, %v", c, err)
	}
	c, _, err = catalog.AddMarket(c, catalog.Market{Name: "Winner", Active: true, Legs: []catalog.Leg{{Label: "A", Odds: 2, Active: true}}})
	if err != nil {
		t.Fatalf("AddMarket: %v", err)
	}
	if err := s.SaveCatalog(ctx, c); err != nil {
		t.Fatalf("SaveCatalog: %v", err)
	}
	got, err := s.LoadOrInitialize(ctx, catalog.Default("ignored"))
	if err != nil || len(got.Markets) != 1 || got.Markets[0].Legs[0].Odds != 2 {
		t.Errorf("reloaded catalog = %+v, %v", got, err)
	}
}

func TestBetsLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	changed := make(chan int, 8)
	cancel, err := s.SubscribeBets(ctx, func(list []bets.Bet) { changed <- len(list) })
	if err != nil {
		t.Fatalf("SubscribeBets: %v", err)
	}
	defer cancel()
	if n := <-changed; n != 0 {
		t.Fatalf("initial snapshot size = %d", n)
	}

	d := bets.Draft{
		Bettor:      bets.NewBettor("Alice", "a@x"),
		Mode:        bets.ModeSingles,
		StakesByLeg: map[string]float64{"a": 12.5},
		Legs:        []bets.LegSnapshot{{LegID: "a", Label: "A", MarketName: "Winner", Odds: 2}},
	}
	first, err := s.CreateBet(ctx, d)
	if err != nil {
		t.Fatalf("CreateBet: %v", err)
	}
	second, _ := s.CreateBet(ctx, d)

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no notification after CreateBet")
	}

	list, err := s.ListBets(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListBets = %d, %v", len(list), err)
	}
	if list[0].ID != second || list[1].ID != first {
		t.Errorf("order = [%s %s], want [%s %s]", list[0].ID, list[1].ID, second, first)
	}
	if list[0].StakesByLeg["a"] != 12.5 || list[0].Bettor.Key != "alice|a@x" {
		t.Errorf("round trip lost data: %+v", list[0])
	}

	if err := s.DeleteBet(ctx, first); err != nil {
		t.Fatalf("DeleteBet: %v", err)
	}
	if err := s.DeleteBet(ctx, first); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("DeleteBet twice err = %v", err)
	}

	archived, err := s.ArchiveAndDeleteAllBets(ctx)
	if err != nil || len(archived) != 1 || archived[0].ID != second {
		t.Fatalf("ArchiveAndDeleteAllBets = %+v, %v", archived, err)
	}
	if list, _ := s.ListBets(ctx); len(list) != 0 {
		t.Errorf("bets left after archive: %d", len(list))
	}
}

func TestScoresUpsert(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.SaveScore(ctx, golf.Score{Team: "Eagles", Hole: 1, Sips: 3}); err != nil {
		t.Fatalf("SaveScore: %v", err)
	}
	if err := s.ConfirmScore(ctx, "EAGLES", 1); err != nil {
		t.Fatalf("ConfirmScore: %v", err)
	}
	sc, err := s.SaveScore(ctx, golf.Score{Team: "Eagles", Hole: 1, Sips: 5})
	if err != nil || sc.Confirmed {
		t.Errorf("changed score = %+v, %v", sc, err)
	}
	list, _ := s.ListScores(ctx)
	if len(list) != 1 || list[0].Sips != 5 {
		t.Errorf("ListScores = %+v", list)
	}
}
