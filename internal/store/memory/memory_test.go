package memory_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/radieske/pub-bets/internal/bets"
	"github.com/radieske/pub-bets/internal/catalog"
	"github.com/radieske/pub-bets/internal/golf"
	"github.com/radieske/pub-bets/internal/store"
	"github.com/radieske/pub-bets/internal/store/memory"
)

func fixedClock(ts ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := ts[i%len(ts)]
		i++
		return t
	}
}

func draft(name string) bets.Draft {
	return bets.Draft{
		Bettor:     bets.NewBettor(name, ""),
		Mode:       bets.ModeMulti,
		MultiStake: 5,
		Legs:       []bets.LegSnapshot{{LegID: "a", Label: "A", MarketName: "M", Odds: 2}},
	}
}

func TestLoadOrInitializeSeedsOnce(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	if _, err := s.LoadCatalog(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("LoadCatalog on empty store: %v", err)
	}

	c, err := s.LoadOrInitialize(ctx, catalog.Default("Pub night"))
	if err != nil || c.EventTitle != "Pub night" {
		t.Fatalf("LoadOrInitialize = %+v, %v", c, err)
	}
	c, _ = s.LoadOrInitialize(ctx, catalog.Default("Other"))
	if c.EventTitle != "Pub night" {
		t.Errorf("second LoadOrInitialize replaced the document: %q", c.EventTitle)
	}
}

func TestSubscribeCatalogDeliversSnapshots(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	var seen []string
	cancel, err := s.SubscribeCatalog(ctx, catalog.Default("first"), func(c catalog.Catalog) {
		seen = append(seen, c.EventTitle)
	})
	if err != nil {
		t.Fatalf("SubscribeCatalog: %v", err)
	}

	if err := s.SaveCatalog(ctx, catalog.SetEventTitle(catalog.Default(""), "second")); err != nil {
		t.Fatalf("SaveCatalog: %v", err)
	}
	cancel()
	_ = s.SaveCatalog(ctx, catalog.Default("after cancel"))

	if len(seen) != 2 || seen[0] != "first" || seen[1] != "second" {
		t.Errorf("snapshots = %v", seen)
	}
}

func TestBetsRecentFirstWithTieBreak(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	t0 := time.Date(2026, 5, 1, 21, 0, 0, 0, time.UTC)
	s.Now = fixedClock(t0, t0, t0.Add(time.Second))

	var ids []string
	for _, name := range []string{"one", "two", "three"} {
		id, err := s.CreateBet(ctx, draft(name))
		if err != nil {
			t.Fatalf("CreateBet: %v", err)
		}
		ids = append(ids, id)
	}

	list, err := s.ListBets(ctx)
	if err != nil {
		t.Fatalf("ListBets: %v", err)
	}
	want := []string{ids[2], ids[1], ids[0]}
	for i := range want {
		if list[i].ID != want[i] {
			t.Fatalf("order[%d] = %s (%s), want %s", i, list[i].ID, list[i].Bettor.Name, want[i])
		}
	}
	if list[0].PlacedAt != t0.Add(time.Second) {
		t.Errorf("PlacedAt not assigned by the store: %v", list[0].PlacedAt)
	}
}

func TestSubscribeBetsAndDelete(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	var sizes []int
	cancel, err := s.SubscribeBets(ctx, func(list []bets.Bet) { sizes = append(sizes, len(list)) })
	if err != nil {
		t.Fatalf("SubscribeBets: %v", err)
	}
	defer cancel()

	id, _ := s.CreateBet(ctx, draft("a"))
	_, _ = s.CreateBet(ctx, draft("b"))
	if err := s.DeleteBet(ctx, id); err != nil {
		t.Fatalf("DeleteBet: %v", err)
	}
	if err := s.DeleteBet(ctx, id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second DeleteBet err = %v, want ErrNotFound", err)
	}
	n, err := s.DeleteAllBets(ctx)
	if err != nil || n != 1 {
		t.Errorf("DeleteAllBets = %d, %v", n, err)
	}

	want := []int{0, 1, 2, 1, 0}
	if len(sizes) != len(want) {
		t.Fatalf("snapshots = %v, want %v", sizes, want)
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Errorf("snapshots = %v, want %v", sizes, want)
			break
		}
	}
}

func TestArchiveAndDeleteAllBets(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	_, _ = s.CreateBet(ctx, draft("a"))
	_, _ = s.CreateBet(ctx, draft("b"))

	archived, err := s.ArchiveAndDeleteAllBets(ctx)
	if err != nil || len(archived) != 2 {
		t.Fatalf("ArchiveAndDeleteAllBets = %d, %v", len(archived), err)
	}
	if list, _ := s.ListBets(ctx); len(list) != 0 {
		t.Errorf("bets left after archive: %d", len(list))
	}
	if got := s.Archived(); len(got) != 2 {
		t.Errorf("archive size = %d, want 2", len(got))
	}
}

func TestStoredBetIsIsolatedFromCaller(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	d := draft("a")
	d.Mode = bets.ModeSingles
	d.StakesByLeg = map[string]float64{"a": 5}
	_, _ = s.CreateBet(ctx, d)

	d.Legs[0].Odds = 99
	d.StakesByLeg["a"] = 1000

	list, _ := s.ListBets(ctx)
	if list[0].Legs[0].Odds != 2 || list[0].StakesByLeg["a"] != 5 {
		t.Errorf("stored bet aliased the draft: %+v", list[0])
	}
}

func TestScores(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	if _, err := s.SaveScore(ctx, golf.Score{Team: "Eagles", Hole: 1, Sips: 4}); err != nil {
		t.Fatalf("SaveScore: %v", err)
	}
	if err := s.ConfirmScore(ctx, " eagles", 1); err != nil {
		t.Fatalf("ConfirmScore: %v", err)
	}
	if err := s.ConfirmScore(ctx, "Eagles", 2); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("ConfirmScore missing err = %v", err)
	}

	// mesmo valor mantém a confirmação, valor novo derruba
	sc, _ := s.SaveScore(ctx, golf.Score{Team: "Eagles", Hole: 1, Sips: 4})
	if !sc.Confirmed {
		t.Errorf("unchanged score lost its confirmation")
	}
	sc, _ = s.SaveScore(ctx, golf.Score{Team: "Eagles", Hole: 1, Sips: 6})
	if sc.Confirmed {
		t.Errorf("changed score kept its confirmation")
	}

	if _, err := s.SaveScore(ctx, golf.Score{Team: "Eagles", Hole: 12}); !errors.Is(err, golf.ErrInvalidHole) {
		t.Errorf("SaveScore bad hole err = %v", err)
	}

	list, _ := s.ListScores(ctx)
	if len(list) != 1 || list[0].Sips != 6 {
		t.Errorf("ListScores = %+v", list)
	}
}

func TestImportKeepsIDsAndTimestamps(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	old := time.Date(2024, 3, 1, 20, 0, 0, 0, time.FixedZone("AEDT", 11*3600))
	list := []bets.Bet{
		{ID: "legacy-1", PlacedAt: old, Draft: bets.Draft{Bettor: bets.NewBettor("Alice", ""), Mode: bets.ModeMulti, MultiStake: 5}},
		{ID: "legacy-2", PlacedAt: old.Add(time.Minute), Draft: bets.Draft{Bettor: bets.NewBettor("Bob", ""), Mode: bets.ModeMulti, MultiStake: 5}},
	}

	n, err := s.ImportBets(ctx, list)
	if err != nil || n != 2 {
		t.Fatalf("ImportBets = %d, %v", n, err)
	}
	if n, _ := s.ImportBets(ctx, list); n != 0 {
		t.Errorf("second import added %d bets", n)
	}

	got, _ := s.ListBets(ctx)
	if len(got) != 2 || got[0].ID != "legacy-2" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[1].PlacedAt.Location() != time.UTC || !got[1].PlacedAt.Equal(old) {
		t.Errorf("PlacedAt = %v", got[1].PlacedAt)
	}
}

func TestSubscribeDuringWritesEndsOnLatest(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	if _, err := s.LoadOrInitialize(ctx, catalog.Default("0")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	const writes = 200
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= writes; i++ {
			_ = s.SaveCatalog(ctx, catalog.Default(strconv.Itoa(i)))
			_, _ = s.CreateBet(ctx, draft("x"))
		}
	}()

	var mu sync.Mutex
	var title string
	var size int
	stopCat, err := s.SubscribeCatalog(ctx, catalog.Default("unused"), func(c catalog.Catalog) {
		mu.Lock()
		title = c.EventTitle
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("SubscribeCatalog: %v", err)
	}
	defer stopCat()
	stopBets, err := s.SubscribeBets(ctx, func(list []bets.Bet) {
		mu.Lock()
		size = len(list)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("SubscribeBets: %v", err)
	}
	defer stopBets()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if title != strconv.Itoa(writes) || size != writes {
		t.Errorf("last delivered: title %q, %d bets; want %d and %d", title, size, writes, writes)
	}
}
