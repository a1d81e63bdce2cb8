package reconcile_test

import (
	"slices"
	"testing"
	"time"

	"github.com/radieske/pub-bets/internal/bets"
	"github.com/radieske/pub-bets/internal/catalog"
	"github.com/radieske/pub-bets/internal/settlement-worker/reconcile"
)

var now = time.Date(2025, 11, 8, 19, 30, 0, 0, time.UTC)

func cat(resultA, resultB catalog.Result) catalog.Catalog {
	return catalog.Catalog{Markets: []catalog.Market{{ID: "m", Name: "Winner", Active: true, Legs: []catalog.Leg{
		{ID: "a", Label: "A", Odds: 2, Active: true, Result: resultA},
		{ID: "b", Label: "B", Odds: 3, Active: true, Result: resultB},
	}}}}
}

func list() []bets.Bet {
	return []bets.Bet{
		{ID: "multi", Draft: bets.Draft{
			Bettor: bets.NewBettor("Alice", ""), Mode: bets.ModeMulti, MultiStake: 10,
			Legs: []bets.LegSnapshot{{LegID: "a", Odds: 2}, {LegID: "b", Odds: 3}},
		}},
		{ID: "singles", Draft: bets.Draft{
			Bettor: bets.NewBettor("Bob", ""), Mode: bets.ModeSingles,
			Legs:        []bets.LegSnapshot{{LegID: "a", Odds: 2}, {LegID: "b", Odds: 3}},
			StakesByLeg: map[string]float64{"a": 5, "b": 5},
		}},
	}
}

func TestFirstPassReportsEveryBet(t *testing.T) {
	res := reconcile.Diff(nil, cat(catalog.ResultPending, catalog.ResultPending), list(), now)
	if len(res.Changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(res.Changes))
	}
	for _, c := range res.Changes {
		if c.OldStatus != "" || c.Status != "Pending" || !c.Ts.Equal(now) {
			t.Errorf("unexpected first change: %+v", c)
		}
	}
	// 60 da múltipla + 10 + 15 das singles
	if res.OpenLiability != 85 {
		t.Errorf("OpenLiability = %v, want 85", res.OpenLiability)
	}
}

func TestOnlyChangedStatusesAreReported(t *testing.T) {
	prev := map[string]string{"multi": "Pending", "singles": "Pending"}
	res := reconcile.Diff(prev, cat(catalog.ResultWon, catalog.ResultPending), list(), now)
	if len(res.Changes) != 0 {
		t.Fatalf("multi with a pending leg and singles with a pending leg stay pending, got %+v", res.Changes)
	}

	res = reconcile.Diff(res.Next, cat(catalog.ResultWon, catalog.ResultLost), list(), now)
	got := map[string]string{}
	for _, c := range res.Changes {
		if c.OldStatus != "Pending" {
			t.Errorf("OldStatus = %q, want Pending", c.OldStatus)
		}
		got[c.BetID] = c.Status
	}
	if got["multi"] != "Lost" || got["singles"] != "Mixed" {
		t.Errorf("unexpected transitions: %v", got)
	}
	if res.OpenLiability != 0 {
		t.Errorf("OpenLiability = %v, want 0", res.OpenLiability)
	}
}

func TestGoneBetsAreListed(t *testing.T) {
	prev := map[string]string{"multi": "Pending", "deleted": "Won"}
	res := reconcile.Diff(prev, cat(catalog.ResultPending, catalog.ResultPending), list()[:1], now)
	if !slices.Equal(res.Gone, []string{"deleted"}) {
		t.Errorf("Gone = %v", res.Gone)
	}
	if _, ok := res.Next["deleted"]; ok {
		t.Errorf("deleted bet kept in Next")
	}
}
