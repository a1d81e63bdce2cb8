package betslip_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/radieske/pub-bets/internal/bets"
	"github.com/radieske/pub-bets/internal/betslip"
	"github.com/radieske/pub-bets/internal/catalog"
	"github.com/radieske/pub-bets/internal/shared/money"
)

func testCatalog() catalog.Catalog {
	return catalog.Catalog{
		EventTitle: "Pub quiz",
		Markets: []catalog.Market{
			{ID: "m1", Name: "Winner", Active: true, Legs: []catalog.Leg{
				{ID: "a", Label: "Team A", Odds: 2.0, Active: true, Result: catalog.ResultPending},
				{ID: "b", Label: "Team B", Odds: 3.0, Active: true, Result: catalog.ResultPending},
				{ID: "off", Label: "Team C", Odds: 9.0, Active: false, Result: catalog.ResultPending},
			}},
			{ID: "m2", Name: "Hat trick", Active: true, Legs: []catalog.Leg{
				{ID: "c", Label: "Yes", Odds: 1.5, Active: true, Result: catalog.ResultPending},
			}},
		},
	}
}

var authorized = betslip.Session{Authorized: true}

func TestToggleIsInvolutive(t *testing.T) {
	s := betslip.New()
	s.Select("a", "c")
	before := s.Selected()

	for _, id := range []string{"a", "b", "zzz"} {
		s.Toggle(id)
		s.Toggle(id)
		if got := s.Selected(); !slices.Equal(got, before) {
			t.Errorf("toggle %s twice: got %v, want %v", id, got, before)
		}
	}
}

func TestQuoteMultiCapsStake(t *testing.T) {
	s := betslip.New()
	s.Select("a", "b")
	s.SetMultiStake(50)

	q := s.Quote(testCatalog(), money.DefaultMaxPayout)
	if q.TotalOdds != 6 {
		t.Errorf("TotalOdds = %v, want 6", q.TotalOdds)
	}
	if q.Cap != 33.33 || q.Stake != 33.33 {
		t.Errorf("cap/stake = %v/%v, want 33.33/33.33", q.Cap, q.Stake)
	}
	if q.PotentialPayout != 199.98 {
		t.Errorf("PotentialPayout = %v, want 199.98", q.PotentialPayout)
	}
}

func TestQuoteMultiBelowCap(t *testing.T) {
	s := betslip.New()
	s.Select("a", "b")
	s.SetMultiStake(10)

	q := s.Quote(testCatalog(), money.DefaultMaxPayout)
	if q.Stake != 10 || q.PotentialPayout != 60 {
		t.Errorf("stake/payout = %v/%v, want 10/60", q.Stake, q.PotentialPayout)
	}
}

func TestQuoteEmptyMultiIsNeutral(t *testing.T) {
	s := betslip.New()
	s.SetMultiStake(10)
	q := s.Quote(testCatalog(), money.DefaultMaxPayout)
	if q.TotalOdds != 1 || len(q.Legs) != 0 {
		t.Errorf("unexpected empty quote: %+v", q)
	}
}

func TestQuoteSinglesSumOfRounded(t *testing.T) {
	s := betslip.New()
	s.SetMode(bets.ModeSingles)
	s.Select("a", "c")
	s.SetSingleStake("a", 60)
	s.SetSingleStake("c", 200)

	q := s.Quote(testCatalog(), money.DefaultMaxPayout)
	if len(q.Singles) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(q.Singles))
	}
	if row := q.Singles[1]; row.LegID != "c" || row.Cap != 133.33 || row.Stake != 133.33 || row.Payout != 200 {
		t.Errorf("unexpected capped row: %+v", row)
	}
	if q.TotalStake != 193.33 || q.TotalPayout != 320 {
		t.Errorf("totals = %v/%v, want 193.33/320", q.TotalStake, q.TotalPayout)
	}
}

func TestUnavailableLegsDropOut(t *testing.T) {
	s := betslip.New()
	s.Select("a", "off")

	q := s.Quote(testCatalog(), money.DefaultMaxPayout)
	if len(q.Legs) != 1 || q.Legs[0].ID != "a" {
		t.Errorf("quote legs = %+v", q.Legs)
	}
	// leg inativa continua selecionada caso volte
	if !s.Has("off") {
		t.Errorf("inactive leg should stay selected")
	}
}

func TestPruneAndForget(t *testing.T) {
	s := betslip.New()
	s.Select("a", "b", "gone")
	s.SetMode(bets.ModeSingles)
	s.SetSingleStake("b", 5)

	s.Prune(testCatalog())
	if s.Has("gone") {
		t.Errorf("Prune kept a deleted leg")
	}
	s.Forget("b")
	if got := s.Selected(); !slices.Equal(got, []string{"a"}) {
		t.Errorf("Selected = %v, want [a]", got)
	}
}

func TestPlaceValidation(t *testing.T) {
	tests := []struct {
		name    string
		sess    betslip.Session
		bettor  string
		legs    []string
		wantErr error
	}{
		{"unauthorized first", betslip.Session{}, "", nil, betslip.ErrUnauthorized},
		{"name required", authorized, "   ", []string{"a"}, betslip.ErrNameRequired},
		{"no legs", authorized, "Alice", nil, betslip.ErrNoLegs},
		{"only unavailable legs", authorized, "Alice", []string{"off"}, betslip.ErrNoLegs},
		{"admin can bet", betslip.Session{Admin: true}, "Alice", []string{"a"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := betslip.New()
			s.Select(tt.legs...)
			_, err := s.Place(tt.sess, bets.Bettor{Name: tt.bettor}, testCatalog(), money.DefaultMaxPayout)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Place err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPlaceFreezesSnapshot(t *testing.T) {
	s := betslip.New()
	s.Select("b", "a")
	s.SetMultiStake(500)

	d, err := s.Place(authorized, bets.Bettor{Name: " Alice ", Email: "Alice@Example.com"}, testCatalog(), money.DefaultMaxPayout)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if d.Bettor.Key != "alice|alice@example.com" || d.Bettor.Name != "Alice" {
		t.Errorf("unexpected bettor: %+v", d.Bettor)
	}
	if d.Mode != bets.ModeMulti || d.MultiStake != 33.33 {
		t.Errorf("unexpected stake: %+v", d)
	}
	want := []bets.LegSnapshot{
		{LegID: "a", Label: "Team A", MarketName: "Winner", Odds: 2.0},
		{LegID: "b", Label: "Team B", MarketName: "Winner", Odds: 3.0},
	}
	if !slices.Equal(d.Legs, want) {
		t.Errorf("legs = %+v, want %+v", d.Legs, want)
	}
	if len(s.Selected()) != 2 {
		t.Errorf("Place must not clear the slip")
	}

	s.Clear()
	if len(s.Selected()) != 0 {
		t.Errorf("Clear left selections behind")
	}
}

func TestPlaceSinglesThenSettle(t *testing.T) {
	s := betslip.New()
	s.SetMode(bets.ModeSingles)
	s.Select("a", "c")
	s.SetSingleStake("a", 60)
	s.SetSingleStake("c", 120)

	d, err := s.Place(authorized, bets.Bettor{Name: "Bob"}, testCatalog(), money.DefaultMaxPayout)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}

	c := testCatalog()
	c, _, _ = catalog.UpdateLeg(c, "m1", "a", catalog.LegPatch{Result: ptr(catalog.ResultWon)})
	c, _, _ = catalog.UpdateLeg(c, "m2", "c", catalog.LegPatch{Result: ptr(catalog.ResultLost)})

	got := bets.Settle(bets.Bet{ID: "x", Draft: d}, catalog.Lookup(c))
	if got.Status != bets.StatusMixed || got.Stake != 180 || got.PotentialPayout != 300 {
		t.Errorf("unexpected settlement: %+v", got)
	}
}

func ptr[T any](v T) *T { return &v }
