package golf_test

import (
	"errors"
	"testing"

	"github.com/radieske/pub-bets/internal/golf"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		in      golf.Score
		want    golf.Score
		wantErr error
	}{
		{"clamps counts", golf.Score{Team: " Eagles ", Hole: 3, Sips: 25, Penalties: -2}, golf.Score{Team: "Eagles", Hole: 3, Sips: golf.MaxSips}, nil},
		{"team required", golf.Score{Hole: 1}, golf.Score{}, golf.ErrTeamRequired},
		{"hole zero", golf.Score{Team: "x", Hole: 0}, golf.Score{}, golf.ErrInvalidHole},
		{"hole ten", golf.Score{Team: "x", Hole: 10}, golf.Score{}, golf.ErrInvalidHole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Normalize()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLadder(t *testing.T) {
	scores := []golf.Score{
		{Team: "Eagles", Hole: 1, Sips: 4, Penalties: 1, Confirmed: true},
		{Team: "eagles ", Hole: 2, Sips: 3, Confirmed: true},
		{Team: "Birdies", Hole: 1, Sips: 2, Confirmed: true},
		{Team: "Birdies", Hole: 2, Sips: 9, Confirmed: false},
		{Team: "Albatross", Hole: 1, Sips: 2, Confirmed: true},
	}

	got := golf.Ladder(scores)
	want := []golf.Standing{
		{Team: "Albatross", Total: 2, Holes: 1},
		{Team: "Birdies", Total: 2, Holes: 1},
		{Team: "Eagles", Total: 8, Holes: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("ladder = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestLadderEmpty(t *testing.T) {
	if got := golf.Ladder(nil); len(got) != 0 {
		t.Errorf("expected empty ladder, got %+v", got)
	}
}
