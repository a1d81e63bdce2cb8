package money_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/radieske/pub-bets/internal/shared/money"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"already cents", 12.34, 12.34},
		{"rounds half away from zero", 1.005, 1.01},
		{"rounds down", 2.344, 2.34},
		{"negative", -2.345, -2.35},
		{"NaN", math.NaN(), 0},
		{"+Inf", math.Inf(1), 0},
		{"-Inf", math.Inf(-1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := money.Round2(tt.in); got != tt.want {
				t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCombineOdds(t *testing.T) {
	tests := []struct {
		name string
		odds []float64
		want float64
	}{
		{"empty is identity", nil, 1},
		{"single leg", []float64{1.915}, 1.92},
		{"two legs", []float64{2.0, 3.0}, 6.0},
		{"rounded product", []float64{1.91, 1.91}, 3.65},
		{"zero counts as one", []float64{1.5, 0}, 1.5},
		{"non-finite counts as one", []float64{2.5, math.NaN(), math.Inf(1)}, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := money.CombineOdds(tt.odds...); got != tt.want {
				t.Errorf("CombineOdds(%v) = %v, want %v", tt.odds, got, tt.want)
			}
		})
	}
}

func TestCombineOddsSingleEqualsRound2(t *testing.T) {
	for _, o := range []float64{1.01, 1.333, 2.005, 7.5, 101.239} {
		if got, want := money.CombineOdds(o), money.Round2(o); got != want {
			t.Errorf("CombineOdds(%v) = %v, want Round2 = %v", o, got, want)
		}
	}
}

func TestPayout(t *testing.T) {
	tests := []struct {
		name  string
		stake float64
		odds  float64
		want  float64
	}{
		{"simple", 10, 6, 60},
		{"zero stake", 0, 5, 0},
		{"zero odds treated as one", 10, 0, 10},
		{"half cent rounds up", 33.33, 1.5, 50},
		{"non-finite stake", math.NaN(), 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := money.Payout(tt.stake, tt.odds); got != tt.want {
				t.Errorf("Payout(%v, %v) = %v, want %v", tt.stake, tt.odds, got, tt.want)
			}
		})
	}
}

func TestStakeCap(t *testing.T) {
	tests := []struct {
		name string
		odds float64
		max  float64
		want float64
	}{
		{"evens", 2.0, 200, 100},
		{"rounds down not nearest", 1.5, 200, 133.33},
		{"thirds", 3.0, 200, 66.66},
		{"zero odds hits epsilon", 0, 200, 200000000},
		{"no ceiling", 2.0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := money.StakeCap(tt.odds, tt.max); got != tt.want {
				t.Errorf("StakeCap(%v, %v) = %v, want %v", tt.odds, tt.max, got, tt.want)
			}
		})
	}
}

func TestStakeCapIsTight(t *testing.T) {
	max := decimal.NewFromFloat(money.DefaultMaxPayout)
	centStep := decimal.New(1, -2)

	for i := 101; i <= 5000; i += 7 {
		odds := float64(i) / 100
		capped := money.StakeCap(odds, money.DefaultMaxPayout)

		if p := money.Payout(capped, odds); p > money.DefaultMaxPayout {
			t.Fatalf("odds %v: payout at cap %v = %v exceeds %v", odds, capped, p, money.DefaultMaxPayout)
		}

		over := decimal.NewFromFloat(capped).Add(centStep).Mul(decimal.NewFromFloat(odds))
		if !over.GreaterThan(max) {
			t.Fatalf("odds %v: cap %v is not tight, one more cent pays %s", odds, capped, over)
		}
	}
}

func TestPayoutNonNegative(t *testing.T) {
	for _, stake := range []float64{0, 0.01, 1, 55.55, 200} {
		for _, odds := range []float64{0, 1, 1.01, 2.5, 40} {
			if p := money.Payout(stake, odds); p < 0 {
				t.Errorf("Payout(%v, %v) = %v, want >= 0", stake, odds, p)
			}
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name      string
		x, lo, hi float64
		want      float64
	}{
		{"inside", 5, 0, 10, 5},
		{"below", -1, 0, 10, 0},
		{"above", 11, 0, 10, 10},
		{"NaN", math.NaN(), 0, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := money.Clamp(tt.x, tt.lo, tt.hi); got != tt.want {
				t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.x, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestSumRoundedIsSumOfRounded(t *testing.T) {
	if got := money.SumRounded(120, 180); got != 300 {
		t.Errorf("SumRounded(120, 180) = %v, want 300", got)
	}
	// arredondar a soma daria 0.01
	if got := money.SumRounded(0.004, 0.004); got != 0 {
		t.Errorf("SumRounded(0.004, 0.004) = %v, want 0", got)
	}
}
