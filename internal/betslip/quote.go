package betslip

import (
	"math"

	"github.com/radieske/pub-bets/internal/bets"
	"github.com/radieske/pub-bets/internal/catalog"
	"github.com/radieske/pub-bets/internal/shared/money"
)

// SingleQuote é uma linha do betslip em modo singles
type SingleQuote struct {
	LegID  string  `json:"legId"`
	Odds   float64 `json:"odds"`
	Cap    float64 `json:"cap"`
	Stake  float64 `json:"stake"`
	Payout float64 `json:"payout"`
}

// Quote é o que o apostador vê antes de confirmar. Na múltipla, Stake é o valor
// digitado limitado ao Cap. Em singles, TotalStake/TotalPayout somam as linhas
// já arredondadas
type Quote struct {
	Mode            bets.Mode         `json:"mode"`
	Legs            []catalog.FlatLeg `json:"legs"`
	TotalOdds       float64           `json:"totalOdds,omitempty"`
	Cap             float64           `json:"cap,omitempty"`
	Stake           float64           `json:"stake,omitempty"`
	PotentialPayout float64           `json:"potentialPayout,omitempty"`
	Singles         []SingleQuote     `json:"singles,omitempty"`
	TotalStake      float64           `json:"totalStake"`
	TotalPayout     float64           `json:"totalPayout"`
}

// Quote precifica o betslip contra o catálogo. Legs indisponíveis somem
// da cotação sem erro
func (s *Slip) Quote(c catalog.Catalog, maxPayout float64) Quote {
	q := Quote{Mode: s.mode, Legs: []catalog.FlatLeg{}}
	for l := range catalog.AvailableLegs(c) {
		if s.Has(l.ID) {
			q.Legs = append(q.Legs, l)
		}
	}

	if s.mode == bets.ModeSingles {
		stakes := make([]float64, 0, len(q.Legs))
		payouts := make([]float64, 0, len(q.Legs))
		for _, l := range q.Legs {
			limit := money.StakeCap(l.Odds, maxPayout)
			stake := capStake(s.singleStakes[l.ID], limit)
			row := SingleQuote{
				LegID:  l.ID,
				Odds:   money.Round2(l.Odds),
				Cap:    limit,
				Stake:  stake,
				Payout: money.Payout(stake, l.Odds),
			}
			q.Singles = append(q.Singles, row)
			stakes = append(stakes, row.Stake)
			payouts = append(payouts, row.Payout)
		}
		q.TotalStake = money.SumRounded(stakes...)
		q.TotalPayout = money.SumRounded(payouts...)
		return q
	}

	odds := make([]float64, len(q.Legs))
	for i, l := range q.Legs {
		odds[i] = l.Odds
	}
	q.Mode = bets.ModeMulti
	q.TotalOdds = money.CombineOdds(odds...)
	q.Cap = money.StakeCap(q.TotalOdds, maxPayout)
	q.Stake = capStake(s.multiStake, q.Cap)
	q.PotentialPayout = money.Payout(q.Stake, q.TotalOdds)
	q.TotalStake = q.Stake
	q.TotalPayout = q.PotentialPayout
	return q
}

func capStake(entered, limit float64) float64 {
	return money.Round2(math.Min(money.Clamp(entered, 0, math.Inf(1)), limit))
}
