package bets

import (
	"github.com/radieske/pub-bets/internal/catalog"
	"github.com/radieske/pub-bets/internal/shared/money"
)

// Status é o estado atual da aposta, derivado dos resultados das legs
type Status string

const (
	StatusPending Status = "Pending"
	StatusWon     Status = "Won"
	StatusLost    Status = "Lost"
	StatusMixed   Status = "Mixed"
)

type ResultLookup func(legID string) catalog.Result

// Settlement é o resultado da avaliação. Odds só é preenchida na múltipla
type Settlement struct {
	Status          Status  `json:"status"`
	Odds            float64 `json:"odds,omitempty"`
	Stake           float64 `json:"stake"`
	PotentialPayout float64 `json:"potentialPayout"`
}

// Settle avalia a aposta contra os resultados atuais. Função pura: pode ser
// chamada a cada mudança do catálogo
func Settle(b Bet, resultOf ResultLookup) Settlement {
	if resultOf == nil {
		resultOf = func(string) catalog.Result { return catalog.ResultPending }
	}
	if b.Mode == ModeSingles {
		return settleSingles(b, resultOf)
	}
	return settleMulti(b, resultOf)
}

func settleMulti(b Bet, resultOf ResultLookup) Settlement {
	odds := make([]float64, len(b.Legs))
	anyLost, allWon := false, len(b.Legs) > 0
	for i, l := range b.Legs {
		odds[i] = l.Odds
		switch resultOf(l.LegID) {
		case catalog.ResultLost:
			anyLost = true
		case catalog.ResultWon:
		default:
			allWon = false
		}
	}

	status := StatusPending
	switch {
	case anyLost:
		status = StatusLost
	case allWon:
		status = StatusWon
	}

	combined := money.CombineOdds(odds...)
	return Settlement{
		Status:          status,
		Odds:            combined,
		Stake:           money.Round2(b.MultiStake),
		PotentialPayout: money.Payout(b.MultiStake, combined),
	}
}

func settleSingles(b Bet, resultOf ResultLookup) Settlement {
	var pending, won, lost int
	var stakes, payouts []float64
	for _, l := range b.Legs {
		stake := b.StakesByLeg[l.LegID]
		if !(stake > 0) {
			continue
		}
		stakes = append(stakes, stake)
		payouts = append(payouts, money.Payout(stake, l.Odds))
		switch resultOf(l.LegID) {
		case catalog.ResultWon:
			won++
		case catalog.ResultLost:
			lost++
		default:
			pending++
		}
	}

	status := StatusPending
	switch {
	case pending > 0:
	case lost > 0 && won > 0:
		status = StatusMixed
	case lost > 0:
		status = StatusLost
	case won > 0:
		status = StatusWon
	}

	return Settlement{
		Status:          status,
		Stake:           money.SumRounded(stakes...),
		PotentialPayout: money.SumRounded(payouts...),
	}
}
