// Package reconcile compara a liquidação atual de cada aposta com o último
// status conhecido e produz as transições a publicar.
package reconcile

import (
	"time"

	"github.com/radieske/pub-bets/internal/bets"
	"github.com/radieske/pub-bets/internal/catalog"
	"github.com/radieske/pub-bets/internal/shared/money"
	"github.com/radieske/pub-bets/pkg/contracts/events"
)

// Result é o que sai de uma rodada de reconciliação
type Result struct {
	Changes       []events.BetSettled
	Next          map[string]string // betID -> status
	Gone          []string          // apostas que sumiram do store
	OpenLiability float64           // soma do retorno potencial das pendentes
}

// Diff liquida todas as apostas contra o catálogo e compara com prev. Uma
// aposta nova entra como transição com OldStatus vazio
func Diff(prev map[string]string, c catalog.Catalog, list []bets.Bet, now time.Time) Result {
	lookup := catalog.Lookup(c)
	res := Result{Next: make(map[string]string, len(list))}

	var open []float64
	for _, b := range list {
		st := bets.Settle(b, lookup)
		status := string(st.Status)
		res.Next[b.ID] = status
		if st.Status == bets.StatusPending {
			open = append(open, st.PotentialPayout)
		}

		old, seen := prev[b.ID]
		if seen && old == status {
			continue
		}
		res.Changes = append(res.Changes, events.BetSettled{
			BetID:           b.ID,
			BettorKey:       b.Bettor.Key,
			OldStatus:       old,
			Status:          status,
			PotentialPayout: st.PotentialPayout,
			Ts:              now,
		})
	}
	for id := range prev {
		if _, ok := res.Next[id]; !ok {
			res.Gone = append(res.Gone, id)
		}
	}
	res.OpenLiability = money.SumRounded(open...)
	return res
}
