// Package board mantém o quadro ao vivo: o último catálogo e a última lista de
// apostas, re-liquidadas a cada snapshot e publicadas no hub.
package board

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/radieske/pub-bets/internal/bet-service/dto"
	"github.com/radieske/pub-bets/internal/bet-service/ws"
	"github.com/radieske/pub-bets/internal/bets"
	"github.com/radieske/pub-bets/internal/catalog"
	"github.com/radieske/pub-bets/internal/shared/money"
	"github.com/radieske/pub-bets/internal/store"
)

type Broadcaster interface {
	Broadcast(topic string, payload any)
}

// View é o snapshot do quadro
type View struct {
	EventTitle    string        `json:"eventTitle"`
	Bets          []dto.BetView `json:"bets"`
	Pending       int           `json:"pending"`
	OpenLiability float64       `json:"openLiability"`
}

type Board struct {
	log *zap.Logger
	hub Broadcaster

	// pubMu serializa cálculo+broadcast, senão uma view antiga pode sair por último
	pubMu sync.Mutex

	mu   sync.Mutex
	cat  catalog.Catalog
	list []bets.Bet
}

func New(log *zap.Logger, hub Broadcaster) *Board {
	return &Board{log: log, hub: hub}
}

// Settle liquida cada aposta contra o catálogo, mantendo a ordem recebida
func Settle(c catalog.Catalog, list []bets.Bet) []dto.BetView {
	lookup := catalog.Lookup(c)
	out := make([]dto.BetView, 0, len(list))
	for _, b := range list {
		out = append(out, dto.BetView{Bet: b, Settlement: bets.Settle(b, lookup)})
	}
	return out
}

// Start assina catálogo e apostas no store. A função retornada encerra as duas
// assinaturas
func (b *Board) Start(ctx context.Context, st store.Store, def catalog.Catalog) (func(), error) {
	stopCat, err := st.SubscribeCatalog(ctx, def, b.OnCatalog)
	if err != nil {
		return nil, err
	}
	stopBets, err := st.SubscribeBets(ctx, b.OnBets)
	if err != nil {
		stopCat()
		return nil, err
	}
	b.log.Info("live board started")
	return func() {
		stopBets()
		stopCat()
	}, nil
}

func (b *Board) OnCatalog(c catalog.Catalog) {
	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	b.mu.Lock()
	b.cat = c
	v := b.view()
	b.mu.Unlock()

	b.hub.Broadcast(ws.TopicCatalog, c)
	b.hub.Broadcast(ws.TopicBoard, v)
}

func (b *Board) OnBets(list []bets.Bet) {
	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	b.mu.Lock()
	b.list = list
	v := b.view()
	b.mu.Unlock()

	b.hub.Broadcast(ws.TopicBoard, v)
}

// Snapshot retorna o quadro atual
func (b *Board) Snapshot() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view()
}

func (b *Board) view() View {
	v := View{EventTitle: b.cat.EventTitle, Bets: Settle(b.cat, b.list)}
	var open []float64
	for _, e := range v.Bets {
		if e.Settlement.Status == bets.StatusPending {
			v.Pending++
			open = append(open, e.Settlement.PotentialPayout)
		}
	}
	v.OpenLiability = money.SumRounded(open...)
	return v
}
