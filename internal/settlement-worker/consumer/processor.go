package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/pub-bets/internal/bets"
	"github.com/radieske/pub-bets/internal/catalog"
	"github.com/radieske/pub-bets/internal/settlement-worker/reconcile"
	skafka "github.com/radieske/pub-bets/internal/shared/kafka"
	"github.com/radieske/pub-bets/internal/store"
	"github.com/radieske/pub-bets/pkg/contracts/events"
)

// Source é a leitura do estado completo (catálogo + apostas)
type Source interface {
	LoadCatalog(ctx context.Context) (catalog.Catalog, error)
	ListBets(ctx context.Context) ([]bets.Bet, error)
}

// Tracker guarda o último status publicado de cada aposta
type Tracker interface {
	All(ctx context.Context) (map[string]string, error)
	Apply(ctx context.Context, set map[string]string, remove []string) error
	Reset(ctx context.Context) error
}

type History interface {
	InsertTransition(ctx context.Context, e events.BetSettled) error
}

// Processor consome bet_placed, catalog_updated e bets_cleared. Cada mensagem
// dispara uma reconciliação completa: os eventos só dizem "algo mudou"
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log     *zap.Logger
	Reader  skafka.MessageReader
	Source  Source
	Tracker Tracker
	History History
	Settled skafka.MessageWriter
	DLQ     skafka.MessageWriter // opcional

	TopicBetsCleared string
	Retries          int           // tentativas extras antes da DLQ
	RetryBackoff     time.Duration // multiplicado pela tentativa
	Now              func() time.Time

	OnConsumed   func(topic string)  // métricas (counter++)
	OnTransition func(status string) // métricas
	OnError      func(stage string)  // métricas por fase
	OnLiability  func(float64)       // gauge
}

// Run inicia o loop principal de consumo e processamento das mensagens Kafka
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := skafka.ReadNext(ctx, p.Reader)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.fail("read")
			if err := sleep(ctx, 500*time.Millisecond); err != nil {
				return err
			}
			continue
		}
		if p.OnConsumed != nil {
			p.OnConsumed(m.Topic)
		}

		if !json.Valid(m.Value) {
			p.Log.Warn("invalid message", zap.String("topic", m.Topic), zap.Int64("offset", m.Offset))
			p.fail("decode")
			continue
		}

		if m.Topic == p.TopicBetsCleared {
			if err := p.Tracker.Reset(ctx); err != nil {
				p.Log.Warn("tracker reset failed", zap.Error(err))
				p.fail("tracker")
			}
		}

		if err := p.Reconcile(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Error("reconcile failed", zap.String("topic", m.Topic), zap.Error(err))
			// Backoff simples para evitar flood em caso de erro
			if err := sleep(ctx, 500*time.Millisecond); err != nil {
				return err
			}
		}
	}
}

// Reconcile liquida todas as apostas, publica as mudanças de status e só
// depois atualiza o tracker. Queda no meio republica (at-least-once).
// Mudança sem histórico gravado ou sem entrega (tópico ou DLQ) fica fora do
// tracker e volta na próxima reconciliação
func (p *Processor) Reconcile(ctx context.Context) error {
	c, err := p.Source.LoadCatalog(ctx)
	if errors.Is(err, store.ErrNotFound) {
		c, err = catalog.Catalog{}, nil
	}
	if err != nil {
		p.fail("load_catalog")
		return fmt.Errorf("load catalog: %w", err)
	}
	list, err := p.Source.ListBets(ctx)
	if err != nil {
		p.fail("load_bets")
		return fmt.Errorf("list bets: %w", err)
	}
	prev, err := p.Tracker.All(ctx)
	if err != nil {
		p.fail("tracker")
		return fmt.Errorf("tracker: %w", err)
	}

	res := reconcile.Diff(prev, c, list, p.now())
	changed := make(map[string]string, len(res.Changes))
	for _, ch := range res.Changes {
		if err := p.History.InsertTransition(ctx, ch); err != nil {
			p.Log.Warn("history insert", zap.String("bet_id", ch.BetID), zap.Error(err))
			p.fail("history")
			continue
		}
		if !p.publish(ctx, ch) {
			continue
		}
		changed[ch.BetID] = ch.Status
		if p.OnTransition != nil {
			p.OnTransition(ch.Status)
		}
	}

	if err := p.Tracker.Apply(ctx, changed, res.Gone); err != nil {
		p.fail("tracker")
		return fmt.Errorf("tracker apply: %w", err)
	}
	if p.OnLiability != nil {
		p.OnLiability(res.OpenLiability)
	}
	if len(res.Changes) > 0 {
		p.Log.Info("bets settled",
			zap.Int("changes", len(res.Changes)),
			zap.Int("bets", len(list)),
			zap.Float64("open_liability", res.OpenLiability))
	}
	return nil
}

// publish tenta algumas vezes e, se não der, manda para a DLQ. Retorna
// false quando o evento não foi entregue em lugar nenhum
func (p *Processor) publish(ctx context.Context, ch events.BetSettled) bool {
	err := skafka.WriteJSON(ctx, p.Settled, ch.BetID, ch)
	for i := 0; err != nil && i < p.Retries; i++ {
		if serr := sleep(ctx, time.Duration(i+1)*p.RetryBackoff); serr != nil {
			break
		}
		err = skafka.WriteJSON(ctx, p.Settled, ch.BetID, ch)
	}
	if err == nil {
		return true
	}
	p.Log.Error("publish bet_settled", zap.String("bet_id", ch.BetID), zap.Error(err))
	p.fail("publish")
	if p.DLQ == nil {
		return false
	}
	if derr := skafka.WriteJSON(ctx, p.DLQ, ch.BetID, ch); derr != nil {
		p.Log.Error("dlq write", zap.String("bet_id", ch.BetID), zap.Error(derr))
		p.fail("dlq")
		return false
	}
	return true
}

// sleep espera d ou até o contexto ser cancelado
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}
