package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/radieske/pub-bets/internal/bets"
	"github.com/radieske/pub-bets/internal/catalog"
)

// SubscribeCatalog entrega o catálogo atual e recarrega o documento inteiro a
// cada NOTIFY em catalog_changed
func (s *Store) SubscribeCatalog(ctx context.Context, def catalog.Catalog, fn func(catalog.Catalog)) (func(), error) {
	if _, err := s.LoadOrInitialize(ctx, def); err != nil {
		return nil, err
	}
	return s.listen(ctx, ChannelCatalog, func(ctx context.Context) {
		c, err := s.LoadCatalog(ctx)
		if err != nil {
			s.log.Warn("reload catalog", zap.Error(err))
			return
		}
		fn(c)
	})
}

// SubscribeBets entrega a lista atual e a recarrega a cada NOTIFY em bets_changed
func (s *Store) SubscribeBets(ctx context.Context, fn func([]bets.Bet)) (func(), error) {
	return s.listen(ctx, ChannelBets, func(ctx context.Context) {
		list, err := s.ListBets(ctx)
		if err != nil {
			s.log.Warn("reload bets", zap.Error(err))
			return
		}
		fn(list)
	})
}

// listen abre um pq.Listener dedicado. Notificação nil significa que a conexão
// caiu e voltou; recarrega do mesmo jeito porque eventos podem ter se perdido.
// O snapshot inicial só é carregado depois do LISTEN, na mesma goroutine das
// recargas, então nenhuma escrita se perde e a ordem de entrega se mantém.
func (s *Store) listen(parent context.Context, channel string, reload func(context.Context)) (func(), error) {
	l := pq.NewListener(s.dsn, 2*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			s.log.Warn("pg listener", zap.String("channel", channel), zap.Error(err))
		}
	})
	if err := l.Listen(channel); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("listen %s: %w", channel, err)
	}

	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer l.Close()
		ping := time.NewTicker(90 * time.Second)
		defer ping.Stop()
		reload(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-l.Notify:
				reload(ctx)
			case <-ping.C:
				go func() { _ = l.Ping() }()
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}, nil
}
