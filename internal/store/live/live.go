// Package live combina o store Postgres com Redis: o documento do catálogo
// fica em cache (read-through com TTL) e as mudanças são avisadas por Redis
// Pub/Sub para todas as réplicas do bet-service.
package live

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/pub-bets/internal/bets"
	"github.com/radieske/pub-bets/internal/catalog"
	"github.com/radieske/pub-bets/internal/shared/cache"
	"github.com/radieske/pub-bets/internal/store"
	"github.com/radieske/pub-bets/internal/store/postgres"
)

// Canais Redis Pub/Sub e chave do cache
const (
	ChannelCatalog = "pubbets:catalog_changed"
	ChannelBets    = "pubbets:bets_changed"
	KeyCatalog     = "pubbets:catalog"
)

type Store struct {
	*postgres.Store
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

var (
	_ store.Store              = (*Store)(nil)
	_ store.Importer           = (*Store)(nil)
	_ store.FreshCatalogLoader = (*Store)(nil)
)

func New(pg *postgres.Store, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *Store {
	return &Store{Store: pg, rdb: rdb, ttl: ttl, log: log}
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.Store.Ping(ctx); err != nil {
		return err
	}
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return errors.Join(s.Store.Close(), s.rdb.Close())
}

// LoadCatalog tenta o cache antes do Postgres; falha de Redis não derruba a leitura
func (s *Store) LoadCatalog(ctx context.Context) (catalog.Catalog, error) {
	var c catalog.Catalog
	ok, err := cache.GetJSON(ctx, s.rdb, KeyCatalog, &c)
	if err != nil {
		s.log.Warn("catalog cache get", zap.Error(err))
	}
	if ok && err == nil {
		return c, nil
	}

	c, err = s.Store.LoadCatalog(ctx)
	if err != nil {
		return catalog.Catalog{}, err
	}
	s.cacheCatalog(ctx, c)
	return c, nil
}

func (s *Store) LoadOrInitialize(ctx context.Context, def catalog.Catalog) (catalog.Catalog, error) {
	if c, err := s.LoadCatalog(ctx); err == nil {
		return c, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return catalog.Catalog{}, err
	}
	c, err := s.Store.LoadOrInitialize(ctx, def)
	if err != nil {
		return catalog.Catalog{}, err
	}
	s.cacheCatalog(ctx, c)
	s.publish(ctx, ChannelCatalog)
	return c, nil
}

// LoadCatalogFresh ignora o cache. Read-modify-write do catálogo parte daqui,
// senão um documento antigo no cache sobrescreveria o último commit
func (s *Store) LoadCatalogFresh(ctx context.Context, def catalog.Catalog) (catalog.Catalog, error) {
	return s.Store.LoadOrInitialize(ctx, def)
}

// SaveCatalog invalida o cache em vez de regravá-lo: com duas réplicas os SETs
// podem chegar fora da ordem dos commits. A próxima leitura repopula do Postgres
func (s *Store) SaveCatalog(ctx context.Context, c catalog.Catalog) error {
	if err := s.Store.SaveCatalog(ctx, c); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.publish(ctx, ChannelCatalog)
	return nil
}

func (s *Store) CreateBet(ctx context.Context, d bets.Draft) (string, error) {
	id, err := s.Store.CreateBet(ctx, d)
	if err != nil {
		return "", err
	}
	s.publish(ctx, ChannelBets)
	return id, nil
}

func (s *Store) ImportBets(ctx context.Context, list []bets.Bet) (int, error) {
	n, err := s.Store.ImportBets(ctx, list)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.publish(ctx, ChannelBets)
	}
	return n, nil
}

func (s *Store) DeleteBet(ctx context.Context, id string) error {
	if err := s.Store.DeleteBet(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, ChannelBets)
	return nil
}

func (s *Store) DeleteAllBets(ctx context.Context) (int64, error) {
	n, err := s.Store.DeleteAllBets(ctx)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, ChannelBets)
	return n, nil
}

func (s *Store) ArchiveAndDeleteAllBets(ctx context.Context) ([]bets.Bet, error) {
	archived, err := s.Store.ArchiveAndDeleteAllBets(ctx)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, ChannelBets)
	return archived, nil
}

// SubscribeCatalog entrega o snapshot atual e recarrega o documento inteiro a
// cada aviso no canal (sem merge incremental)
func (s *Store) SubscribeCatalog(ctx context.Context, def catalog.Catalog, fn func(catalog.Catalog)) (func(), error) {
	if _, err := s.LoadOrInitialize(ctx, def); err != nil {
		return nil, err
	}
	return s.subscribe(ctx, ChannelCatalog, func(ctx context.Context) {
		// lê direto do Postgres, o cache pode estar atrás
		c, err := s.Store.LoadCatalog(ctx)
		if err != nil {
			s.log.Warn("reload catalog", zap.Error(err))
			return
		}
		fn(c)
	})
}

func (s *Store) SubscribeBets(ctx context.Context, fn func([]bets.Bet)) (func(), error) {
	return s.subscribe(ctx, ChannelBets, func(ctx context.Context) {
		list, err := s.ListBets(ctx)
		if err != nil {
			s.log.Warn("reload bets", zap.Error(err))
			return
		}
		fn(list)
	})
}

// subscribe escuta o canal numa goroutine até o cancel ou o fim do ctx. A
// carga inicial roda na mesma goroutine, depois da inscrição confirmada
func (s *Store) subscribe(parent context.Context, channel string, reload func(context.Context)) (func(), error) {
	ctx, cancel := context.WithCancel(parent)
	sub := s.rdb.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		cancel()
		_ = sub.Close()
		return nil, err
	}
	ch := sub.Channel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer sub.Close()
		reload(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if msg == nil {
					continue
				}
				reload(ctx)
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}, nil
}

func (s *Store) cacheCatalog(ctx context.Context, c catalog.Catalog) {
	if err := cache.SetJSON(ctx, s.rdb, KeyCatalog, c, s.ttl); err != nil {
		s.log.Warn("catalog cache set", zap.Error(err))
		s.invalidate(ctx)
	}
}

// invalidate apaga a chave; se nem isso der, o TTL limita o atraso
func (s *Store) invalidate(ctx context.Context) {
	if err := s.rdb.Del(ctx, KeyCatalog).Err(); err != nil {
		s.log.Warn("catalog cache del", zap.Error(err))
	}
}

// publish é best-effort: o dado já está no Postgres
func (s *Store) publish(ctx context.Context, channel string) {
	if err := s.rdb.Publish(ctx, channel, time.Now().UnixMilli()).Err(); err != nil {
		s.log.Warn("redis publish", zap.String("channel", channel), zap.Error(err))
	}
}
