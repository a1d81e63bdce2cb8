// Package memory implementa store.Store em memória. Usado nos testes e em
// ENV=local com STORE=memory.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/pub-bets/internal/bets"
	"github.com/radieske/pub-bets/internal/catalog"
	"github.com/radieske/pub-bets/internal/golf"
	"github.com/radieske/pub-bets/internal/store"
)

type scoreKey struct {
	team string
	hole int
}

// Store guarda tudo atrás de um mutex. Assinantes são chamados de forma
// síncrona, fora do lock, na goroutine que fez a escrita. Cada snapshot leva
// uma versão e o assinante nunca recebe uma versão mais velha que a última.
type Store struct {
	mu      sync.Mutex
	cat     *catalog.Catalog
	bets    []bets.Bet
	archive []bets.Bet
	seq     int64
	scores  map[scoreKey]golf.Score
	order   []scoreKey

	catVer      int64
	betsVer     int64
	nextSub     int
	catalogSubs map[int]*listener[catalog.Catalog]
	betSubs     map[int]*listener[[]bets.Bet]

	// Now permite fixar o relógio nos testes
	Now func() time.Time
}

var (
	_ store.Store    = (*Store)(nil)
	_ store.Importer = (*Store)(nil)
)

func New() *Store {
	return &Store{
		scores:      make(map[scoreKey]golf.Score),
		catalogSubs: make(map[int]*listener[catalog.Catalog]),
		betSubs:     make(map[int]*listener[[]bets.Bet]),
		Now:         time.Now,
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func (s *Store) LoadCatalog(ctx context.Context) (catalog.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Catalog{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cat == nil {
		return catalog.Catalog{}, store.ErrNotFound
	}
	return s.cat.Clone(), nil
}

func (s *Store) LoadOrInitialize(ctx context.Context, def catalog.Catalog) (catalog.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Catalog{}, err
	}
	s.mu.Lock()
	if s.cat != nil {
		c := s.cat.Clone()
		s.mu.Unlock()
		return c, nil
	}
	c := def.Clone()
	s.cat = &c
	s.catVer++
	ver, subs := s.catVer, s.catalogListeners()
	s.mu.Unlock()

	notifyCatalog(subs, ver, c)
	return c.Clone(), nil
}

func (s *Store) SaveCatalog(ctx context.Context, c catalog.Catalog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c = c.Clone()
	s.mu.Lock()
	s.cat = &c
	s.catVer++
	ver, subs := s.catVer, s.catalogListeners()
	s.mu.Unlock()

	notifyCatalog(subs, ver, c)
	return nil
}

// SubscribeCatalog registra o assinante e tira o snapshot sob o mesmo lock:
// nenhuma escrita fica entre os dois
func (s *Store) SubscribeCatalog(ctx context.Context, def catalog.Catalog, fn func(catalog.Catalog)) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := &listener[catalog.Catalog]{fn: fn, ver: -1}
	s.mu.Lock()
	seeded := s.cat == nil
	if seeded {
		c := def.Clone()
		s.cat = &c
		s.catVer++
	}
	others := s.catalogListeners()
	id := s.nextSub
	s.nextSub++
	s.catalogSubs[id] = l
	ver, cur := s.catVer, s.cat.Clone()
	s.mu.Unlock()

	if seeded {
		notifyCatalog(others, ver, cur)
	}
	l.deliver(ver, cur)
	return func() {
		s.mu.Lock()
		delete(s.catalogSubs, id)
		s.mu.Unlock()
	}, nil
}

func (s *Store) CreateBet(ctx context.Context, d bets.Draft) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.seq++
	b := bets.Bet{
		ID:       uuid.NewString(),
		PlacedAt: s.Now().UTC(),
		Seq:      s.seq,
		Draft:    cloneDraft(d),
	}
	s.bets = append(s.bets, b)
	s.betsVer++
	ver, list, subs := s.betsVer, s.betSnapshot(), s.betListeners()
	s.mu.Unlock()

	notifyBets(subs, ver, list)
	return b.ID, nil
}

func (s *Store) ListBets(ctx context.Context) ([]bets.Bet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.betSnapshot(), nil
}

func (s *Store) SubscribeBets(ctx context.Context, fn func([]bets.Bet)) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := &listener[[]bets.Bet]{fn: fn, ver: -1}
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.betSubs[id] = l
	ver, list := s.betsVer, s.betSnapshot()
	s.mu.Unlock()

	l.deliver(ver, list)
	return func() {
		s.mu.Lock()
		delete(s.betSubs, id)
		s.mu.Unlock()
	}, nil
}

func (s *Store) DeleteBet(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	idx := -1
	for i, b := range s.bets {
		if b.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	s.bets = append(s.bets[:idx], s.bets[idx+1:]...)
	s.betsVer++
	ver, list, subs := s.betsVer, s.betSnapshot(), s.betListeners()
	s.mu.Unlock()

	notifyBets(subs, ver, list)
	return nil
}

func (s *Store) DeleteAllBets(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	n := int64(len(s.bets))
	s.bets = nil
	s.betsVer++
	ver, subs := s.betsVer, s.betListeners()
	s.mu.Unlock()

	notifyBets(subs, ver, []bets.Bet{})
	return n, nil
}

func (s *Store) ArchiveAndDeleteAllBets(ctx context.Context) ([]bets.Bet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	archived := s.betSnapshot()
	s.archive = append(s.archive, archived...)
	s.bets = nil
	s.betsVer++
	ver, subs := s.betsVer, s.betListeners()
	s.mu.Unlock()

	notifyBets(subs, ver, []bets.Bet{})
	return archived, nil
}

func (s *Store) ImportBets(ctx context.Context, list []bets.Bet) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	seen := make(map[string]struct{}, len(s.bets))
	for _, b := range s.bets {
		seen[b.ID] = struct{}{}
	}
	n := 0
	for _, b := range list {
		if _, dup := seen[b.ID]; dup {
			continue
		}
		seen[b.ID] = struct{}{}
		s.seq++
		b.Seq = s.seq
		b.PlacedAt = b.PlacedAt.UTC()
		b.Draft = cloneDraft(b.Draft)
		s.bets = append(s.bets, b)
		n++
	}
	if n == 0 {
		s.mu.Unlock()
		return 0, nil
	}
	s.betsVer++
	ver, snap, subs := s.betsVer, s.betSnapshot(), s.betListeners()
	s.mu.Unlock()

	notifyBets(subs, ver, snap)
	return n, nil
}

// Archived retorna o que já foi arquivado, mais recente primeiro.
func (s *Store) Archived() []bets.Bet {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]bets.Bet(nil), s.archive...)
	bets.SortRecentFirst(out)
	return out
}

func (s *Store) SaveScore(ctx context.Context, sc golf.Score) (golf.Score, error) {
	if err := ctx.Err(); err != nil {
		return golf.Score{}, err
	}
	sc, err := sc.Normalize()
	if err != nil {
		return golf.Score{}, err
	}
	k := scoreKey{golf.TeamKey(sc.Team), sc.Hole}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev, exists := s.scores[k]
	if !exists {
		s.order = append(s.order, k)
	}
	sc.Confirmed = exists && prev.Confirmed && prev.Sips == sc.Sips && prev.Penalties == sc.Penalties
	s.scores[k] = sc
	return sc, nil
}

func (s *Store) ListScores(ctx context.Context) ([]golf.Score, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]golf.Score, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.scores[k])
	}
	return out, nil
}

func (s *Store) ConfirmScore(ctx context.Context, team string, hole int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k := scoreKey{golf.TeamKey(team), hole}
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.scores[k]
	if !ok {
		return store.ErrNotFound
	}
	sc.Confirmed = true
	s.scores[k] = sc
	return nil
}

// betSnapshot exige s.mu travado.
func (s *Store) betSnapshot() []bets.Bet {
	out := make([]bets.Bet, len(s.bets))
	for i, b := range s.bets {
		b.Draft = cloneDraft(b.Draft)
		out[i] = b
	}
	bets.SortRecentFirst(out)
	return out
}

func (s *Store) catalogListeners() []*listener[catalog.Catalog] {
	out := make([]*listener[catalog.Catalog], 0, len(s.catalogSubs))
	for _, l := range s.catalogSubs {
		out = append(out, l)
	}
	return out
}

func (s *Store) betListeners() []*listener[[]bets.Bet] {
	out := make([]*listener[[]bets.Bet], 0, len(s.betSubs))
	for _, l := range s.betSubs {
		out = append(out, l)
	}
	return out
}

// listener descarta snapshots com versão menor ou igual à última entregue.
// fn roda com l.mu travado: não pode escrever no store
type listener[T any] struct {
	mu  sync.Mutex
	ver int64
	fn  func(T)
}

func (l *listener[T]) deliver(ver int64, v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ver <= l.ver {
		return
	}
	l.ver = ver
	l.fn(v)
}

func notifyCatalog(subs []*listener[catalog.Catalog], ver int64, c catalog.Catalog) {
	for _, l := range subs {
		l.deliver(ver, c.Clone())
	}
}

func notifyBets(subs []*listener[[]bets.Bet], ver int64, list []bets.Bet) {
	for _, l := range subs {
		out := make([]bets.Bet, len(list))
		copy(out, list)
		l.deliver(ver, out)
	}
}

func cloneDraft(d bets.Draft) bets.Draft {
	d.Legs = append([]bets.LegSnapshot(nil), d.Legs...)
	if d.StakesByLeg != nil {
		m := make(map[string]float64, len(d.StakesByLeg))
		for k, v := range d.StakesByLeg {
			m[k] = v
		}
		d.StakesByLeg = m
	}
	return d
}
