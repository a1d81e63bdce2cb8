// Package store define o contrato de persistência consumido pelo core
// (catálogo, apostas e placar do pub-golf) e as implementações memory,
// postgres e live (postgres + redis).
package store

import (
	"context"
	"errors"

	"github.com/radieske/pub-bets/internal/bets"
	"github.com/radieske/pub-bets/internal/catalog"
	"github.com/radieske/pub-bets/internal/golf"
)

var ErrNotFound = errors.New("not found")

// CatalogStore guarda o documento único do catálogo. Escrita é o documento
// inteiro, last writer wins.
type CatalogStore interface {
	// LoadCatalog retorna ErrNotFound quando nada foi salvo ainda
	LoadCatalog(ctx context.Context) (catalog.Catalog, error)
	// LoadOrInitialize salva def se o documento não existir e retorna o atual
	LoadOrInitialize(ctx context.Context, def catalog.Catalog) (catalog.Catalog, error)
	SaveCatalog(ctx context.Context, c catalog.Catalog) error
	// SubscribeCatalog semeia def se preciso, entrega o snapshot atual e depois
	// um snapshot completo a cada mudança. A função retornada cancela.
	SubscribeCatalog(ctx context.Context, def catalog.Catalog, fn func(catalog.Catalog)) (func(), error)
}

// BetStore guarda as apostas. Listagens vêm sempre da mais recente para a
// mais antiga, com desempate determinístico.
type BetStore interface {
	// CreateBet atribui id e PlacedAt
	CreateBet(ctx context.Context, d bets.Draft) (string, error)
	ListBets(ctx context.Context) ([]bets.Bet, error)
	SubscribeBets(ctx context.Context, fn func([]bets.Bet)) (func(), error)
	DeleteBet(ctx context.Context, id string) error
	DeleteAllBets(ctx context.Context) (int64, error)
	// ArchiveAndDeleteAllBets copia tudo para o arquivo e apaga, numa operação só
	ArchiveAndDeleteAllBets(ctx context.Context) ([]bets.Bet, error)
}

// ScoreStore guarda o placar do pub-golf, uma linha por (time, buraco).
type ScoreStore interface {
	// SaveScore grava ou substitui o score; um score alterado volta a não confirmado
	SaveScore(ctx context.Context, s golf.Score) (golf.Score, error)
	ListScores(ctx context.Context) ([]golf.Score, error)
	ConfirmScore(ctx context.Context, team string, hole int) error
}

// Importer grava apostas com id e PlacedAt já definidos (import de export
// antigo). Ids já existentes são ignorados; retorna quantas entraram.
type Importer interface {
	ImportBets(ctx context.Context, list []bets.Bet) (int, error)
}

// FreshCatalogLoader é implementado por stores com cache de catálogo: lê
// direto da fonte (semeando def se preciso). Quem vai escrever lê por aqui.
type FreshCatalogLoader interface {
	LoadCatalogFresh(ctx context.Context, def catalog.Catalog) (catalog.Catalog, error)
}

// LoadFresh lê o catálogo sem passar por cache quando o store tem um
func LoadFresh(ctx context.Context, st CatalogStore, def catalog.Catalog) (catalog.Catalog, error) {
	if f, ok := st.(FreshCatalogLoader); ok {
		return f.LoadCatalogFresh(ctx, def)
	}
	return st.LoadOrInitialize(ctx, def)
}

// Store é tudo que o bet-service precisa.
type Store interface {
	CatalogStore
	BetStore
	ScoreStore
	Ping(ctx context.Context) error
	Close() error
}
