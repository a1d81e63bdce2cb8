// Package betctl implementa a CLI de operação: seed do catálogo a partir de
// YAML, consulta e limpeza de apostas, resultados e import de exports antigos.
package betctl

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/radieske/pub-bets/internal/bets"
	"github.com/radieske/pub-bets/internal/catalog"
	"github.com/radieske/pub-bets/internal/store"
	"github.com/radieske/pub-bets/pkg/contracts/events"
)

// Archiver exporta o arquivo de apostas (S3). Opcional
type Archiver interface {
	Export(ctx context.Context, archived []bets.Bet, c catalog.Catalog) (string, error)
}

// Publisher avisa o settlement-worker das mudanças feitas pela CLI
type Publisher interface {
	PublishBetPlaced(ctx context.Context, e events.BetPlaced) error
	PublishCatalogUpdated(ctx context.Context, e events.CatalogUpdated) error
	PublishBetsCleared(ctx context.Context, e events.BetsCleared) error
}

// App carrega as dependências dos comandos. Open é chamado uma vez antes de
// qualquer subcomando
type App struct {
	Out            io.Writer
	Log            *zap.Logger
	DefaultCatalog catalog.Catalog
	Open           func(ctx context.Context) (store.Store, error)
	NewArchiver    func(ctx context.Context) (Archiver, error) // nil = sem export
	Publisher      Publisher                                   // nil = não publica

	st store.Store
}

func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "betctl",
		Short:         "Operate a pub-bets event",
		Long:          `betctl seeds the catalog, inspects and settles bets, resets results and imports legacy exports.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.st != nil {
				return nil
			}
			st, err := app.Open(cmd.Context())
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			app.st = st
			return nil
		},
	}

	root.AddCommand(seedCommand(app))
	root.AddCommand(betsCommand(app))
	root.AddCommand(resultsCommand(app))
	root.AddCommand(golfCommand(app))
	root.AddCommand(importCommand(app))
	return root
}

// Close libera o store aberto pelos comandos
func (a *App) Close() error {
	if a.st == nil {
		return nil
	}
	return a.st.Close()
}

func (a *App) catalog(ctx context.Context) (catalog.Catalog, error) {
	return store.LoadFresh(ctx, a.st, a.DefaultCatalog)
}

// catalogUpdated publica depois de um SaveCatalog. Best-effort, como no bet-service
func (a *App) catalogUpdated(ctx context.Context, ev events.CatalogUpdated) {
	if a.Publisher == nil {
		return
	}
	if err := a.Publisher.PublishCatalogUpdated(ctx, ev); err != nil {
		a.Log.Warn("publish catalog_updated", zap.String("op", ev.Op), zap.Error(err))
	}
}

func (a *App) betsCleared(ctx context.Context, ev events.BetsCleared) {
	if a.Publisher == nil {
		return
	}
	if err := a.Publisher.PublishBetsCleared(ctx, ev); err != nil {
		a.Log.Warn("publish bets_cleared", zap.Error(err))
	}
}

// betsImported publica bet_placed para cada aposta nova do import
func (a *App) betsImported(ctx context.Context, list []bets.Bet) {
	if a.Publisher == nil {
		return
	}
	for _, b := range list {
		legIDs := make([]string, 0, len(b.Legs))
		for _, l := range b.Legs {
			legIDs = append(legIDs, l.LegID)
		}
		ev := events.BetPlaced{BetID: b.ID, BettorKey: b.Bettor.Key, Mode: string(b.Mode), LegIDs: legIDs, Stake: bets.Settle(b, nil).Stake}
		if err := a.Publisher.PublishBetPlaced(ctx, ev); err != nil {
			a.Log.Warn("publish bet_placed", zap.String("bet_id", b.ID), zap.Error(err))
			return
		}
	}
}
