package betctl

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/radieske/pub-bets/internal/bets"
	"github.com/radieske/pub-bets/internal/store"
)

func importCommand(app *App) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import <export.json>",
		Short: "Import bets from a legacy JSON export",
		Long: `Import bets from a legacy JSON export, keeping their ids and timestamps.
Timestamps may be epoch milliseconds, RFC3339 strings or {seconds, nanoseconds}
objects. Bets already present are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			list, err := ParseLegacy(f)
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(app.Out, "Parsed %d bets (dry run)\n", len(list))
				return nil
			}

			imp, ok := app.st.(store.Importer)
			if !ok {
				return fmt.Errorf("store %T does not support import", app.st)
			}
			existing, err := app.st.ListBets(cmd.Context())
			if err != nil {
				return err
			}
			n, err := imp.ImportBets(cmd.Context(), list)
			if err != nil {
				return err
			}
			app.betsImported(cmd.Context(), newBets(list, existing))
			app.Log.Info("legacy import", zap.String("file", args[0]), zap.Int("parsed", len(list)), zap.Int("imported", n))
			fmt.Fprintf(app.Out, "Imported %d of %d bets\n", n, len(list))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse the file without writing")
	return cmd
}

// newBets retorna as apostas de list cujo id ainda não existia
func newBets(list, existing []bets.Bet) []bets.Bet {
	seen := make(map[string]struct{}, len(existing))
	for _, b := range existing {
		seen[b.ID] = struct{}{}
	}
	var out []bets.Bet
	for _, b := range list {
		if _, ok := seen[b.ID]; ok {
			continue
		}
		seen[b.ID] = struct{}{}
		out = append(out, b)
	}
	return out
}
