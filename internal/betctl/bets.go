package betctl

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/radieske/pub-bets/internal/bets"
	"github.com/radieske/pub-bets/internal/catalog"
	"github.com/radieske/pub-bets/pkg/contracts/events"
)

// Row é uma aposta com a liquidação atual, como sai no --json
type Row struct {
	bets.Bet
	Settlement bets.Settlement `json:"settlement"`
}

func betsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bets",
		Short: "Inspect and clear bets",
	}
	cmd.AddCommand(betsListCommand(app), betsClearCommand(app))
	return cmd
}

func betsListCommand(app *App) *cobra.Command {
	var name, email string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bets, most recent first, settled against the current results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := app.catalog(ctx)
			if err != nil {
				return err
			}
			list, err := app.st.ListBets(ctx)
			if err != nil {
				return err
			}
			if name != "" {
				list = bets.FilterByKey(list, bets.MakeKey(name, email))
			}

			lookup := catalog.Lookup(c)
			rows := make([]Row, 0, len(list))
			for _, b := range list {
				rows = append(rows, Row{Bet: b, Settlement: bets.Settle(b, lookup)})
			}

			if asJSON {
				enc := json.NewEncoder(app.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(app.Out, "No bets.")
				return nil
			}
			w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PLACED\tBETTOR\tMODE\tLEGS\tSTAKE\tPAYOUT\tSTATUS\tID")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\t%.2f\t%s\t%s\n",
					r.PlacedAt.Format("2006-01-02 15:04:05"), r.Bettor.Name, r.Mode, len(r.Legs),
					r.Settlement.Stake, r.Settlement.PotentialPayout, r.Settlement.Status, r.ID)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Only bets from this bettor")
	cmd.Flags().StringVar(&email, "email", "", "Bettor email, used with --name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func betsClearCommand(app *App) *cobra.Command {
	var archive, yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every bet, optionally moving them to the archive first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear bets without --yes")
			}
			ctx := cmd.Context()
			if !archive {
				n, err := app.st.DeleteAllBets(ctx)
				if err != nil {
					return err
				}
				app.Log.Info("bets cleared", zap.Int64("count", n))
				app.betsCleared(ctx, events.BetsCleared{Count: n})
				fmt.Fprintf(app.Out, "Deleted %d bets\n", n)
				return nil
			}

			c, err := app.catalog(ctx)
			if err != nil {
				return err
			}
			archived, err := app.st.ArchiveAndDeleteAllBets(ctx)
			if err != nil {
				return err
			}
			app.betsCleared(ctx, events.BetsCleared{Archived: true, Count: int64(len(archived))})
			fmt.Fprintf(app.Out, "Archived %d bets\n", len(archived))
			if app.NewArchiver == nil || len(archived) == 0 {
				return nil
			}
			exp, err := app.NewArchiver(ctx)
			if err != nil {
				return fmt.Errorf("archive export: %w", err)
			}
			key, err := exp.Export(ctx, archived, c)
			if err != nil {
				return fmt.Errorf("bets archived but export failed: %w", err)
			}
			fmt.Fprintf(app.Out, "Exported to %s\n", key)
			return nil
		},
	}
	cmd.Flags().BoolVar(&archive, "archive", false, "Copy bets to the archive (and S3, when configured) before deleting")
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")
	return cmd
}
