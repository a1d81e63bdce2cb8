package betctl

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/radieske/pub-bets/internal/catalog"
	"github.com/radieske/pub-bets/pkg/contracts/events"
)

func resultsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Set or reset leg results",
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Set every leg back to pending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.catalog(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.st.SaveCatalog(cmd.Context(), catalog.ResetResults(c)); err != nil {
				return err
			}
			app.catalogUpdated(cmd.Context(), events.CatalogUpdated{Op: "reset_results"})
			fmt.Fprintf(app.Out, "Reset %d legs to pending\n", countLegs(c))
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <market-id> <leg-id> <pending|won|lost>",
		Short: "Record the result of one leg",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := catalog.ParseResult(args[2])
			if err != nil {
				return err
			}
			c, err := app.catalog(cmd.Context())
			if err != nil {
				return err
			}
			c, leg, err := catalog.UpdateLeg(c, args[0], args[1], catalog.LegPatch{Result: &r})
			if err != nil {
				return err
			}
			if err := app.st.SaveCatalog(cmd.Context(), c); err != nil {
				return err
			}
			app.catalogUpdated(cmd.Context(), events.CatalogUpdated{Op: "set_result", MarketID: args[0], LegID: args[1]})
			fmt.Fprintf(app.Out, "%s: %s\n", leg.Label, leg.Result)
			return nil
		},
	}

	cmd.AddCommand(reset, set)
	return cmd
}
