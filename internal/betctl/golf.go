package betctl

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/radieske/pub-bets/internal/golf"
)

func golfCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "golf",
		Short: "Pub-golf scorecard",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "ladder",
		Short: "Print the ladder from confirmed scores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scores, err := app.st.ListScores(cmd.Context())
			if err != nil {
				return err
			}
			ladder := golf.Ladder(scores)
			if len(ladder) == 0 {
				fmt.Fprintln(app.Out, "No confirmed scores.")
				return nil
			}
			w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "#\tTEAM\tHOLES\tTOTAL")
			for i, s := range ladder {
				fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\n", i+1, s.Team, s.Holes, s.Total)
			}
			return w.Flush()
		},
	})
	return cmd
}
