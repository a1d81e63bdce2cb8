package betctl

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/radieske/pub-bets/internal/catalog"
	"github.com/radieske/pub-bets/internal/store"
	"github.com/radieske/pub-bets/pkg/contracts/events"
)

func seedCommand(app *App) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed <catalog.yaml>",
		Short: "Load the catalog from a YAML file",
		Long: `Load the catalog from a YAML file. Missing ids are generated and results
start as pending. Without --force an existing catalog is left untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := LoadCatalogFile(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if !force {
				_, err := app.st.LoadCatalog(ctx)
				if err == nil {
					fmt.Fprintln(app.Out, "Catalog already exists, use --force to replace it.")
					return nil
				}
				if !errors.Is(err, store.ErrNotFound) {
					return err
				}
			}
			if err := app.st.SaveCatalog(ctx, c); err != nil {
				return err
			}
			app.catalogUpdated(ctx, events.CatalogUpdated{Op: "seed"})
			app.Log.Info("catalog seeded", zap.String("file", args[0]), zap.Int("markets", len(c.Markets)))
			fmt.Fprintf(app.Out, "Seeded %q: %d markets, %d legs\n", c.EventTitle, len(c.Markets), countLegs(c))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Replace the current catalog")
	return cmd
}

// LoadCatalogFile lê e normaliza um catálogo em YAML
func LoadCatalogFile(path string) (catalog.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return catalog.Catalog{}, fmt.Errorf("read %s: %w", path, err)
	}
	var c catalog.Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return catalog.Catalog{}, fmt.Errorf("parse %s: %w", path, err)
	}
	c, err = catalog.Normalize(c)
	if err != nil {
		return catalog.Catalog{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func countLegs(c catalog.Catalog) int {
	n := 0
	for _, m := range c.Markets {
		n += len(m.Legs)
	}
	return n
}
