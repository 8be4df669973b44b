package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tayloree/dealchef/internal/catalog"
	"github.com/tayloree/dealchef/internal/display"
)

var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "List the stores in the current offer catalog",
	Long:  "List every store with offers this week. Use the slug with `offers --store` or `compare`.",
	Example: `  dealchef stores
  dealchef stores --json`,
	RunE: runStores,
}

func init() {
	rootCmd.AddCommand(storesCmd)
}

func runStores(cmd *cobra.Command, _ []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	offers, err := rt.loadOffers(cmd.Context())
	if err != nil {
		return err
	}

	stores := storeSummaries(offers)
	if len(stores) == 0 {
		return notFoundError(
			"no offers in the current catalog",
			"Check --offers or the offers setting in your config.",
		)
	}

	if flagJSON {
		return display.PrintStoresJSON(cmd.OutOrStdout(), stores)
	}
	display.PrintStores(cmd.OutOrStdout(), stores)
	return nil
}

func storeSummaries(offers []catalog.Offer) []display.StoreJSON {
	counts := catalog.OfferStats(offers).ByStore
	stores := catalog.Stores(offers)
	out := make([]display.StoreJSON, 0, len(stores))
	for _, s := range stores {
		out = append(out, display.StoreJSON{
			Slug:   string(s),
			Name:   s.DisplayName(),
			Offers: counts[string(s)],
			Known:  s.Known(),
		})
	}
	return out
}
