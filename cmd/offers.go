package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tayloree/dealchef/internal/catalog"
	"github.com/tayloree/dealchef/internal/display"
	"github.com/tayloree/dealchef/internal/filter"
)

var flagStats bool

var offersCmd = &cobra.Command{
	Use:   "offers",
	Short: "Browse this week's supermarket offers",
	Example: `  dealchef offers --store jumbo
  dealchef offers --category vlees --sort discount --limit 10
  dealchef offers --query kip --json
  dealchef offers --stats`,
	RunE: runOffers,
}

func init() {
	rootCmd.AddCommand(offersCmd)
	registerOfferFilterFlags(offersCmd.Flags())
	offersCmd.Flags().BoolVar(&flagStats, "stats", false, "Show offer counts per store and category instead of the offers")
}

func runOffers(cmd *cobra.Command, _ []string) error {
	if err := validateSortMode(); err != nil {
		return err
	}
	if err := validateLimit(); err != nil {
		return err
	}

	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	offers, err := rt.loadOffers(cmd.Context())
	if err != nil {
		return err
	}

	if flagStats {
		stats := catalog.OfferStats(offers)
		if flagJSON {
			return display.PrintOfferStatsJSON(cmd.OutOrStdout(), stats)
		}
		display.PrintOfferStats(cmd.OutOrStdout(), stats)
		return nil
	}

	if len(offers) == 0 {
		return notFoundError(
			"no offers in the current catalog",
			"Check --offers or the offers setting in your config.",
		)
	}

	items := filter.Apply(offers, filter.Options{
		Store:    flagStore,
		Category: flagCategory,
		Query:    flagQuery,
		Sort:     filter.NormalizeSortMode(flagSort),
		Limit:    flagLimit,
	})
	if len(items) == 0 {
		return notFoundError(
			"no offers match your filters",
			"Relax filters like --store/--category/--query.",
		)
	}

	if flagJSON {
		return display.PrintOffersJSON(cmd.OutOrStdout(), items)
	}
	display.PrintOffers(cmd.OutOrStdout(), items)
	return nil
}
