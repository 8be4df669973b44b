package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tayloree/dealchef/internal/display"
	"github.com/tayloree/dealchef/internal/filter"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List offer categories for the current week",
	Example: `  dealchef categories
  dealchef categories --json`,
	RunE: runCategories,
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, _ []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	offers, err := rt.loadOffers(cmd.Context())
	if err != nil {
		return err
	}
	if len(offers) == 0 {
		return notFoundError(
			"no offers in the current catalog",
			"Check --offers or the offers setting in your config.",
		)
	}

	cats := filter.Categories(offers)

	if flagJSON {
		return display.PrintCategoriesJSON(cmd.OutOrStdout(), cats)
	}
	display.PrintCategories(cmd.OutOrStdout(), cats)
	return nil
}
