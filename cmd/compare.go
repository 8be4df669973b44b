package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/tayloree/dealchef/internal/catalog"
	"github.com/tayloree/dealchef/internal/display"
	"github.com/tayloree/dealchef/internal/filter"
	"github.com/tayloree/dealchef/internal/match"
)

type compareStoreResult struct {
	Rank                int     `json:"rank"`
	Store               string  `json:"store"`
	Name                string  `json:"name"`
	MatchedIngredients  int     `json:"matchedIngredients"`
	EligibleIngredients int     `json:"eligibleIngredients"`
	MatchScore          int     `json:"matchScore"`
	EstimatedCost       float64 `json:"estimatedCost"`
	EstimatedSavings    float64 `json:"estimatedSavings"`
	TopOffer            string  `json:"topOffer"`
}

var compareCmd = &cobra.Command{
	Use:   "compare ID",
	Short: "Compare stores by how much of one recipe they have on offer",
	Long: "Match the recipe against each store's offers on its own, so you can see\n" +
		"where a single trip covers the most ingredients.",
	Example: `  dealchef compare chili-con-carne
  dealchef compare chili-con-carne --category vlees --json`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringVarP(&flagCategory, "category", "c", "", "Only consider offers in this category")
	compareCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "Only consider offers matching this keyword")
	compareCmd.Flags().IntVarP(&flagLimit, "limit", "n", 0, "Limit number of stores (0 = all)")
}

func runCompare(cmd *cobra.Command, args []string) error {
	if err := validateLimit(); err != nil {
		return err
	}
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	recipe, err := rt.recipe(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	offers, err := rt.loadOffers(cmd.Context())
	if err != nil {
		return err
	}

	results := compareStores(rt.engine, recipe, offers)
	if len(results) == 0 {
		return notFoundError(
			fmt.Sprintf("no offers match any ingredient of %q", recipe.ID),
			"Relax filters like --category/--query.",
		)
	}
	if flagLimit > 0 && flagLimit < len(results) {
		results = results[:flagLimit]
	}

	if flagJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(results)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nStore comparison for %s (%d store(s) with matches)\n\n", recipe.Name, len(results))
	for _, r := range results {
		fmt.Fprintf(
			out,
			"%d. %s\n   on offer: %d/%d (%d%%) | cost: %s | savings: %s\n   top: %s\n\n",
			r.Rank,
			r.Name,
			r.MatchedIngredients,
			r.EligibleIngredients,
			r.MatchScore,
			display.Euro(r.EstimatedCost),
			display.Euro(r.EstimatedSavings),
			r.TopOffer,
		)
	}
	return nil
}

// compareStores matches recipe against each store's offers separately and
// ranks stores by matched ingredients, then savings, then cost.
func compareStores(engine *match.Engine, recipe catalog.Recipe, offers []catalog.Offer) []compareStoreResult {
	var results []compareStoreResult
	for _, store := range catalog.Stores(offers) {
		storeOffers := filter.Apply(offers, filter.Options{
			Store:    string(store),
			Category: flagCategory,
			Query:    flagQuery,
		})
		if len(storeOffers) == 0 {
			continue
		}
		m := engine.MatchRecipe(recipe, storeOffers)
		if m.MatchedCount == 0 {
			continue
		}
		results = append(results, compareStoreResult{
			Store:               string(store),
			Name:                store.DisplayName(),
			MatchedIngredients:  m.MatchedCount,
			EligibleIngredients: m.EligibleCount,
			MatchScore:          m.MatchPercentage,
			EstimatedCost:       m.EstimatedCost,
			EstimatedSavings:    m.TotalSavings,
			TopOffer:            topOfferTitle(m),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].MatchedIngredients != results[j].MatchedIngredients {
			return results[i].MatchedIngredients > results[j].MatchedIngredients
		}
		if results[i].EstimatedSavings != results[j].EstimatedSavings {
			return results[i].EstimatedSavings > results[j].EstimatedSavings
		}
		return results[i].EstimatedCost < results[j].EstimatedCost
	})
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

// topOfferTitle names the chosen offer with the largest saving.
func topOfferTitle(m match.RecipeMatch) string {
	var best *catalog.Offer
	bestSavings := -1.0
	for _, im := range m.Ingredients {
		if im.BestOffer != nil && im.Savings > bestSavings {
			best = im.BestOffer
			bestSavings = im.Savings
		}
	}
	if best == nil {
		return "-"
	}
	if name := filter.CleanText(best.ProductName); name != "" {
		return name
	}
	return "Offer " + best.ID
}
