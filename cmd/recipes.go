package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tayloree/dealchef/internal/display"
	"github.com/tayloree/dealchef/internal/match"
	"github.com/tayloree/dealchef/internal/rank"
)

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "List recipes ranked by how much of them is on offer",
	Example: `  dealchef recipes --tag vegetarisch
  dealchef recipes --batch --min-score 4 --freezer
  dealchef recipes --search kip --json`,
	RunE: runRecipes,
}

var recipeCmd = &cobra.Command{
	Use:   "recipe ID",
	Short: "Show one recipe with its matching offers",
	Example: `  dealchef recipe chili-con-carne
  dealchef recipe chili-con-carne --json`,
	Args: cobra.ExactArgs(1),
	RunE: runRecipe,
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Recipes with the most ingredients on offer",
	Example: `  dealchef top
  dealchef top --limit 3 --json`,
	RunE: rankedRunner("Top matches", rank.TopMatches),
}

var dealsCmd = &cobra.Command{
	Use:   "deals",
	Short: "Recipes with the largest total savings",
	Example: `  dealchef deals
  dealchef deals --limit 3`,
	RunE: rankedRunner("Best deals", rank.BestDeals),
}

var cheapestCmd = &cobra.Command{
	Use:   "cheapest",
	Short: "Recipes with the lowest estimated cost per serving",
	Example: `  dealchef cheapest
  dealchef cheapest --limit 5 --json`,
	RunE: rankedRunner("Cheapest per serving", rank.Cheapest),
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List recipe tags and how many recipes carry them",
	Example: `  dealchef tags
  dealchef tags --json`,
	RunE: runTags,
}

func init() {
	rootCmd.AddCommand(recipesCmd, recipeCmd, topCmd, dealsCmd, cheapestCmd, tagsCmd)

	registerRecipeFilterFlags(recipesCmd.Flags())
	for _, c := range []*cobra.Command{topCmd, dealsCmd, cheapestCmd} {
		c.Flags().IntVarP(&flagLimit, "limit", "n", 0, "Limit number of results (default depends on the view)")
	}
}

func runRecipe(cmd *cobra.Command, args []string) error {
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

	m := rt.engine.MatchRecipe(recipe, offers)
	if flagJSON {
		return display.PrintRecipeDetailJSON(cmd.OutOrStdout(), m)
	}
	display.PrintRecipeDetail(cmd.OutOrStdout(), m)
	return nil
}

func rankedRunner(title string, view func([]match.RecipeMatch, int) []match.RecipeMatch) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if err := validateLimit(); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		matches, err := rt.matchAll(cmd.Context(), rank.Filter{})
		if err != nil {
			return err
		}
		ranked := view(matches, flagLimit)

		if flagJSON {
			return display.PrintRecipeMatchesJSON(cmd.OutOrStdout(), ranked)
		}
		display.PrintRecipeMatches(cmd.OutOrStdout(), title, ranked)
		return nil
	}
}

func runTags(cmd *cobra.Command, _ []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	recipes, err := rt.recipes.Recipes(cmd.Context())
	if err != nil {
		return dataError("loading recipes", err)
	}
	tags := rank.Tags(recipes)

	if flagJSON {
		return display.PrintTagsJSON(cmd.OutOrStdout(), tags)
	}
	display.PrintTags(cmd.OutOrStdout(), tags)
	return nil
}
