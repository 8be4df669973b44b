package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tayloree/dealchef/internal/display"
	"github.com/tayloree/dealchef/internal/shopping"
)

var (
	flagPDF   string
	flagPlain bool
)

var shoppingListCmd = &cobra.Command{
	Use:   "shopping-list ID[:SERVINGS]...",
	Short: "Build a merged shopping list for one or more recipes",
	Long: "Merge the ingredients of the selected recipes, scale them to the requested\n" +
		"servings, and group them by the store whose offer covers them. Pantry\n" +
		"staples are left out.",
	Example: `  dealchef shopping-list chili-con-carne
  dealchef shopping-list chili-con-carne:8 pasta-pesto:2
  dealchef shopping-list chili-con-carne --pdf boodschappen.pdf
  dealchef shopping-list chili-con-carne --plain`,
	Args: cobra.MinimumNArgs(1),
	RunE: runShoppingList,
}

func init() {
	rootCmd.AddCommand(shoppingListCmd)
	shoppingListCmd.Flags().StringVarP(&flagPDF, "pdf", "o", "", "Also write the list as a PDF with a QR code to this file")
	shoppingListCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print the list as plain text for pasting into a notes app")
}

// parseSelection splits "id" or "id:servings". Servings 0 means the
// recipe's own servings.
func parseSelection(arg string) (string, int, error) {
	id, servings, found := strings.Cut(strings.TrimSpace(arg), ":")
	if id == "" {
		return "", 0, invalidArgsError(
			fmt.Sprintf("empty recipe id in %q", arg),
			"dealchef shopping-list chili-con-carne:8",
		)
	}
	if !found {
		return id, 0, nil
	}
	n, err := strconv.Atoi(servings)
	if err != nil || n < 1 {
		return "", 0, invalidArgsError(
			fmt.Sprintf("invalid servings in %q (want a positive number)", arg),
			"dealchef shopping-list chili-con-carne:8",
		)
	}
	return id, n, nil
}

func runShoppingList(cmd *cobra.Command, args []string) error {
	type request struct {
		id       string
		servings int
	}
	requests := make([]request, 0, len(args))
	for _, arg := range args {
		id, servings, err := parseSelection(arg)
		if err != nil {
			return err
		}
		requests = append(requests, request{id: id, servings: servings})
	}

	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}

	selections := make([]shopping.Selection, 0, len(requests))
	for _, req := range requests {
		recipe, err := rt.recipe(cmd.Context(), req.id)
		if err != nil {
			return err
		}
		selections = append(selections, shopping.Selection{Recipe: recipe, Servings: req.servings})
	}

	offers, err := rt.loadOffers(cmd.Context())
	if err != nil {
		return err
	}
	list := rt.aggregator.Build(selections, offers)

	if flagPDF != "" {
		if err := writeShoppingListPDF(flagPDF, list, selections); err != nil {
			return err
		}
		rt.logger.Info("wrote shopping list PDF", "path", flagPDF, "items", len(list.Items))
	}

	switch {
	case flagJSON:
		return display.PrintShoppingListJSON(cmd.OutOrStdout(), list)
	case flagPlain:
		_, err := fmt.Fprint(cmd.OutOrStdout(), display.PlainShoppingList(list))
		return err
	default:
		display.PrintShoppingList(cmd.OutOrStdout(), list)
		return nil
	}
}

func writeShoppingListPDF(path string, list shopping.List, selections []shopping.Selection) (err error) {
	names := make([]string, 0, len(selections))
	for _, sel := range selections {
		names = append(names, sel.Recipe.Name)
	}

	f, err := os.Create(path)
	if err != nil {
		return invalidArgsError(fmt.Sprintf("creating %s: %v", path, err), "dealchef shopping-list ID --pdf lijst.pdf")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := display.WriteShoppingListPDF(f, list, "Shopping list: "+strings.Join(names, ", ")); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
