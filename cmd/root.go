package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tayloree/dealchef/internal/catalog"
	"github.com/tayloree/dealchef/internal/config"
	"github.com/tayloree/dealchef/internal/display"
	"github.com/tayloree/dealchef/internal/filter"
	"github.com/tayloree/dealchef/internal/match"
	"github.com/tayloree/dealchef/internal/rank"
	"github.com/tayloree/dealchef/internal/shopping"
)

var (
	flagConfig   string
	flagRecipes  string
	flagOffers   string
	flagJSON     bool
	flagTag      string
	flagSearch   string
	flagBatch    bool
	flagMinScore int
	flagFreezer  bool
	flagLimit    int
	flagStore    string
	flagCategory string
	flagQuery    string
	flagSort     string
)

var rootCmd = &cobra.Command{
	Use:   "dealchef",
	Short: "Match recipes against this week's supermarket offers",
	Long: "CLI tool that matches a recipe catalog against the current Dutch supermarket\n" +
		"offers and ranks recipes by how much of them is on sale.\n\n" +
		"Agent-friendly mode: minor syntax issues are auto-corrected when intent is clear " +
		"(for example: -limit 5, limit=5, --limt 5).",
	Example: `  dealchef --limit 5
  dealchef top --limit 3
  dealchef recipe chili-con-carne
  dealchef shopping-list chili-con-carne:8 pasta-pesto
  dealchef offers --store jumbo --sort discount
  dealchef serve --addr :8080`,
	RunE: runRecipes,
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (default dealchef.yaml when present)")
	pf.StringVar(&flagRecipes, "recipes", "", "Recipe catalog file (YAML or JSON)")
	pf.StringVar(&flagOffers, "offers", "", "Offer catalog file or http(s) feed URL")
	pf.BoolVar(&flagJSON, "json", false, "Output as JSON")

	registerRecipeFilterFlags(rootCmd.Flags())
}

// Execute runs the root command.
func Execute() {
	os.Exit(runCLI(os.Args[1:], os.Stdout, os.Stderr))
}

func runCLI(args []string, stdout, stderr io.Writer) int {
	resetCLIState()

	normalizedArgs, notes := normalizeCLIArgs(args)
	for _, note := range notes {
		fmt.Fprintf(stderr, "note: %s\n", note)
	}

	if len(normalizedArgs) == 0 {
		if err := printQuickStart(stdout, !isTTY(stdout)); err != nil {
			cliErr := classifyCLIError(err)
			fmt.Fprintln(stderr, formatCLIErrorText(cliErr))
			return cliErr.ExitCode
		}
		return ExitSuccess
	}

	if shouldAutoJSON(normalizedArgs, isTTY(stdout)) {
		normalizedArgs = append(normalizedArgs, "--json")
	}

	setCommandIO(rootCmd, stdout, stderr)
	rootCmd.SetArgs(normalizedArgs)

	if err := rootCmd.Execute(); err != nil {
		cliErr := classifyCLIError(err)
		if hasJSONPreference(normalizedArgs) {
			if jerr := printCLIErrorJSON(stderr, cliErr); jerr != nil {
				fmt.Fprintln(stderr, formatCLIErrorText(classifyCLIError(jerr)))
				return ExitInternal
			}
		} else {
			fmt.Fprintln(stderr, formatCLIErrorText(cliErr))
		}
		return cliErr.ExitCode
	}
	return ExitSuccess
}

func setCommandIO(cmd *cobra.Command, stdout, stderr io.Writer) {
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	for _, child := range cmd.Commands() {
		setCommandIO(child, stdout, stderr)
	}
}

func resetCLIState() {
	flagConfig = ""
	flagRecipes = ""
	flagOffers = ""
	flagJSON = false
	flagTag = ""
	flagSearch = ""
	flagBatch = false
	flagMinScore = rank.DefaultBatchMinScore
	flagFreezer = false
	flagLimit = 0
	flagStore = ""
	flagCategory = ""
	flagQuery = ""
	flagSort = ""
	flagStats = false
	flagPDF = ""
	flagPlain = false
	flagAddr = ""
	flagSimpleTUI = false

	// cobra keeps parsed values between Execute calls on the same tree.
	resetFlagSet(rootCmd.PersistentFlags())
	resetFlagSet(rootCmd.Flags())
	for _, child := range rootCmd.Commands() {
		resetFlagSet(child.Flags())
	}
}

func resetFlagSet(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func registerRecipeFilterFlags(f *pflag.FlagSet) {
	f.StringVarP(&flagTag, "tag", "t", "", "Only recipes carrying this tag")
	f.StringVar(&flagSearch, "search", "", "Search recipe names, tags and ingredients")
	f.BoolVar(&flagBatch, "batch", false, "Only batch-cooking friendly recipes")
	f.IntVar(&flagMinScore, "min-score", rank.DefaultBatchMinScore, "Minimum batch cooking score used with --batch (1-5)")
	f.BoolVar(&flagFreezer, "freezer", false, "Only freezer friendly recipes")
	f.IntVarP(&flagLimit, "limit", "n", 0, "Limit number of results (0 = all)")
}

func registerOfferFilterFlags(f *pflag.FlagSet) {
	f.StringVarP(&flagStore, "store", "s", "", "Filter by store (e.g., jumbo, albert-heijn)")
	f.StringVarP(&flagCategory, "category", "c", "", "Filter by category (e.g., vlees, zuivel, groenten)")
	f.StringVarP(&flagQuery, "query", "q", "", "Search offers by keyword in name/description")
	f.StringVar(&flagSort, "sort", "", "Sort offers by relevance, discount, price, savings, or ending")
	f.IntVarP(&flagLimit, "limit", "n", 0, "Limit number of results (0 = all)")
}

func validateSortMode() error {
	if filter.ValidSortMode(flagSort) {
		return nil
	}
	return invalidArgsError(
		"invalid value for --sort (use relevance, discount, price, savings, or ending)",
		"dealchef offers --sort discount",
		"dealchef offers --sort ending",
	)
}

func validateLimit() error {
	if flagLimit < 0 {
		return invalidArgsError("--limit must not be negative", "dealchef top --limit 5")
	}
	return nil
}

// runtime is everything a command needs to answer a query.
type runtime struct {
	cfg        config.Config
	logger     *slog.Logger
	engine     *match.Engine
	aggregator *shopping.Aggregator
	recipes    *catalog.RecipeBook
	offers     catalog.OfferSource
}

// loadConfig reads the configuration and applies the persistent flag
// overrides on top of it.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, invalidArgsError(
			err.Error(),
			"dealchef --config dealchef.yaml",
			"Check DEALCHEF_* environment variables.",
		)
	}
	if flagRecipes != "" {
		cfg.Recipes = flagRecipes
	}
	if flagOffers != "" {
		cfg.Offers = flagOffers
	}
	return cfg, nil
}

func newRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := cfg.Logger(cmd.ErrOrStderr())
	if err != nil {
		return nil, invalidArgsError(err.Error(), "dealchef --config dealchef.yaml")
	}
	engine, err := cfg.Engine()
	if err != nil {
		return nil, invalidArgsError(err.Error(), "Check the matching and pricing sections of your config.")
	}
	aggregator, err := cfg.Aggregator()
	if err != nil {
		return nil, invalidArgsError(err.Error(), "Check the shopping section of your config.")
	}
	recipes, err := cfg.RecipeSource()
	if err != nil {
		return nil, dataError("loading recipes", err, "dealchef --recipes data/recipes.yaml")
	}
	return &runtime{
		cfg:        cfg,
		logger:     logger,
		engine:     engine,
		aggregator: aggregator,
		recipes:    recipes,
		offers:     cfg.OfferSource(logger),
	}, nil
}

func (rt *runtime) loadOffers(ctx context.Context) ([]catalog.Offer, error) {
	offers, err := rt.offers.Offers(ctx)
	if err != nil {
		if rt.cfg.OffersRemote() {
			return nil, upstreamError("fetching offers", err)
		}
		return nil, dataError("loading offers", err, "dealchef --offers data/offers.json")
	}
	return offers, nil
}

func (rt *runtime) matchAll(ctx context.Context, f rank.Filter) ([]match.RecipeMatch, error) {
	recipes, err := rt.recipes.Recipes(ctx)
	if err != nil {
		return nil, dataError("loading recipes", err)
	}
	offers, err := rt.loadOffers(ctx)
	if err != nil {
		return nil, err
	}
	return rt.engine.MatchAll(f.Apply(recipes), offers), nil
}

// recipe looks up id and, when it is unknown, suggests the closest id.
func (rt *runtime) recipe(ctx context.Context, id string) (catalog.Recipe, error) {
	recipe, err := rt.recipes.Recipe(ctx, id)
	if err == nil {
		return recipe, nil
	}
	if !errors.Is(err, catalog.ErrRecipeNotFound) {
		return catalog.Recipe{}, dataError("loading recipes", err)
	}

	suggestions := []string{"dealchef recipes --search " + id}
	all, _ := rt.recipes.Recipes(ctx)
	ids := make([]string, 0, len(all))
	for _, r := range all {
		ids = append(ids, r.ID)
	}
	if closest, ok := closestMatch(strings.ToLower(id), ids, 3); ok {
		suggestions = append([]string{fmt.Sprintf("Did you mean `%s`?", closest)}, suggestions...)
	}
	return catalog.Recipe{}, notFoundError(fmt.Sprintf("recipe %q not found", id), suggestions...)
}

func currentRecipeFilter() rank.Filter {
	f := rank.Filter{Tag: flagTag, Query: flagSearch, FreezerOnly: flagFreezer}
	if flagBatch {
		f.MinBatchScore = flagMinScore
	}
	return f
}

func runRecipes(cmd *cobra.Command, _ []string) error {
	if err := validateLimit(); err != nil {
		return err
	}
	if flagBatch && (flagMinScore < 1 || flagMinScore > 5) {
		return invalidArgsError("--min-score must be between 1 and 5", "dealchef recipes --batch --min-score 4")
	}

	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	matches, err := rt.matchAll(cmd.Context(), currentRecipeFilter())
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return notFoundError(
			"no recipes match your filters",
			"Relax filters like --tag/--search/--batch/--freezer.",
		)
	}
	if flagLimit > 0 && flagLimit < len(matches) {
		matches = matches[:flagLimit]
	}

	if flagJSON {
		return display.PrintRecipeMatchesJSON(cmd.OutOrStdout(), matches)
	}
	display.PrintRecipeMatches(cmd.OutOrStdout(), "Recipes", matches)
	return nil
}
