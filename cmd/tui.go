package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/tayloree/dealchef/internal/display"
	"github.com/tayloree/dealchef/internal/match"
	"github.com/tayloree/dealchef/internal/rank"
	"golang.org/x/term"
)

const tuiPageSize = 10

var flagSimpleTUI bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse recipe matches interactively in the terminal",
	Example: `  dealchef tui
  dealchef tui --tag vegetarisch --freezer
  dealchef tui --simple`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	registerRecipeFilterFlags(tuiCmd.Flags())
	tuiCmd.Flags().BoolVar(&flagSimpleTUI, "simple", false, "Use the line-based pager instead of the full-screen explorer")
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if err := validateLimit(); err != nil {
		return err
	}
	if !flagJSON && !isInteractiveSession(cmd.InOrStdin(), cmd.OutOrStdout()) {
		return invalidArgsError(
			"`dealchef tui` requires an interactive terminal",
			"Use `dealchef recipes --json` in pipelines.",
		)
	}

	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}

	initial := recipeViewOptions{
		Tag:         flagTag,
		Query:       flagSearch,
		FreezerOnly: flagFreezer,
		Limit:       flagLimit,
	}
	if flagBatch {
		initial.MinBatchScore = flagMinScore
	}

	if flagJSON || flagSimpleTUI {
		matches, err := rt.matchAll(cmd.Context(), rank.Filter{})
		if err != nil {
			return err
		}
		matches = initial.apply(matches)
		if len(matches) == 0 {
			return notFoundError(
				"no recipes match your filters",
				"Relax filters like --tag/--search/--batch/--freezer.",
			)
		}
		if flagJSON {
			return display.PrintRecipeMatchesJSON(cmd.OutOrStdout(), matches)
		}
		return runTUILoop(cmd.OutOrStdout(), cmd.InOrStdin(), matches)
	}

	model := newLoadingRecipesTUIModel(tuiLoadConfig{
		ctx: cmd.Context(),
		load: func(ctx context.Context) ([]match.RecipeMatch, error) {
			return rt.matchAll(ctx, rank.Filter{})
		},
		label:       rt.cfg.Offers,
		initialOpts: initial,
	})
	final, err := tea.NewProgram(
		model,
		tea.WithContext(cmd.Context()),
		tea.WithAltScreen(),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	).Run()
	if err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	if m, ok := final.(recipesTUIModel); ok && m.fatalErr != nil {
		return m.fatalErr
	}
	return nil
}

func isInteractiveSession(stdin io.Reader, stdout io.Writer) bool {
	inputFile, ok := stdin.(*os.File)
	if !ok {
		return false
	}
	if !term.IsTerminal(int(inputFile.Fd())) {
		return false
	}
	return isTTY(stdout)
}

func runTUILoop(out io.Writer, in io.Reader, matches []match.RecipeMatch) error {
	reader := bufio.NewReader(in)
	page := 0
	totalPages := (len(matches)-1)/tuiPageSize + 1

	for {
		renderTUIPage(out, matches, page, totalPages)

		line, err := reader.ReadString('\n')
		if err != nil {
			return nil
		}
		cmd := strings.TrimSpace(strings.ToLower(line))

		switch cmd {
		case "q", "quit", "exit":
			return nil
		case "n", "next":
			if page < totalPages-1 {
				page++
			}
		case "p", "prev", "previous":
			if page > 0 {
				page--
			}
		default:
			idx, convErr := strconv.Atoi(cmd)
			if convErr != nil || idx < 1 || idx > len(matches) {
				continue
			}
			renderRecipePage(out, matches[idx-1], idx, len(matches))
			if _, err := reader.ReadString('\n'); err != nil {
				return nil
			}
		}
	}
}

func renderTUIPage(out io.Writer, matches []match.RecipeMatch, page, totalPages int) {
	fmt.Fprint(out, "\033[H\033[2J")
	fmt.Fprintf(out, "dealchef tui | %d recipes | page %d/%d\n\n", len(matches), page+1, totalPages)

	start := page * tuiPageSize
	end := minInt(start+tuiPageSize, len(matches))
	for i := start; i < end; i++ {
		m := matches[i]
		fmt.Fprintf(out, "%2d. %s [%d%% on offer, %s]\n", i+1, m.Recipe.Name, m.MatchPercentage, display.Euro(m.EstimatedCost))
	}
	fmt.Fprintf(out, "\ncommands: number=details | n=next | p=prev | q=quit\n> ")
}

func renderRecipePage(out io.Writer, m match.RecipeMatch, index, total int) {
	fmt.Fprint(out, "\033[H\033[2J")
	fmt.Fprintf(out, "recipe %d/%d\n", index, total)
	display.PrintRecipeDetail(out, m)
	fmt.Fprint(out, "press Enter to return\n")
}
