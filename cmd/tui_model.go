package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tayloree/dealchef/internal/catalog"
	"github.com/tayloree/dealchef/internal/display"
	"github.com/tayloree/dealchef/internal/match"
	"github.com/tayloree/dealchef/internal/rank"
)

const (
	minTUIWidth  = 92
	minTUIHeight = 24
)

// Match tiers used as list sections, in display order.
const (
	tierFull    = "Fully on offer"
	tierPartial = "Partly on offer"
	tierNone    = "No offers"
)

var tierOrder = []string{tierFull, tierPartial, tierNone}

var (
	tuiHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	tuiMetaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	tuiHintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tuiValueStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	tuiOfferStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	tuiRecipeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	tuiMutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	tuiSectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
)

// recipeViewOptions are the inline filters of the explorer.
type recipeViewOptions struct {
	Tag           string
	Query         string
	MinBatchScore int
	FreezerOnly   bool
	Sort          string
	Limit         int
}

// apply filters, orders and truncates matches. The input is not modified.
func (o recipeViewOptions) apply(matches []match.RecipeMatch) []match.RecipeMatch {
	f := rank.Filter{Tag: o.Tag, Query: o.Query, MinBatchScore: o.MinBatchScore, FreezerOnly: o.FreezerOnly}
	keep := make(map[string]bool, len(matches))
	for _, r := range f.Apply(recipesOf(matches)) {
		keep[r.ID] = true
	}
	recipes := make([]match.RecipeMatch, 0, len(keep))
	for _, m := range matches {
		if keep[m.Recipe.ID] {
			recipes = append(recipes, m)
		}
	}

	switch canonicalRecipeSort(o.Sort) {
	case "savings":
		sort.SliceStable(recipes, func(i, j int) bool {
			return recipes[i].TotalSavings > recipes[j].TotalSavings
		})
	case "cost":
		recipes = rank.Cheapest(recipes, len(recipes)+1)
	}

	if o.Limit > 0 && o.Limit < len(recipes) {
		recipes = recipes[:o.Limit]
	}
	return recipes
}

type tuiLoadConfig struct {
	ctx         context.Context
	load        func(context.Context) ([]match.RecipeMatch, error)
	label       string
	initialOpts recipeViewOptions
}

type tuiDataLoadedMsg struct {
	matches []match.RecipeMatch
}

type tuiDataLoadErrMsg struct {
	err error
}

type tuiFocus int

const (
	tuiFocusList tuiFocus = iota
	tuiFocusDetail
)

type tuiGroupItem struct {
	name    string
	count   int
	ordinal int
}

func (g tuiGroupItem) FilterValue() string { return strings.ToLower(g.name) }
func (g tuiGroupItem) Title() string       { return fmt.Sprintf("%d. %s", g.ordinal, g.name) }
func (g tuiGroupItem) Description() string {
	return fmt.Sprintf("Section header • %d recipes", g.count)
}

type tuiRecipeItem struct {
	match       match.RecipeMatch
	group       string
	description string
	filterValue string
}

func (r tuiRecipeItem) FilterValue() string { return r.filterValue }
func (r tuiRecipeItem) Title() string       { return r.match.Recipe.Name }
func (r tuiRecipeItem) Description() string { return r.description }

type recipesTUIModel struct {
	loading  bool
	spinner  spinner.Model
	loadCmd  tea.Cmd
	fatalErr error

	label      string
	allMatches []match.RecipeMatch

	opts        recipeViewOptions
	initialOpts recipeViewOptions

	sortChoices  []string
	sortIndex    int
	tagChoices   []string
	tagIndex     int
	limitChoices []int
	limitIndex   int

	list   list.Model
	detail viewport.Model

	focus      tuiFocus
	showHelp   bool
	selectedID string

	groupStarts    []int
	visibleRecipes int

	width, height   int
	bodyHeight      int
	listPaneWidth   int
	detailPaneWidth int
	tooSmall        bool
}

func newLoadingRecipesTUIModel(cfg tuiLoadConfig) recipesTUIModel {
	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(1)

	lst := list.New([]list.Item{}, delegate, 0, 0)
	lst.Title = "Recipes"
	lst.SetStatusBarItemName("item", "items")
	lst.SetShowStatusBar(true)
	lst.SetFilteringEnabled(true)
	lst.SetShowHelp(false)
	lst.SetShowPagination(true)
	lst.DisableQuitKeybindings()

	detail := viewport.New(0, 0)
	detail.KeyMap.PageDown.SetKeys("f", "pgdown")
	detail.KeyMap.PageUp.SetKeys("b", "pgup")
	detail.KeyMap.HalfPageDown.SetKeys("d")
	detail.KeyMap.HalfPageUp.SetKeys("u")

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	return recipesTUIModel{
		loading:     true,
		spinner:     spin,
		loadCmd:     loadTUIDataCmd(cfg),
		label:       cfg.label,
		initialOpts: cfg.initialOpts,
		opts:        cfg.initialOpts,
		list:        lst,
		detail:      detail,
		focus:       tuiFocusList,
	}
}

func loadTUIDataCmd(cfg tuiLoadConfig) tea.Cmd {
	return func() tea.Msg {
		matches, err := cfg.load(cfg.ctx)
		if err != nil {
			return tuiDataLoadErrMsg{err: err}
		}
		return tuiDataLoadedMsg{matches: matches}
	}
}

func (m recipesTUIModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd)
}

func (m recipesTUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tuiDataLoadedMsg:
		m.loading = false
		m.allMatches = msg.matches
		m.initialOpts.Sort = canonicalRecipeSort(m.initialOpts.Sort)
		m.opts = m.initialOpts
		m.initializeInlineChoices()
		m.applyCurrentFilters(true)
		m.resize()
		return m, nil

	case tuiDataLoadErrMsg:
		m.loading = false
		m.fatalErr = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	keyMsg, isKey := msg.(tea.KeyMsg)
	if isKey {
		if keyMsg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.loading {
			if keyMsg.String() == "q" {
				return m, tea.Quit
			}
			return m, nil
		}
	}

	if m.loading {
		return m, nil
	}

	if isKey {
		filtering := m.list.FilterState() == list.Filtering
		key := keyMsg.String()

		if !filtering {
			switch key {
			case "q":
				return m, tea.Quit
			case "tab":
				if m.focus == tuiFocusList {
					m.focus = tuiFocusDetail
				} else {
					m.focus = tuiFocusList
				}
				return m, nil
			case "esc":
				if m.focus == tuiFocusDetail {
					m.focus = tuiFocusList
					return m, nil
				}
			case "?":
				m.showHelp = !m.showHelp
				m.resize()
				return m, nil
			case "s":
				m.cycleSortMode()
				return m, nil
			case "t":
				m.cycleTag()
				return m, nil
			case "z":
				m.opts.FreezerOnly = !m.opts.FreezerOnly
				m.applyCurrentFilters(false)
				return m, nil
			case "l":
				m.cycleLimit()
				return m, nil
			case "r":
				m.opts = m.initialOpts
				m.syncChoiceIndexesFromOptions()
				m.applyCurrentFilters(false)
				return m, nil
			case "]", "[":
				if m.list.IsFiltered() {
					return m, m.list.NewStatusMessage("Clear fuzzy filter before section jumps.")
				}
				if key == "]" {
					m.jumpSection(1)
				} else {
					m.jumpSection(-1)
				}
				return m, nil
			}

			if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
				if m.list.IsFiltered() {
					return m, m.list.NewStatusMessage("Clear fuzzy filter before section jumps.")
				}
				m.jumpToSection(int(key[0] - '1'))
				return m, nil
			}

			if m.focus == tuiFocusDetail {
				var cmd tea.Cmd
				m.detail, cmd = m.detail.Update(msg)
				return m, cmd
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.refreshDetail(false)
	return m, cmd
}

func (m recipesTUIModel) View() string {
	if m.loading {
		return m.loadingView()
	}
	if m.width == 0 || m.height == 0 {
		return tuiMetaStyle.Render("Loading interface...")
	}
	if m.tooSmall {
		return lipgloss.NewStyle().
			Padding(1, 2).
			Render(
				fmt.Sprintf(
					"Terminal too small (%dx%d).\nResize to at least %dx%d for the two-pane recipe explorer.",
					m.width, m.height, minTUIWidth, minTUIHeight,
				),
			)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.headerView(),
		m.bodyView(),
		m.footerView(),
	)
}

func (m recipesTUIModel) loadingView() string {
	width := m.width
	if width == 0 {
		width = 80
	}
	skeletonStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	lines := []string{
		tuiHeaderStyle.Render("dealchef tui"),
		tuiMetaStyle.Render("Preparing interactive interface..."),
		"",
		fmt.Sprintf("%s Matching recipes against this week's offers", m.spinner.View()),
		tuiHintStyle.Render("Tip: press q to cancel."),
		"",
		skeletonStyle.Render("┌──────────────────────────────┬─────────────────────────────────────────┐"),
		skeletonStyle.Render("│  Loading recipe list...      │  Loading detail panel...               │"),
		skeletonStyle.Render("│  • match tiers               │  • ingredient offers                   │"),
		skeletonStyle.Render("│  • filter index              │  • scroll viewport                     │"),
		skeletonStyle.Render("└──────────────────────────────┴─────────────────────────────────────────┘"),
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}

func (m *recipesTUIModel) resize() {
	if m.width == 0 || m.height == 0 || m.loading {
		return
	}

	m.tooSmall = m.width < minTUIWidth || m.height < minTUIHeight
	if m.tooSmall {
		return
	}

	headerH := 3
	footerH := 2
	if m.showHelp {
		footerH = 6
	}
	m.bodyHeight = maxInt(8, m.height-headerH-footerH-1)

	listWidth := maxInt(40, int(float64(m.width)*0.43))
	if listWidth > m.width-42 {
		listWidth = m.width / 2
	}
	detailWidth := m.width - listWidth - 1
	if detailWidth < 36 {
		detailWidth = 36
		listWidth = m.width - detailWidth - 1
	}

	m.listPaneWidth = listWidth
	m.detailPaneWidth = detailWidth

	panelInnerHeight := maxInt(6, m.bodyHeight-2)
	m.list.SetSize(maxInt(24, listWidth-4), panelInnerHeight)
	m.detail.Width = maxInt(24, detailWidth-4)
	m.detail.Height = panelInnerHeight
	m.refreshDetail(false)
}

func (m recipesTUIModel) headerView() string {
	focus := "list"
	if m.focus == tuiFocusDetail {
		focus = "detail"
	}

	top := fmt.Sprintf("dealchef tui  |  offers: %s", m.label)
	bottom := fmt.Sprintf(
		"recipes: %d visible / %d total  |  filters: %s  |  focus: %s",
		m.visibleRecipes, len(m.allMatches), m.activeFilterSummary(), focus,
	)

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(tuiHeaderStyle.Render(top) + "\n" + tuiMetaStyle.Render(bottom))
}

func (m recipesTUIModel) bodyView() string {
	listBorder := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("241")).
		Padding(0, 1)
	detailBorder := listBorder

	if m.focus == tuiFocusList {
		listBorder = listBorder.BorderForeground(lipgloss.Color("86"))
	} else {
		detailBorder = detailBorder.BorderForeground(lipgloss.Color("86"))
	}

	left := listBorder.Width(m.listPaneWidth).Height(m.bodyHeight).Render(m.list.View())
	right := detailBorder.Width(m.detailPaneWidth).Height(m.bodyHeight).Render(m.detail.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

func (m recipesTUIModel) footerView() string {
	base := "Tab switch pane • / fuzzy filter • s sort • t tag • z freezer • l limit • r reset • [/] section jump • q quit"
	if m.focus == tuiFocusDetail {
		base = "Detail: j/k or ↑/↓ scroll • u/d half-page • b/f page • esc list • ? help • q quit"
	}

	if !m.showHelp {
		return lipgloss.NewStyle().Padding(0, 1).Render(tuiHintStyle.Render(base))
	}

	lines := []string{
		"Key Help",
		"list pane: ↑/↓ or j/k move • / fuzzy filter • t tag • z freezer only • s sort • l limit",
		"sections: ] next • [ previous • 1..3 jump to a match tier",
		"global: tab switch pane • esc list • r reset inline options • ? toggle help • q quit • ctrl+c force quit",
	}
	return lipgloss.NewStyle().
		Padding(0, 1).
		Render(tuiHintStyle.Render(strings.Join(lines, "\n")))
}

func (m *recipesTUIModel) initializeInlineChoices() {
	m.sortChoices = []string{"", "savings", "cost"}
	m.tagChoices = buildTagChoices(m.allMatches, m.opts.Tag)
	m.limitChoices = buildLimitChoices(m.opts.Limit)
	m.syncChoiceIndexesFromOptions()
}

func (m *recipesTUIModel) syncChoiceIndexesFromOptions() {
	m.sortIndex = indexOfString(m.sortChoices, canonicalRecipeSort(m.opts.Sort))
	if m.sortIndex < 0 {
		m.sortIndex = 0
	}
	m.opts.Sort = m.sortChoices[m.sortIndex]

	m.tagIndex = indexOfStringFold(m.tagChoices, m.opts.Tag)
	if m.tagIndex < 0 {
		m.tagIndex = 0
		m.opts.Tag = ""
	} else {
		m.opts.Tag = m.tagChoices[m.tagIndex]
	}

	m.limitIndex = indexOfInt(m.limitChoices, m.opts.Limit)
	if m.limitIndex < 0 {
		m.limitIndex = 0
		m.opts.Limit = m.limitChoices[m.limitIndex]
	}
}

func (m *recipesTUIModel) cycleSortMode() {
	m.sortIndex = (m.sortIndex + 1) % len(m.sortChoices)
	m.opts.Sort = m.sortChoices[m.sortIndex]
	m.applyCurrentFilters(false)
}

func (m *recipesTUIModel) cycleTag() {
	m.tagIndex = (m.tagIndex + 1) % len(m.tagChoices)
	m.opts.Tag = m.tagChoices[m.tagIndex]
	m.applyCurrentFilters(false)
}

func (m *recipesTUIModel) cycleLimit() {
	m.limitIndex = (m.limitIndex + 1) % len(m.limitChoices)
	m.opts.Limit = m.limitChoices[m.limitIndex]
	m.applyCurrentFilters(false)
}

func (m recipesTUIModel) activeFilterSummary() string {
	parts := []string{}
	if m.opts.Tag != "" {
		parts = append(parts, "tag:"+m.opts.Tag)
	}
	if m.opts.Query != "" {
		parts = append(parts, "search:"+m.opts.Query)
	}
	if m.opts.MinBatchScore > 0 {
		parts = append(parts, fmt.Sprintf("batch>=%d", m.opts.MinBatchScore))
	}
	if m.opts.FreezerOnly {
		parts = append(parts, "freezer")
	}
	if m.opts.Sort != "" {
		parts = append(parts, "sort:"+m.opts.Sort)
	}
	if m.opts.Limit > 0 {
		parts = append(parts, fmt.Sprintf("limit:%d", m.opts.Limit))
	}
	if fuzzy := strings.TrimSpace(m.list.FilterValue()); fuzzy != "" {
		parts = append(parts, "fuzzy:"+fuzzy)
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func (m *recipesTUIModel) applyCurrentFilters(resetSelection bool) {
	currentID := m.selectedID
	filtered := m.opts.apply(m.allMatches)
	m.visibleRecipes = len(filtered)

	items, starts := buildGroupedListItems(filtered)
	m.groupStarts = starts

	m.list.Title = fmt.Sprintf("Recipes • %d visible", m.visibleRecipes)
	m.list.SetItems(items)

	target := -1
	if !resetSelection && currentID != "" {
		target = findItemIndexByID(items, currentID)
	}
	if target < 0 {
		target = firstRecipeIndexFrom(items, 0)
	}
	if target < 0 && len(items) > 0 {
		target = 0
	}
	if target >= 0 {
		m.list.Select(target)
	}

	m.refreshDetail(true)
}

func (m *recipesTUIModel) refreshDetail(resetScroll bool) {
	var content string
	nextID := ""

	if selected := m.list.SelectedItem(); selected != nil {
		switch item := selected.(type) {
		case tuiRecipeItem:
			content = renderRecipeDetailContent(item.match, m.detail.Width)
		case tuiGroupItem:
			content = m.renderGroupDetail(item)
		}
		nextID = stableIDForItem(selected)
	}
	if content == "" {
		content = "No recipes match the current inline filters.\n\nTry pressing r to reset filters."
	}

	if resetScroll || nextID != m.selectedID {
		m.detail.GotoTop()
	}
	m.selectedID = nextID
	m.detail.SetContent(content)
}

func (m recipesTUIModel) renderGroupDetail(group tuiGroupItem) string {
	lines := []string{
		tuiSectionStyle.Render(fmt.Sprintf("Section %d: %s", group.ordinal, group.name)),
		tuiMetaStyle.Render(fmt.Sprintf("%d recipes in this section", group.count)),
		"",
		tuiMetaStyle.Render("Jump keys:"),
		"- `]` next section, `[` previous section",
		"- `1..3` jump directly to section number",
	}

	preview := make([]string, 0, 5)
	for _, item := range m.list.Items() {
		r, ok := item.(tuiRecipeItem)
		if !ok || r.group != group.name {
			continue
		}
		preview = append(preview, r.Title())
		if len(preview) == 5 {
			break
		}
	}
	if len(preview) > 0 {
		lines = append(lines, "", tuiMetaStyle.Render("Preview:"))
		for _, title := range preview {
			lines = append(lines, "• "+title)
		}
	}
	return strings.Join(lines, "\n")
}

func (m *recipesTUIModel) jumpToSection(index int) {
	if index < 0 || index >= len(m.groupStarts) {
		return
	}
	target := firstRecipeIndexFrom(m.list.Items(), m.groupStarts[index])
	if target < 0 {
		target = m.groupStarts[index]
	}
	m.list.Select(target)
	m.refreshDetail(true)
}

func (m *recipesTUIModel) jumpSection(delta int) {
	if len(m.groupStarts) == 0 {
		return
	}

	cursor := m.list.GlobalIndex()
	current := 0
	for i, start := range m.groupStarts {
		if start > cursor {
			break
		}
		current = i
	}

	next := current + delta
	if next < 0 {
		next = len(m.groupStarts) - 1
	}
	if next >= len(m.groupStarts) {
		next = 0
	}
	m.jumpToSection(next)
}

// matchTier places a recipe in one of the list sections.
func matchTier(m match.RecipeMatch) string {
	switch {
	case m.EligibleCount > 0 && m.MatchedCount == m.EligibleCount:
		return tierFull
	case m.MatchedCount > 0:
		return tierPartial
	default:
		return tierNone
	}
}

// buildGroupedListItems sections matches by tier, keeping their order
// within a tier. Empty tiers are skipped.
func buildGroupedListItems(matches []match.RecipeMatch) (items []list.Item, starts []int) {
	if len(matches) == 0 {
		return nil, nil
	}

	groups := map[string][]match.RecipeMatch{}
	for _, m := range matches {
		tier := matchTier(m)
		groups[tier] = append(groups[tier], m)
	}

	items = make([]list.Item, 0, len(matches)+len(groups))
	starts = make([]int, 0, len(groups))
	ordinal := 0
	for _, tier := range tierOrder {
		members := groups[tier]
		if len(members) == 0 {
			continue
		}
		ordinal++
		starts = append(starts, len(items))
		items = append(items, tuiGroupItem{name: tier, count: len(members), ordinal: ordinal})
		for _, m := range members {
			items = append(items, buildTUIRecipeItem(m, tier))
		}
	}
	return items, starts
}

func buildTUIRecipeItem(m match.RecipeMatch, group string) tuiRecipeItem {
	descParts := []string{
		fmt.Sprintf("%d%% on offer", m.MatchPercentage),
		display.Euro(m.EstimatedCost),
	}
	if m.TotalSavings > 0 {
		descParts = append(descParts, "saves "+display.Euro(m.TotalSavings))
	}

	filterTokens := []string{m.Recipe.Name, m.Recipe.ID, strings.Join(m.Recipe.Tags, " "), group}
	for _, ing := range m.Recipe.Ingredients {
		filterTokens = append(filterTokens, ing.Name)
	}

	return tuiRecipeItem{
		match:       m,
		group:       group,
		description: strings.Join(descParts, "  •  "),
		filterValue: strings.ToLower(strings.Join(filterTokens, " ")),
	}
}

func renderRecipeDetailContent(m match.RecipeMatch, width int) string {
	maxWidth := maxInt(24, width)
	r := m.Recipe

	lines := []string{tuiRecipeStyle.Render(wrapText(r.Name, maxWidth))}

	meta := []string{fmt.Sprintf("%d servings", r.Servings)}
	if t := r.TotalTime(); t > 0 {
		meta = append(meta, fmt.Sprintf("%d min", t))
	}
	if r.FreezerFriendly {
		meta = append(meta, "freezer friendly")
	}
	if len(r.Tags) > 0 {
		meta = append(meta, "tags: "+strings.Join(r.Tags, ", "))
	}
	lines = append(lines, tuiMetaStyle.Render(wrapText(strings.Join(meta, "  |  "), maxWidth)))

	if desc := strings.TrimSpace(r.Description); desc != "" {
		lines = append(lines, "", wrapText(desc, maxWidth))
	}

	lines = append(lines,
		"",
		fmt.Sprintf("%s %s", tuiMetaStyle.Render("On offer:"),
			tuiValueStyle.Render(fmt.Sprintf("%d/%d (%d%%)", m.MatchedCount, m.EligibleCount, m.MatchPercentage))),
		fmt.Sprintf("%s %s (%s per serving)", tuiMetaStyle.Render("Estimated cost:"),
			tuiValueStyle.Render(display.Euro(m.EstimatedCost)), display.Euro(m.CostPerServing)),
		fmt.Sprintf("%s %s", tuiMetaStyle.Render("Savings:"), tuiValueStyle.Render(display.Euro(m.TotalSavings))),
		"",
		tuiSectionStyle.Render("Ingredients"),
	)

	for _, im := range m.Ingredients {
		ing := im.Ingredient
		line := fmt.Sprintf("• %s %s %s", formatQuantity(ing.Amount), ing.Unit, ing.Name)
		switch {
		case im.IsStaple:
			line += " " + tuiMutedStyle.Render("(pantry)")
		case im.BestOffer != nil:
			o := im.BestOffer
			line += " " + tuiOfferStyle.Render(fmt.Sprintf("%s %s -%d%%", o.Store.DisplayName(), display.Euro(o.OfferPrice), o.Discount.Percent()))
		}
		lines = append(lines, wrapText(line, maxWidth))
	}

	if len(r.Instructions) > 0 {
		lines = append(lines, "", tuiSectionStyle.Render("Instructions"))
		for i, step := range r.Instructions {
			lines = append(lines, wrapText(fmt.Sprintf("%d. %s", i+1, step), maxWidth))
		}
	}

	if len(r.VariationTips) > 0 {
		lines = append(lines, "", tuiSectionStyle.Render("Leftover ideas"))
		for _, tip := range r.VariationTips {
			lines = append(lines, wrapText(fmt.Sprintf("Day %d: %s", tip.Day, tip.Suggestion), maxWidth))
		}
	}

	return strings.Join(lines, "\n")
}

func formatQuantity(v float64) string {
	s := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
	if s == "" {
		return "0"
	}
	return s
}

func wrapText(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	if width < 12 {
		width = 12
	}

	line := words[0]
	lines := make([]string, 0, len(words)/6+1)
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func canonicalRecipeSort(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "savings", "besparing", "deals":
		return "savings"
	case "cost", "price", "prijs", "cheapest":
		return "cost"
	default:
		return ""
	}
}

// buildTagChoices lists recipe tags by frequency after the "" (all) choice,
// keeping current even when no recipe carries it.
func buildTagChoices(matches []match.RecipeMatch, current string) []string {
	values := []string{""}
	for _, t := range rank.Tags(recipesOf(matches)) {
		values = append(values, t.Tag)
	}
	if current != "" && indexOfStringFold(values, current) < 0 {
		values = append(values, strings.ToLower(current))
	}
	return values
}

func buildLimitChoices(current int) []int {
	values := []int{0, 5, 10, 25}
	if current > 0 && indexOfInt(values, current) < 0 {
		values = append(values, current)
		sort.Ints(values)
	}
	return values
}

func indexOfString(values []string, target string) int {
	for i, value := range values {
		if value == target {
			return i
		}
	}
	return -1
}

func indexOfStringFold(values []string, target string) int {
	for i, value := range values {
		if strings.EqualFold(value, target) {
			return i
		}
	}
	return -1
}

func indexOfInt(values []int, target int) int {
	for i, value := range values {
		if value == target {
			return i
		}
	}
	return -1
}

func findItemIndexByID(items []list.Item, stableID string) int {
	for i, item := range items {
		if stableIDForItem(item) == stableID {
			return i
		}
	}
	return -1
}

func firstRecipeIndexFrom(items []list.Item, start int) int {
	for i := start; i < len(items); i++ {
		if _, ok := items[i].(tuiRecipeItem); ok {
			return i
		}
	}
	return -1
}

func stableIDForItem(item list.Item) string {
	switch value := item.(type) {
	case tuiRecipeItem:
		return "recipe:" + value.match.Recipe.ID
	case tuiGroupItem:
		return "group:" + strings.ToLower(value.name)
	default:
		return ""
	}
}

func recipesOf(matches []match.RecipeMatch) []catalog.Recipe {
	out := make([]catalog.Recipe, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Recipe)
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
