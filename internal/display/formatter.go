package display

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tayloree/dealchef/internal/catalog"
	"github.com/tayloree/dealchef/internal/filter"
	"github.com/tayloree/dealchef/internal/match"
	"github.com/tayloree/dealchef/internal/rank"
	"github.com/tayloree/dealchef/internal/shopping"
)

// Styles for terminal output.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	stapleTag    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")) // magenta
	priceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))            // green
	dealStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))            // yellow
	dimStyle     = lipgloss.NewStyle().Faint(true)
	cyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// RecipeSummaryJSON is the JSON output shape for a recipe in a ranking.
type RecipeSummaryJSON struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Servings          int      `json:"servings"`
	TotalTime         int      `json:"totalTime"`
	Tags              []string `json:"tags"`
	MatchedCount      int      `json:"matchedIngredients"`
	EligibleCount     int      `json:"eligibleIngredients"`
	MatchPercentage   int      `json:"matchScore"`
	EstimatedCost     float64  `json:"estimatedCost"`
	CostPerServing    float64  `json:"estimatedCostPerServing"`
	EstimatedSavings  float64  `json:"estimatedSavings"`
	BatchCookingScore int      `json:"batchCookingScore"`
	FreezerFriendly   bool     `json:"freezerFriendly"`
}

// OfferJSON is the JSON output shape for an offer.
type OfferJSON struct {
	ID            string  `json:"id"`
	Store         string  `json:"store"`
	StoreName     string  `json:"storeName"`
	ProductName   string  `json:"productName"`
	Description   string  `json:"description,omitempty"`
	Category      string  `json:"category"`
	OriginalPrice float64 `json:"originalPrice"`
	OfferPrice    float64 `json:"offerPrice"`
	Discount      int     `json:"discountPercentage"`
	Savings       float64 `json:"savings"`
	Unit          string  `json:"unit,omitempty"`
	ValidFrom     string  `json:"validFrom,omitempty"`
	ValidUntil    string  `json:"validUntil,omitempty"`
}

// StoreJSON is the JSON output shape for a store in the offer catalog.
type StoreJSON struct {
	Slug   string `json:"slug"`
	Name   string `json:"name"`
	Offers int    `json:"offers"`
	Known  bool   `json:"known"`
}

// Euro formats an amount the Dutch way, e.g. €4,49.
func Euro(v float64) string {
	return "€" + strings.Replace(strconv.FormatFloat(match.RoundMoney(v), 'f', 2, 64), ".", ",", 1)
}

// PrintRecipeMatches renders a ranked list of recipes.
func PrintRecipeMatches(w io.Writer, title string, matches []match.RecipeMatch) {
	fmt.Fprintf(w, "\n%s — %s\n\n",
		headerStyle.Render(title),
		cyanStyle.Render(fmt.Sprintf("%d recipes", len(matches))),
	)
	if len(matches) == 0 {
		fmt.Fprintf(w, "  %s\n\n", dimStyle.Render("Nothing to show."))
		return
	}
	for i, m := range matches {
		printRecipeLine(w, i+1, m)
		fmt.Fprintln(w)
	}
}

// PrintRecipeMatchesJSON renders a ranking as JSON.
func PrintRecipeMatchesJSON(w io.Writer, matches []match.RecipeMatch) error {
	out := make([]RecipeSummaryJSON, 0, len(matches))
	for _, m := range matches {
		out = append(out, ToRecipeSummary(m))
	}
	return json.NewEncoder(w).Encode(out)
}

// ToRecipeSummary flattens a match into its list representation.
func ToRecipeSummary(m match.RecipeMatch) RecipeSummaryJSON {
	tags := m.Recipe.Tags
	if tags == nil {
		tags = []string{}
	}
	return RecipeSummaryJSON{
		ID:                m.Recipe.ID,
		Name:              m.Recipe.Name,
		Servings:          m.Recipe.Servings,
		TotalTime:         m.Recipe.TotalTime(),
		Tags:              tags,
		MatchedCount:      m.MatchedCount,
		EligibleCount:     m.EligibleCount,
		MatchPercentage:   m.MatchPercentage,
		EstimatedCost:     m.EstimatedCost,
		CostPerServing:    m.CostPerServing,
		EstimatedSavings:  m.TotalSavings,
		BatchCookingScore: m.Recipe.BatchCookingScore,
		FreezerFriendly:   m.Recipe.FreezerFriendly,
	}
}

// PrintRecipeDetail renders one recipe with its ingredient matches.
func PrintRecipeDetail(w io.Writer, m match.RecipeMatch) {
	r := m.Recipe
	fmt.Fprintf(w, "\n%s %s\n", headerStyle.Render(r.Name), dimStyle.Render("("+r.ID+")"))
	if r.Description != "" {
		fmt.Fprintf(w, "  %s\n", dimStyle.Render(wordWrap(r.Description, 72, "  ")))
	}

	meta := []string{fmt.Sprintf("%d servings", r.Servings)}
	if t := r.TotalTime(); t > 0 {
		meta = append(meta, fmt.Sprintf("%d min", t))
	}
	if r.BatchCookingScore > 0 {
		meta = append(meta, fmt.Sprintf("batch %d/5", r.BatchCookingScore))
	}
	if r.FreezerFriendly {
		meta = append(meta, fmt.Sprintf("freezer %d months", r.FreezerLifeMonths))
	}
	if r.FridgeLifeDays > 0 {
		meta = append(meta, fmt.Sprintf("fridge %d days", r.FridgeLifeDays))
	}
	fmt.Fprintf(w, "  %s\n", cyanStyle.Render(strings.Join(meta, " | ")))
	fmt.Fprintf(w, "  %s\n\n", matchSummary(m))

	fmt.Fprintf(w, "%s\n", titleStyle.Render("Ingredients"))
	for _, im := range m.Ingredients {
		printIngredientLine(w, im)
	}

	if len(r.Instructions) > 0 {
		fmt.Fprintf(w, "\n%s\n", titleStyle.Render("Instructions"))
		for i, step := range r.Instructions {
			fmt.Fprintf(w, "  %d. %s\n", i+1, wordWrap(step, 70, "     "))
		}
	}

	if len(r.VariationTips) > 0 {
		fmt.Fprintf(w, "\n%s\n", titleStyle.Render("Leftover variations"))
		for _, tip := range r.VariationTips {
			line := fmt.Sprintf("Day %d: %s", tip.Day, tip.Suggestion)
			if len(tip.ExtraIngredients) > 0 {
				line += dimStyle.Render(" (+ " + strings.Join(tip.ExtraIngredients, ", ") + ")")
			}
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
	if len(r.Tags) > 0 {
		fmt.Fprintf(w, "\n  %s\n", dimStyle.Render("#"+strings.Join(r.Tags, " #")))
	}
	fmt.Fprintln(w)
}

// PrintRecipeDetailJSON renders one recipe match as JSON.
func PrintRecipeDetailJSON(w io.Writer, m match.RecipeMatch) error {
	return json.NewEncoder(w).Encode(m)
}

// PrintShoppingList renders a list grouped by store, followed by the items
// that have no offer.
func PrintShoppingList(w io.Writer, list shopping.List) {
	fmt.Fprintf(w, "\n%s — %s\n",
		headerStyle.Render("Shopping list"),
		cyanStyle.Render(fmt.Sprintf("%d items", len(list.Items))),
	)

	for _, g := range list.Stores {
		if len(g.Items) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s %s\n", titleStyle.Render(g.Store.DisplayName()), dimStyle.Render(Euro(g.Subtotal)))
		for _, it := range g.Items {
			printShoppingItem(w, it)
		}
	}

	if rest := list.Unassigned(); len(rest) > 0 {
		fmt.Fprintf(w, "\n%s\n", titleStyle.Render("Not on offer"))
		for _, it := range rest {
			printShoppingItem(w, it)
		}
	}

	fmt.Fprintf(w, "\n  Estimated total %s", priceStyle.Render(Euro(list.TotalEstimatedCost)))
	if list.TotalSavings > 0 {
		fmt.Fprintf(w, "  %s", dealStyle.Render("saves "+Euro(list.TotalSavings)))
	}
	fmt.Fprint(w, "\n\n")
}

// PrintShoppingListJSON renders a shopping list as JSON.
func PrintShoppingListJSON(w io.Writer, list shopping.List) error {
	return json.NewEncoder(w).Encode(list)
}

// PlainShoppingList renders the list as unstyled text, one item per line,
// grouped by store.
func PlainShoppingList(list shopping.List) string {
	var b strings.Builder
	for _, g := range list.Stores {
		if len(g.Items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s\n", g.Store.DisplayName())
		for _, it := range g.Items {
			fmt.Fprintf(&b, "- %s\n", itemLabel(it))
		}
	}
	if rest := list.Unassigned(); len(rest) > 0 {
		b.WriteString("Overig\n")
		for _, it := range rest {
			fmt.Fprintf(&b, "- %s\n", itemLabel(it))
		}
	}
	fmt.Fprintf(&b, "Totaal %s", Euro(list.TotalEstimatedCost))
	return b.String()
}

// PrintOffers renders offers one per block.
func PrintOffers(w io.Writer, offers []catalog.Offer) {
	fmt.Fprintf(w, "\n%s — %s\n\n",
		headerStyle.Render("Current offers"),
		cyanStyle.Render(fmt.Sprintf("%d offers", len(offers))),
	)
	for _, o := range offers {
		printOffer(w, o)
		fmt.Fprintln(w)
	}
}

// PrintOffersJSON renders offers as JSON.
func PrintOffersJSON(w io.Writer, offers []catalog.Offer) error {
	out := make([]OfferJSON, 0, len(offers))
	for _, o := range offers {
		out = append(out, ToOfferJSON(o))
	}
	return json.NewEncoder(w).Encode(out)
}

// ToOfferJSON flattens an offer with cleaned text fields.
func ToOfferJSON(o catalog.Offer) OfferJSON {
	return OfferJSON{
		ID:            o.ID,
		Store:         string(o.Store),
		StoreName:     o.Store.DisplayName(),
		ProductName:   filter.CleanText(o.ProductName),
		Description:   filter.CleanText(o.Description),
		Category:      o.Category,
		OriginalPrice: o.OriginalPrice,
		OfferPrice:    o.OfferPrice,
		Discount:      o.Discount.Percent(),
		Savings:       match.RoundMoney(o.Savings()),
		Unit:          o.Unit,
		ValidFrom:     o.ValidFrom.String(),
		ValidUntil:    o.ValidUntil.String(),
	}
}

// PrintOfferStats renders offer counts by store and category.
func PrintOfferStats(w io.Writer, stats catalog.Stats) {
	fmt.Fprintf(w, "\n%s — %s\n\n",
		headerStyle.Render("Offer statistics"),
		cyanStyle.Render(fmt.Sprintf("%d offers", stats.TotalOffers)),
	)
	fmt.Fprintf(w, "%s\n", titleStyle.Render("By store"))
	for _, c := range sortedCounts(stats.ByStore) {
		fmt.Fprintf(w, "  %s: %d\n", cyanStyle.Render(catalog.Store(c.name).DisplayName()), c.count)
	}
	fmt.Fprintf(w, "\n%s\n", titleStyle.Render("By category"))
	for _, c := range sortedCounts(stats.ByCategory) {
		fmt.Fprintf(w, "  %s: %d\n", cyanStyle.Render(c.name), c.count)
	}
	fmt.Fprintln(w)
}

// PrintOfferStatsJSON renders offer statistics as JSON.
func PrintOfferStatsJSON(w io.Writer, stats catalog.Stats) error {
	return json.NewEncoder(w).Encode(stats)
}

// PrintStores renders the stores present in the offer catalog.
func PrintStores(w io.Writer, stores []StoreJSON) {
	fmt.Fprintf(w, "\n%s\n\n", titleStyle.Render("Stores with offers this week:"))
	for _, s := range stores {
		name := titleStyle.Render(s.Name)
		if !s.Known {
			name += " " + dimStyle.Render("(unlisted)")
		}
		fmt.Fprintf(w, "  %s  %s  %s\n", cyanStyle.Render(s.Slug), name, dimStyle.Render(fmt.Sprintf("%d offers", s.Offers)))
	}
	fmt.Fprintln(w)
}

// PrintStoresJSON renders stores as JSON.
func PrintStoresJSON(w io.Writer, stores []StoreJSON) error {
	if stores == nil {
		stores = []StoreJSON{}
	}
	return json.NewEncoder(w).Encode(stores)
}

// PrintCategories renders offer categories and their counts.
func PrintCategories(w io.Writer, cats map[string]int) {
	fmt.Fprintf(w, "\n%s\n\n", titleStyle.Render("Offer categories this week:"))
	for _, c := range sortedCounts(cats) {
		fmt.Fprintf(w, "  %s: %d offers\n", cyanStyle.Render(c.name), c.count)
	}
	fmt.Fprintln(w)
}

// PrintCategoriesJSON renders categories as JSON.
func PrintCategoriesJSON(w io.Writer, cats map[string]int) error {
	return json.NewEncoder(w).Encode(cats)
}

// PrintTags renders recipe tags with their counts.
func PrintTags(w io.Writer, tags []rank.TagCount) {
	fmt.Fprintf(w, "\n%s\n\n", titleStyle.Render("Recipe tags:"))
	for _, t := range tags {
		fmt.Fprintf(w, "  %s: %d\n", cyanStyle.Render(t.Tag), t.Count)
	}
	fmt.Fprintln(w)
}

// PrintTagsJSON renders tags as JSON.
func PrintTagsJSON(w io.Writer, tags []rank.TagCount) error {
	if tags == nil {
		tags = []rank.TagCount{}
	}
	return json.NewEncoder(w).Encode(tags)
}

// PrintError prints a styled error message.
func PrintError(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render(msg))
}

// PrintWarning prints a styled warning message.
func PrintWarning(w io.Writer, msg string) {
	fmt.Fprintln(w, warningStyle.Render(msg))
}

func printRecipeLine(w io.Writer, pos int, m match.RecipeMatch) {
	fmt.Fprintf(w, "  %s %s %s\n",
		dimStyle.Render(fmt.Sprintf("%2d.", pos)),
		titleStyle.Render(m.Recipe.Name),
		dimStyle.Render("("+m.Recipe.ID+")"),
	)
	fmt.Fprintf(w, "      %s\n", matchSummary(m))
	if len(m.Recipe.Tags) > 0 {
		fmt.Fprintf(w, "      %s\n", dimStyle.Render(strings.Join(m.Recipe.Tags, ", ")))
	}
}

func matchSummary(m match.RecipeMatch) string {
	parts := []string{
		cyanStyle.Render(fmt.Sprintf("%d/%d on offer (%d%%)", m.MatchedCount, m.EligibleCount, m.MatchPercentage)),
		priceStyle.Render(fmt.Sprintf("≈ %s", Euro(m.EstimatedCost))),
		fmt.Sprintf("%s p.p.", Euro(m.CostPerServing)),
	}
	if m.TotalSavings > 0 {
		parts = append(parts, dealStyle.Render("saves "+Euro(m.TotalSavings)))
	}
	return strings.Join(parts, " | ")
}

func printIngredientLine(w io.Writer, im match.IngredientMatch) {
	ing := im.Ingredient
	label := fmt.Sprintf("%s %s", formatAmount(ing.Amount, ing.Unit), ing.Name)

	switch {
	case im.IsStaple:
		fmt.Fprintf(w, "  %s %s\n", dimStyle.Render(label), stapleTag.Render("pantry"))
	case im.BestOffer != nil:
		o := im.BestOffer
		fmt.Fprintf(w, "  %s\n      %s %s %s %s\n",
			label,
			cyanStyle.Render(o.Store.DisplayName()),
			filter.CleanText(o.ProductName),
			priceStyle.Render(Euro(o.OfferPrice)),
			dealStyle.Render(fmt.Sprintf("-%d%%", o.Discount.Percent())),
		)
		if n := len(im.Candidates) - 1; n > 0 {
			fmt.Fprintf(w, "      %s\n", dimStyle.Render(fmt.Sprintf("%d other offers", n)))
		}
	default:
		fmt.Fprintf(w, "  %s %s\n", label, dimStyle.Render("no offer"))
	}
}

func printShoppingItem(w io.Writer, it shopping.Item) {
	line := "  " + itemLabel(it) + "  " + priceStyle.Render(Euro(it.EstimatedPrice))
	if it.Offer != nil {
		line += "  " + dimStyle.Render(filter.CleanText(it.Offer.ProductName))
	}
	if len(it.Recipes) > 1 {
		line += "  " + dimStyle.Render("("+strings.Join(it.Recipes, ", ")+")")
	}
	fmt.Fprintln(w, line)
}

func itemLabel(it shopping.Item) string {
	return fmt.Sprintf("%s %s", formatAmount(it.Ingredient.Amount, it.Ingredient.Unit), it.Ingredient.Name)
}

func printOffer(w io.Writer, o catalog.Offer) {
	name := filter.CleanText(o.ProductName)
	if name == "" {
		name = "Unknown"
	}
	fmt.Fprintf(w, "  %s %s\n", cyanStyle.Render(o.Store.DisplayName()), titleStyle.Render(name))

	var parts []string
	if o.OriginalPrice > o.OfferPrice {
		parts = append(parts, dimStyle.Render(Euro(o.OriginalPrice))+" → "+priceStyle.Render(Euro(o.OfferPrice)))
	} else {
		parts = append(parts, priceStyle.Render(Euro(o.OfferPrice)))
	}
	if d := o.Discount.Percent(); d > 0 {
		parts = append(parts, dealStyle.Render(fmt.Sprintf("-%d%%", d)))
	}
	fmt.Fprintf(w, "    %s\n", strings.Join(parts, " | "))

	if desc := filter.CleanText(o.Description); desc != "" {
		fmt.Fprintf(w, "    %s\n", dimStyle.Render(wordWrap(desc, 72, "    ")))
	}

	var meta []string
	if !o.ValidUntil.IsZero() {
		meta = append(meta, "until "+o.ValidUntil.String())
	}
	if o.Category != "" {
		meta = append(meta, o.Category)
	}
	if len(meta) > 0 {
		fmt.Fprintf(w, "    %s\n", dimStyle.Render(strings.Join(meta, " | ")))
	}
}

func formatAmount(amount float64, unit string) string {
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if unit == "" {
		return s
	}
	return s + " " + unit
}

type count struct {
	name  string
	count int
}

func sortedCounts(m map[string]int) []count {
	out := make([]count, 0, len(m))
	for k, v := range m {
		out = append(out, count{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}

func wordWrap(text string, width int, indent string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n"+indent)
}
