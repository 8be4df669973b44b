// Package match pairs recipe ingredients with discounted offers and derives
// per-recipe cost, savings and match percentage.
//
// Every function here is a pure computation over the slices it is given; an
// Engine holds only immutable configuration and may be shared between
// goroutines.
package match

import (
	"math"
	"sort"

	"github.com/tayloree/dealchef/internal/catalog"
)

// IngredientMatch pairs one ingredient with its candidate offers.
type IngredientMatch struct {
	Ingredient catalog.Ingredient `json:"ingredient"`
	Candidates []catalog.Offer    `json:"matchingOffers"`
	BestOffer  *catalog.Offer     `json:"bestOffer,omitempty"`
	Savings    float64            `json:"savings"`
	IsStaple   bool               `json:"isPantryStaple"`
}

// Matched reports whether a best offer was found.
func (m IngredientMatch) Matched() bool { return m.BestOffer != nil }

// RecipeMatch is a recipe evaluated against an offer snapshot.
type RecipeMatch struct {
	Recipe          catalog.Recipe    `json:"recipe"`
	Ingredients     []IngredientMatch `json:"ingredientMatches"`
	MatchedCount    int               `json:"totalMatchingIngredients"`
	EligibleCount   int               `json:"eligibleIngredients"`
	EstimatedCost   float64           `json:"estimatedCost"`
	TotalSavings    float64           `json:"estimatedSavings"`
	MatchPercentage int               `json:"matchScore"`
	CostPerServing  float64           `json:"estimatedCostPerServing"`
}

// Engine evaluates recipes against offers.
type Engine struct {
	matcher *Matcher
	staples *StapleClassifier
	pricer  Pricer
}

// Option configures an Engine.
type Option func(*Engine)

// WithSynonyms replaces the synonym table.
func WithSynonyms(t *SynonymTable) Option {
	return func(e *Engine) { e.matcher = NewMatcher(t, e.matcher.strategy) }
}

// WithStrategy replaces the best-offer strategy.
func WithStrategy(s Strategy) Option {
	return func(e *Engine) { e.matcher = NewMatcher(e.matcher.synonyms, s) }
}

// WithStaples replaces the staple classifier.
func WithStaples(c *StapleClassifier) Option {
	return func(e *Engine) {
		if c != nil {
			e.staples = c
		}
	}
}

// WithPricer replaces the fallback pricer.
func WithPricer(p Pricer) Option {
	return func(e *Engine) {
		if p != nil {
			e.pricer = p
		}
	}
}

// NewEngine builds an engine with the default synonym table, the
// highest-discount strategy, the default staples and flat fallback pricing.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		matcher: NewMatcher(nil, nil),
		staples: NewStapleClassifier(),
		pricer:  FlatPricer(DefaultFlatPrice),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Matcher returns the engine's offer matcher.
func (e *Engine) Matcher() *Matcher { return e.matcher }

// Staples returns the engine's staple classifier.
func (e *Engine) Staples() *StapleClassifier { return e.staples }

// Pricer returns the engine's fallback pricer.
func (e *Engine) Pricer() Pricer { return e.pricer }

// IsStaple reports whether the ingredient is excluded as a pantry staple.
func (e *Engine) IsStaple(ing catalog.Ingredient) bool {
	return e.staples.IsStaple(ing)
}

// MatchIngredient evaluates a single ingredient. Staples get a zero-impact
// record without searching.
func (e *Engine) MatchIngredient(ing catalog.Ingredient, offers PreparedOffers) IngredientMatch {
	if e.IsStaple(ing) {
		return IngredientMatch{Ingredient: ing, IsStaple: true}
	}
	m := IngredientMatch{Ingredient: ing}
	m.Candidates = e.matcher.CandidatesPrepared(ing, offers)
	if best, ok := e.matcher.Best(m.Candidates); ok {
		m.BestOffer = &best
		m.Savings = best.Savings()
	}
	return m
}

// IngredientPrice is what the ingredient contributes to a cost estimate.
func (e *Engine) IngredientPrice(m IngredientMatch) float64 {
	switch {
	case m.IsStaple:
		return 0
	case m.BestOffer != nil:
		return m.BestOffer.OfferPrice
	default:
		return e.pricer.FallbackPrice(m.Ingredient)
	}
}

// MatchRecipe evaluates one recipe against an offer snapshot.
func (e *Engine) MatchRecipe(recipe catalog.Recipe, offers []catalog.Offer) RecipeMatch {
	return e.MatchRecipePrepared(recipe, Prepare(offers))
}

// MatchRecipePrepared is MatchRecipe over a prepared snapshot.
func (e *Engine) MatchRecipePrepared(recipe catalog.Recipe, offers PreparedOffers) RecipeMatch {
	rm := RecipeMatch{
		Recipe:      recipe,
		Ingredients: make([]IngredientMatch, 0, len(recipe.Ingredients)),
	}

	var cost, savings float64
	for _, ing := range recipe.Ingredients {
		m := e.MatchIngredient(ing, offers)
		rm.Ingredients = append(rm.Ingredients, m)
		cost += e.IngredientPrice(m)
		if m.IsStaple {
			continue
		}
		rm.EligibleCount++
		if m.Matched() {
			rm.MatchedCount++
			savings += m.Savings
		}
	}

	rm.EstimatedCost = RoundMoney(cost)
	rm.TotalSavings = RoundMoney(savings)
	rm.MatchPercentage = Percentage(rm.MatchedCount, rm.EligibleCount)
	if recipe.Servings > 0 {
		rm.CostPerServing = RoundMoney(cost / float64(recipe.Servings))
	}
	return rm
}

// MatchAll evaluates every recipe against one prepared snapshot and returns
// them ordered by match percentage, then savings, both descending.
func (e *Engine) MatchAll(recipes []catalog.Recipe, offers []catalog.Offer) []RecipeMatch {
	prepared := Prepare(offers)
	out := make([]RecipeMatch, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, e.MatchRecipePrepared(r, prepared))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MatchPercentage != out[j].MatchPercentage {
			return out[i].MatchPercentage > out[j].MatchPercentage
		}
		return out[i].TotalSavings > out[j].TotalSavings
	})
	return out
}

// Percentage returns round(part/whole*100), or 0 when whole is not positive.
func Percentage(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Floor(float64(part)/float64(whole)*100 + 0.5))
}
