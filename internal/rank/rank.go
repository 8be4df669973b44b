package rank

import (
	"sort"
	"strings"

	"github.com/tayloree/dealchef/internal/catalog"
	"github.com/tayloree/dealchef/internal/match"
)

// Default result sizes.
const (
	DefaultTopLimit      = 10
	DefaultCheapestLimit = 10
	DefaultDealsLimit    = 5
	DefaultBatchMinScore = 4
)

// TopMatches keeps recipes with at least one matched ingredient, ordered by
// matched count then savings, both descending.
func TopMatches(matches []match.RecipeMatch, limit int) []match.RecipeMatch {
	result := where(matches, func(m match.RecipeMatch) bool { return m.MatchedCount > 0 })
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].MatchedCount != result[j].MatchedCount {
			return result[i].MatchedCount > result[j].MatchedCount
		}
		return result[i].TotalSavings > result[j].TotalSavings
	})
	return take(result, limit, DefaultTopLimit)
}

// Cheapest orders every recipe by estimated cost per serving, ascending.
func Cheapest(matches []match.RecipeMatch, limit int) []match.RecipeMatch {
	result := append([]match.RecipeMatch(nil), matches...)
	sort.SliceStable(result, func(i, j int) bool {
		return CostPerServing(result[i]) < CostPerServing(result[j])
	})
	return take(result, limit, DefaultCheapestLimit)
}

// BestDeals keeps recipes with positive savings, largest savings first.
func BestDeals(matches []match.RecipeMatch, limit int) []match.RecipeMatch {
	result := where(matches, func(m match.RecipeMatch) bool { return m.TotalSavings > 0 })
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalSavings > result[j].TotalSavings
	})
	return take(result, limit, DefaultDealsLimit)
}

// ByMatchPercentage orders recipes by match percentage then savings.
func ByMatchPercentage(matches []match.RecipeMatch) []match.RecipeMatch {
	result := append([]match.RecipeMatch(nil), matches...)
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].MatchPercentage != result[j].MatchPercentage {
			return result[i].MatchPercentage > result[j].MatchPercentage
		}
		return result[i].TotalSavings > result[j].TotalSavings
	})
	return result
}

// CostPerServing divides the estimated cost by the base servings, or
// returns 0 when servings is not positive.
func CostPerServing(m match.RecipeMatch) float64 {
	if m.Recipe.Servings <= 0 {
		return 0
	}
	return m.EstimatedCost / float64(m.Recipe.Servings)
}

// Filter narrows recipes before matching. Zero values disable a criterion.
type Filter struct {
	Tag           string
	Query         string
	MinBatchScore int
	FreezerOnly   bool
}

// Apply keeps the recipes that satisfy every criterion in f.
func (f Filter) Apply(recipes []catalog.Recipe) []catalog.Recipe {
	result := recipes

	if f.Tag != "" {
		result = whereRecipe(result, func(r catalog.Recipe) bool { return r.HasTag(f.Tag) })
	}
	if f.MinBatchScore > 0 {
		result = whereRecipe(result, func(r catalog.Recipe) bool { return r.BatchCookingScore >= f.MinBatchScore })
	}
	if f.FreezerOnly {
		result = whereRecipe(result, func(r catalog.Recipe) bool { return r.FreezerFriendly })
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		needle := match.Normalize(q)
		result = whereRecipe(result, func(r catalog.Recipe) bool { return recipeMentions(r, needle) })
	}
	return result
}

func recipeMentions(r catalog.Recipe, needle string) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(match.Normalize(r.Name), needle) ||
		strings.Contains(match.Normalize(r.Description), needle) {
		return true
	}
	for _, t := range r.Tags {
		if strings.Contains(match.Normalize(t), needle) {
			return true
		}
	}
	for _, ing := range r.Ingredients {
		if strings.Contains(match.Normalize(ing.Name), needle) {
			return true
		}
	}
	return false
}

// TagCount is one tag and how many recipes carry it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Tags counts recipe tags case-insensitively, most used first, then
// alphabetically.
func Tags(recipes []catalog.Recipe) []TagCount {
	counts := make(map[string]int)
	for _, r := range recipes {
		seen := make(map[string]bool, len(r.Tags))
		for _, t := range r.Tags {
			key := strings.ToLower(strings.TrimSpace(t))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			counts[key]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

func where(items []match.RecipeMatch, fn func(match.RecipeMatch) bool) []match.RecipeMatch {
	var result []match.RecipeMatch
	for _, item := range items {
		if fn(item) {
			result = append(result, item)
		}
	}
	return result
}

func whereRecipe(items []catalog.Recipe, fn func(catalog.Recipe) bool) []catalog.Recipe {
	var result []catalog.Recipe
	for _, item := range items {
		if fn(item) {
			result = append(result, item)
		}
	}
	return result
}

func take(items []match.RecipeMatch, limit, fallback int) []match.RecipeMatch {
	if limit <= 0 {
		limit = fallback
	}
	if limit < len(items) {
		return items[:limit]
	}
	return items
}
