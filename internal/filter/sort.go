package filter

import (
	"strings"

	"github.com/tayloree/dealchef/internal/catalog"
)

// Sort modes accepted by Options.Sort.
const (
	SortRelevance = "relevance"
	SortDiscount  = "discount"
	SortPrice     = "price"
	SortSavings   = "savings"
	SortEnding    = "ending"
)

// DealScore estimates relative offer value for ranking from the discount
// percentage and the absolute saving.
func DealScore(o catalog.Offer) float64 {
	score := float64(o.Discount.Percent())/10 + o.Savings()
	if strings.Contains(strings.ToLower(o.Description), "1+1") {
		score += 5
	}
	if score == 0 {
		return 0.01
	}
	return score
}

// NormalizeSortMode maps user input onto a sort mode. "" and unknown values
// keep catalog order.
func NormalizeSortMode(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "relevance", "score":
		return SortRelevance
	case "discount", "korting", "percent":
		return SortDiscount
	case "price", "prijs", "cheapest":
		return SortPrice
	case "savings", "besparing":
		return SortSavings
	case "ending", "end", "expiry", "expiration":
		return SortEnding
	default:
		return ""
	}
}

// ValidSortMode reports whether raw is empty or names a sort mode.
func ValidSortMode(raw string) bool {
	return strings.TrimSpace(raw) == "" || NormalizeSortMode(raw) != ""
}
