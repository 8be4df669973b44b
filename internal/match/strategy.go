package match

import (
	"fmt"
	"strings"

	"github.com/tayloree/dealchef/internal/catalog"
)

// Strategy selects the single best offer among an ingredient's candidates.
type Strategy interface {
	Name() string
	Select(candidates []catalog.Offer) (catalog.Offer, bool)
}

// reduceStrategy keeps the first candidate unless a later one is strictly
// better, so ties resolve to input order.
type reduceStrategy struct {
	name   string
	better func(candidate, best catalog.Offer) bool
}

func (s reduceStrategy) Name() string { return s.name }

func (s reduceStrategy) Select(candidates []catalog.Offer) (catalog.Offer, bool) {
	if len(candidates) == 0 {
		return catalog.Offer{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if s.better(c, best) {
			best = c
		}
	}
	return best, true
}

// Built-in strategies.
var (
	// HighestDiscount favours the largest discount percentage. It optimises
	// for the most striking deal, not the lowest absolute price.
	HighestDiscount Strategy = reduceStrategy{
		name: "highest-discount",
		better: func(c, best catalog.Offer) bool {
			return c.Discount.Percent() > best.Discount.Percent()
		},
	}
	// LowestPrice favours the lowest sale price.
	LowestPrice Strategy = reduceStrategy{
		name: "lowest-price",
		better: func(c, best catalog.Offer) bool {
			return c.OfferPrice < best.OfferPrice
		},
	}
	// HighestSavings favours the largest absolute price reduction.
	HighestSavings Strategy = reduceStrategy{
		name: "highest-savings",
		better: func(c, best catalog.Offer) bool {
			return c.Savings() > best.Savings()
		},
	}
)

// Strategies lists the built-in strategies.
var Strategies = []Strategy{HighestDiscount, LowestPrice, HighestSavings}

// StrategyByName resolves a strategy name; "" selects HighestDiscount.
func StrategyByName(name string) (Strategy, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return HighestDiscount, nil
	}
	n = strings.ReplaceAll(n, "_", "-")
	for _, s := range Strategies {
		if s.Name() == n {
			return s, nil
		}
	}
	return nil, fmt.Errorf("unknown offer strategy %q (use highest-discount, lowest-price or highest-savings)", name)
}
