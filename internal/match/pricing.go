package match

import (
	"fmt"
	"math"
	"strings"

	"github.com/tayloree/dealchef/internal/catalog"
)

// Pricer estimates what an ingredient costs when no offer covers it.
type Pricer interface {
	FallbackPrice(ing catalog.Ingredient) float64
}

// DefaultFlatPrice is the flat per-ingredient estimate.
const DefaultFlatPrice = 2.50

// FlatPricer charges the same amount for every unmatched ingredient.
type FlatPricer float64

// FallbackPrice returns the flat amount.
func (p FlatPricer) FallbackPrice(catalog.Ingredient) float64 { return float64(p) }

// DefaultCategoryPrices are average shelf prices per ingredient category.
var DefaultCategoryPrices = map[string]float64{
	"vlees":       8.00,
	"vis":         6.00,
	"zuivel":      2.50,
	"groenten":    1.50,
	"fruit":       2.00,
	"brood":       2.50,
	"pasta-rijst": 1.50,
	"conserven":   1.20,
	"diepvries":   3.00,
	"sauzen":      2.00,
	"kruiden":     1.50,
	"overig":      2.00,
}

// DefaultCategoryFallback is charged for categories missing from the table.
const DefaultCategoryFallback = 2.00

// CategoryPricer looks the ingredient's category up in a price table.
type CategoryPricer struct {
	prices   map[string]float64
	fallback float64
}

// NewCategoryPricer builds a pricer over prices merged onto the defaults.
func NewCategoryPricer(prices map[string]float64, fallback float64) *CategoryPricer {
	merged := make(map[string]float64, len(DefaultCategoryPrices)+len(prices))
	for k, v := range DefaultCategoryPrices {
		merged[k] = v
	}
	for k, v := range prices {
		merged[strings.ToLower(strings.TrimSpace(k))] = v
	}
	if fallback <= 0 {
		fallback = DefaultCategoryFallback
	}
	return &CategoryPricer{prices: merged, fallback: fallback}
}

// FallbackPrice returns the category average.
func (p *CategoryPricer) FallbackPrice(ing catalog.Ingredient) float64 {
	if price, ok := p.prices[strings.ToLower(strings.TrimSpace(ing.Category))]; ok {
		return price
	}
	return p.fallback
}

// Pricing modes accepted by PricerByMode.
const (
	PricingFlat     = "flat"
	PricingCategory = "category"
)

// PricerByMode builds the pricer for a configuration mode.
func PricerByMode(mode string, flat float64, categories map[string]float64) (Pricer, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", PricingFlat:
		if flat <= 0 {
			flat = DefaultFlatPrice
		}
		return FlatPricer(flat), nil
	case PricingCategory:
		return NewCategoryPricer(categories, 0), nil
	default:
		return nil, fmt.Errorf("unknown pricing mode %q (use flat or category)", mode)
	}
}

// RoundMoney rounds half-up to whole cents.
func RoundMoney(v float64) float64 {
	// The epsilon absorbs binary representation error such as 2.675*100.
	return math.Floor(v*100+0.5+1e-9) / 100
}
