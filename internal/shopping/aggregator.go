// Package shopping merges the ingredients of several recipes into one
// shopping list, split by the store carrying each item's offer.
package shopping

import (
	"fmt"
	"strings"

	"github.com/tayloree/dealchef/internal/catalog"
	"github.com/tayloree/dealchef/internal/match"
)

// Selection is one recipe to cook for a number of servings. Servings <= 0
// means the recipe's own base servings.
type Selection struct {
	Recipe   catalog.Recipe
	Servings int
}

// Item is one merged ingredient line.
type Item struct {
	Ingredient     catalog.Ingredient `json:"ingredient"`
	Recipe         string             `json:"recipe"`
	Recipes        []string           `json:"recipes"`
	Offer          *catalog.Offer     `json:"offer,omitempty"`
	EstimatedPrice float64            `json:"estimatedPrice"`
	IsOnOffer      bool               `json:"isOnOffer"`
}

// StoreGroup is the part of a list bought at one store.
type StoreGroup struct {
	Store    catalog.Store `json:"store"`
	Items    []Item        `json:"items"`
	Subtotal float64       `json:"subtotal"`
}

// List is a merged, priced shopping list.
type List struct {
	Items              []Item       `json:"items"`
	TotalEstimatedCost float64      `json:"totalEstimatedCost"`
	TotalSavings       float64      `json:"totalSavings"`
	Stores             []StoreGroup `json:"stores"`
}

// Unassigned returns the items without an offer.
func (l List) Unassigned() []Item {
	var out []Item
	for _, it := range l.Items {
		if it.Offer == nil {
			out = append(out, it)
		}
	}
	return out
}

// Policy decides how a merged item is priced.
type Policy string

const (
	// PerRecipe prices every recipe's contribution on its own and sums them.
	// A discount shared by two recipes is counted twice.
	PerRecipe Policy = "per-recipe"
	// SingleOffer prices each merged item once: the offer's sale price, or
	// one fallback price.
	SingleOffer Policy = "single-offer"
)

// ParsePolicy resolves a configuration value; "" selects PerRecipe.
func ParsePolicy(raw string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return PerRecipe, nil
	case PerRecipe, SingleOffer:
		return p, nil
	default:
		return "", fmt.Errorf("unknown shopping policy %q (use per-recipe or single-offer)", raw)
	}
}

// Aggregator builds shopping lists with a matching engine.
type Aggregator struct {
	engine *match.Engine
	policy Policy
}

// NewAggregator returns an aggregator using engine for matching, staple
// exclusion and fallback prices.
func NewAggregator(engine *match.Engine, policy Policy) *Aggregator {
	if engine == nil {
		engine = match.NewEngine()
	}
	if policy == "" {
		policy = PerRecipe
	}
	return &Aggregator{engine: engine, policy: policy}
}

// Policy returns the configured pricing policy.
func (a *Aggregator) Policy() Policy { return a.policy }

// Build merges the selected recipes' non-staple ingredients by normalised
// name, scales amounts to the requested servings, and prices the result.
func (a *Aggregator) Build(selections []Selection, offers []catalog.Offer) List {
	prepared := match.Prepare(offers)

	var items []Item
	index := make(map[string]int)
	for _, sel := range selections {
		scale := ScaleFactor(sel.Recipe.Servings, sel.Servings)
		for _, ing := range sel.Recipe.Ingredients {
			if a.engine.IsStaple(ing) {
				continue
			}
			m := a.engine.MatchIngredient(ing, prepared)
			scaled := ing.Amount * scale
			price := a.engine.IngredientPrice(m)

			key := match.Normalize(ing.Name)
			if i, ok := index[key]; ok {
				items[i].Ingredient.Amount += scaled
				if a.policy == PerRecipe {
					items[i].EstimatedPrice += price
				}
				items[i].Recipes = appendUnique(items[i].Recipes, sel.Recipe.Name)
				continue
			}

			merged := ing
			merged.Amount = scaled
			index[key] = len(items)
			items = append(items, Item{
				Ingredient:     merged,
				Recipe:         sel.Recipe.Name,
				Recipes:        []string{sel.Recipe.Name},
				Offer:          m.BestOffer,
				EstimatedPrice: price,
				IsOnOffer:      m.BestOffer != nil,
			})
		}
	}

	list := List{Items: items}
	if list.Items == nil {
		list.Items = []Item{}
	}

	var cost, savings float64
	for i := range list.Items {
		it := &list.Items[i]
		cost += it.EstimatedPrice
		if it.Offer != nil {
			savings += it.Offer.Savings()
		}
		it.EstimatedPrice = match.RoundMoney(it.EstimatedPrice)
	}
	list.TotalEstimatedCost = match.RoundMoney(cost)
	list.TotalSavings = match.RoundMoney(savings)
	list.Stores = partition(list.Items)
	return list
}

// ScaleFactor is requested/base servings. A non-positive request means the
// base servings; a non-positive base yields 0.
func ScaleFactor(base, requested int) float64 {
	if base <= 0 {
		return 0
	}
	if requested <= 0 {
		return 1
	}
	return float64(requested) / float64(base)
}

// partition groups items by offer store. Every known store gets a group,
// even when empty; other stores follow in first-seen order. Items without
// an offer appear in no group.
func partition(items []Item) []StoreGroup {
	groups := make([]StoreGroup, 0, len(catalog.KnownStores))
	pos := make(map[catalog.Store]int, len(catalog.KnownStores))
	for _, s := range catalog.KnownStores {
		pos[s] = len(groups)
		groups = append(groups, StoreGroup{Store: s, Items: []Item{}})
	}

	subtotals := make([]float64, len(groups))
	for _, it := range items {
		if it.Offer == nil {
			continue
		}
		i, ok := pos[it.Offer.Store]
		if !ok {
			i = len(groups)
			pos[it.Offer.Store] = i
			groups = append(groups, StoreGroup{Store: it.Offer.Store, Items: []Item{}})
			subtotals = append(subtotals, 0)
		}
		groups[i].Items = append(groups[i].Items, it)
		subtotals[i] += it.EstimatedPrice
	}
	for i := range groups {
		groups[i].Subtotal = match.RoundMoney(subtotals[i])
	}
	return groups
}

func appendUnique(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}
