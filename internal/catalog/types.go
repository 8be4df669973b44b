package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	Name           string  `json:"name" yaml:"name"`
	Amount         float64 `json:"amount" yaml:"amount"`
	Unit           string  `json:"unit" yaml:"unit"`
	Category       string  `json:"category" yaml:"category"`
	IsPantryStaple bool    `json:"isPantryStaple,omitempty" yaml:"isPantryStaple,omitempty"`
}

// VariationTip suggests how to vary leftovers on a given day.
type VariationTip struct {
	Day              int      `json:"day" yaml:"day"`
	Suggestion       string   `json:"suggestion" yaml:"suggestion"`
	ExtraIngredients []string `json:"extraIngredients,omitempty" yaml:"extraIngredients,omitempty"`
}

// Recipe is a static catalog entry. Ingredient amounts are written for
// Servings portions.
type Recipe struct {
	ID                string         `json:"id" yaml:"id"`
	Name              string         `json:"name" yaml:"name"`
	Description       string         `json:"description" yaml:"description"`
	Servings          int            `json:"servings" yaml:"servings"`
	PrepTime          int            `json:"prepTime" yaml:"prepTime"`
	CookTime          int            `json:"cookTime" yaml:"cookTime"`
	BatchCookingScore int            `json:"batchCookingScore" yaml:"batchCookingScore"`
	FreezerFriendly   bool           `json:"freezerFriendly" yaml:"freezerFriendly"`
	FridgeLifeDays    int            `json:"fridgeLifeDays" yaml:"fridgeLifeDays"`
	FreezerLifeMonths int            `json:"freezerLifeMonths" yaml:"freezerLifeMonths"`
	Ingredients       []Ingredient   `json:"ingredients" yaml:"ingredients"`
	Instructions      []string       `json:"instructions" yaml:"instructions"`
	VariationTips     []VariationTip `json:"variationTips" yaml:"variationTips"`
	Tags              []string       `json:"tags" yaml:"tags"`
	ImageURL          string         `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
}

// Validate reports the first data-shape violation in the recipe.
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("recipe id is empty")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("recipe %s: name is empty", r.ID)
	}
	if r.Servings <= 0 {
		return fmt.Errorf("recipe %s: servings must be positive, got %d", r.ID, r.Servings)
	}
	if r.PrepTime < 0 || r.CookTime < 0 {
		return fmt.Errorf("recipe %s: negative prep or cook time", r.ID)
	}
	for i, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return fmt.Errorf("recipe %s: ingredient %d has no name", r.ID, i)
		}
		if ing.Amount <= 0 {
			return fmt.Errorf("recipe %s: ingredient %q has non-positive amount", r.ID, ing.Name)
		}
	}
	return nil
}

// TotalTime is prep plus cook time in minutes.
func (r Recipe) TotalTime() int {
	return r.PrepTime + r.CookTime
}

// HasTag reports whether the recipe carries tag, case-insensitively.
func (r Recipe) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Offer is one retailer's time-boxed discount on a product.
type Offer struct {
	ID            string   `json:"id" yaml:"id"`
	Store         Store    `json:"store" yaml:"store"`
	ProductName   string   `json:"productName" yaml:"productName"`
	OriginalPrice float64  `json:"originalPrice" yaml:"originalPrice"`
	OfferPrice    float64  `json:"offerPrice" yaml:"offerPrice"`
	Discount      Discount `json:"discountPercentage" yaml:"discountPercentage"`
	Category      string   `json:"category" yaml:"category"`
	Unit          string   `json:"unit" yaml:"unit"`
	ValidFrom     Date     `json:"validFrom" yaml:"validFrom"`
	ValidUntil    Date     `json:"validUntil" yaml:"validUntil"`
	ImageURL      string   `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	Description   string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// Savings is the absolute price reduction, never negative.
func (o Offer) Savings() float64 {
	if s := o.OriginalPrice - o.OfferPrice; s > 0 {
		return s
	}
	return 0
}

// ActiveOn reports whether day falls inside the inclusive validity window.
// A zero bound is treated as open.
func (o Offer) ActiveOn(day Date) bool {
	if !o.ValidFrom.IsZero() && day.Before(o.ValidFrom) {
		return false
	}
	if !o.ValidUntil.IsZero() && o.ValidUntil.Before(day) {
		return false
	}
	return true
}

// ErrRecipeNotFound is returned by recipe sources for unknown identifiers.
var ErrRecipeNotFound = errors.New("recipe not found")
