// Package filter narrows and orders an offer catalog for browsing.
package filter

import (
	"html"
	"sort"
	"strings"

	"github.com/tayloree/dealchef/internal/catalog"
)

// Options holds all filter criteria.
type Options struct {
	Store    string
	Category string
	Query    string
	Sort     string
	Limit    int
}

// Apply filters offers according to the given options. The input slice is
// never reordered.
func Apply(offers []catalog.Offer, opts Options) []catalog.Offer {
	result := offers

	if opts.Store != "" {
		store := catalog.ParseStore(opts.Store)
		result = where(result, func(o catalog.Offer) bool {
			return catalog.ParseStore(string(o.Store)) == store
		})
	}

	if opts.Category != "" {
		m := newCategoryMatcher(opts.Category)
		result = where(result, func(o catalog.Offer) bool {
			return m.matches(o.Category)
		})
	}

	if opts.Query != "" {
		q := strings.ToLower(strings.TrimSpace(opts.Query))
		result = where(result, func(o catalog.Offer) bool {
			name := strings.ToLower(CleanText(o.ProductName))
			desc := strings.ToLower(CleanText(o.Description))
			return strings.Contains(name, q) || strings.Contains(desc, q)
		})
	}

	if mode := NormalizeSortMode(opts.Sort); mode != "" {
		result = append([]catalog.Offer(nil), result...)
		sortOffers(result, mode)
	}

	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}

	return result
}

// Categories returns a map of category name to count across all offers.
func Categories(offers []catalog.Offer) map[string]int {
	cats := make(map[string]int)
	for _, o := range offers {
		if o.Category != "" {
			cats[o.Category]++
		}
	}
	return cats
}

// CleanText unescapes HTML entities and normalizes whitespace. Scraped
// product names often carry both.
func CleanText(s string) string {
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

func where(items []catalog.Offer, fn func(catalog.Offer) bool) []catalog.Offer {
	var result []catalog.Offer
	for _, item := range items {
		if fn(item) {
			result = append(result, item)
		}
	}
	return result
}

func sortOffers(offers []catalog.Offer, mode string) {
	switch mode {
	case SortDiscount:
		sort.SliceStable(offers, func(i, j int) bool {
			return offers[i].Discount.Percent() > offers[j].Discount.Percent()
		})
	case SortPrice:
		sort.SliceStable(offers, func(i, j int) bool {
			return offers[i].OfferPrice < offers[j].OfferPrice
		})
	case SortSavings:
		sort.SliceStable(offers, func(i, j int) bool {
			return offers[i].Savings() > offers[j].Savings()
		})
	case SortEnding:
		sort.SliceStable(offers, func(i, j int) bool {
			a, b := offers[i].ValidUntil, offers[j].ValidUntil
			if a.IsZero() != b.IsZero() {
				return !a.IsZero()
			}
			return a.Before(b)
		})
	case SortRelevance:
		sort.SliceStable(offers, func(i, j int) bool {
			return DealScore(offers[i]) > DealScore(offers[j])
		})
	}
}
