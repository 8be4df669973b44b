package filter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tayloree/dealchef/internal/catalog"
	"github.com/tayloree/dealchef/internal/filter"
)

func day(d int) catalog.Date { return catalog.NewDate(2025, time.March, d) }

func sampleOffers() []catalog.Offer {
	return []catalog.Offer{
		{
			ID:            "1",
			Store:         catalog.AlbertHeijn,
			ProductName:   "Kipfilet",
			OriginalPrice: 7.49,
			OfferPrice:    4.99,
			Discount:      catalog.Percent(33),
			Category:      "vlees",
			ValidUntil:    day(9),
		},
		{
			ID:            "2",
			Store:         catalog.Jumbo,
			ProductName:   "Rundergehakt",
			OriginalPrice: 4.99,
			OfferPrice:    3.49,
			Discount:      catalog.Percent(30),
			Category:      "Vlees",
			ValidUntil:    day(5),
		},
		{
			ID:            "3",
			Store:         catalog.Lidl,
			ProductName:   "Cherrytomaten &amp; basilicum",
			Description:   "Vers uit het Westland",
			OriginalPrice: 1.99,
			OfferPrice:    1.29,
			Discount:      catalog.Percent(35),
			Category:      "groenten",
		},
		{
			ID:            "4",
			Store:         catalog.Plus,
			ProductName:   "Zalmfilet",
			OriginalPrice: 8.99,
			OfferPrice:    5.99,
			Discount:      catalog.Percent(33),
			Category:      "vis",
			ValidUntil:    day(7),
		},
		{
			ID:            "5",
			Store:         catalog.Aldi,
			ProductName:   "Halfvolle melk",
			OriginalPrice: 0.99,
			OfferPrice:    0.99,
		},
	}
}

func ids(offers []catalog.Offer) []string {
	out := make([]string, 0, len(offers))
	for _, o := range offers {
		out = append(out, o.ID)
	}
	return out
}

func TestApply_NoFilters(t *testing.T) {
	result := filter.Apply(sampleOffers(), filter.Options{})
	assert.Len(t, result, 5)
}

func TestApply_Store(t *testing.T) {
	result := filter.Apply(sampleOffers(), filter.Options{Store: "Albert Heijn"})
	assert.Equal(t, []string{"1"}, ids(result))
}

func TestApply_CategoryCaseInsensitive(t *testing.T) {
	result := filter.Apply(sampleOffers(), filter.Options{Category: "VLEES"})
	assert.Equal(t, []string{"1", "2"}, ids(result))
}

func TestApply_CategoryAlias(t *testing.T) {
	assert.Equal(t, []string{"1", "2"}, ids(filter.Apply(sampleOffers(), filter.Options{Category: "meat"})))
	assert.Equal(t, []string{"1", "2"}, ids(filter.Apply(sampleOffers(), filter.Options{Category: "kip"})))
	assert.Equal(t, []string{"3"}, ids(filter.Apply(sampleOffers(), filter.Options{Category: "produce"})))
}

func TestApply_CategoryNeverMatchesEmpty(t *testing.T) {
	result := filter.Apply(sampleOffers(), filter.Options{Category: "zuivel"})
	assert.Empty(t, result)
}

func TestApply_QueryUnescapesName(t *testing.T) {
	result := filter.Apply(sampleOffers(), filter.Options{Query: "tomaten & basilicum"})
	assert.Equal(t, []string{"3"}, ids(result))
}

func TestApply_QueryMatchesDescription(t *testing.T) {
	result := filter.Apply(sampleOffers(), filter.Options{Query: "westland"})
	assert.Equal(t, []string{"3"}, ids(result))
}

func TestApply_QueryNoMatch(t *testing.T) {
	result := filter.Apply(sampleOffers(), filter.Options{Query: "xyz123"})
	assert.Empty(t, result)
}

func TestApply_SortByPrice(t *testing.T) {
	result := filter.Apply(sampleOffers(), filter.Options{Sort: "prijs"})
	assert.Equal(t, []string{"5", "3", "2", "1", "4"}, ids(result))
}

func TestApply_SortBySavings(t *testing.T) {
	result := filter.Apply(sampleOffers(), filter.Options{Sort: "savings"})
	assert.Equal(t, []string{"4", "1", "2", "3", "5"}, ids(result))
}

func TestApply_SortByEndingPutsOpenEndedLast(t *testing.T) {
	result := filter.Apply(sampleOffers(), filter.Options{Sort: "expiry"})
	assert.Equal(t, []string{"2", "4", "1", "3", "5"}, ids(result))
}

func TestApply_SortDoesNotReorderInput(t *testing.T) {
	offers := sampleOffers()
	_ = filter.Apply(offers, filter.Options{Sort: "price"})
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(offers))
}

func TestApply_Limit(t *testing.T) {
	result := filter.Apply(sampleOffers(), filter.Options{Limit: 2})
	assert.Equal(t, []string{"1", "2"}, ids(result))
}

func TestApply_CombinedFilters(t *testing.T) {
	result := filter.Apply(sampleOffers(), filter.Options{
		Category: "vlees",
		Sort:     "price",
		Limit:    1,
	})
	assert.Equal(t, []string{"2"}, ids(result))
}

func TestCategories(t *testing.T) {
	cats := filter.Categories(sampleOffers())

	assert.Equal(t, map[string]int{"vlees": 1, "Vlees": 1, "groenten": 1, "vis": 1}, cats)
}

func TestCategoryGroup(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"kip", "vlees"},
		{"Vlees", "vlees"},
		{"Pasta Rijst", "pasta-rijst"},
		{"frozen", "diepvries"},
		{"Snacks", "snacks"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, filter.CategoryGroup(tt.input), "CategoryGroup(%q)", tt.input)
	}
}

func TestNormalizeSortMode(t *testing.T) {
	assert.Equal(t, filter.SortDiscount, filter.NormalizeSortMode("korting"))
	assert.Equal(t, filter.SortEnding, filter.NormalizeSortMode("end"))
	assert.Equal(t, filter.SortPrice, filter.NormalizeSortMode(" Price "))
	assert.Equal(t, "", filter.NormalizeSortMode("bogus"))
	assert.True(t, filter.ValidSortMode(""))
	assert.False(t, filter.ValidSortMode("bogus"))
}

func TestDealScore_NeverZero(t *testing.T) {
	assert.Equal(t, 0.01, filter.DealScore(catalog.Offer{}))
	assert.InDelta(t, 3.3+3.0, filter.DealScore(sampleOffers()[3]), 1e-9)
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Tomaten &amp; basilicum", "Tomaten & basilicum"},
		{"Regel1\r\nRegel2", "Regel1 Regel2"},
		{"  spaties  ", "spaties"},
		{"Ben &amp; Jerry&#39;s", "Ben & Jerry's"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, filter.CleanText(tt.input), "CleanText(%q)", tt.input)
	}
}
