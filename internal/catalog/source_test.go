package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/dealchef/internal/catalog"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type countingSource struct {
	calls  int
	offers []catalog.Offer
	err    error
}

func (s *countingSource) Offers(context.Context) ([]catalog.Offer, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.offers, nil
}

func weekOffers() []catalog.Offer {
	return []catalog.Offer{
		{ID: "current", Store: catalog.Jumbo, ValidFrom: catalog.NewDate(2025, time.March, 3), ValidUntil: catalog.NewDate(2025, time.March, 9)},
		{ID: "expired", Store: catalog.Lidl, ValidUntil: catalog.NewDate(2025, time.March, 2)},
		{ID: "open", Store: "marqt"},
	}
}

func offerIDs(offers []catalog.Offer) []string {
	out := make([]string, 0, len(offers))
	for _, o := range offers {
		out = append(out, o.ID)
	}
	return out
}

func TestCachedOfferSource_ServesWithinTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, time.March, 4, 12, 0, 0, 0, time.UTC)}
	src := &countingSource{offers: weekOffers()}
	cache := catalog.NewCachedOfferSource(src, time.Hour, catalog.WithClock(clock.Now))

	got, err := cache.Offers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"current", "open"}, offerIDs(got))

	clock.Advance(30 * time.Minute)
	_, err = cache.Offers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)

	clock.Advance(30 * time.Minute)
	_, err = cache.Offers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestCachedOfferSource_ServesStaleOnRefreshFailure(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, time.March, 4, 12, 0, 0, 0, time.UTC)}
	src := &countingSource{offers: weekOffers()}
	cache := catalog.NewCachedOfferSource(src, time.Minute, catalog.WithClock(clock.Now))

	_, err := cache.Offers(context.Background())
	require.NoError(t, err)

	src.err = errors.New("feed down")
	clock.Advance(2 * time.Minute)

	got, err := cache.Offers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"current", "open"}, offerIDs(got))
	assert.Equal(t, 2, src.calls)
}

func TestCachedOfferSource_FirstLoadFailure(t *testing.T) {
	src := &countingSource{err: errors.New("feed down")}
	cache := catalog.NewCachedOfferSource(src, 0)

	_, err := cache.Offers(context.Background())
	assert.ErrorContains(t, err, "loading offers: feed down")
}

func TestCachedOfferSource_HidesOffersThatExpire(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, time.March, 9, 23, 0, 0, 0, time.UTC)}
	src := &countingSource{offers: weekOffers()}
	cache := catalog.NewCachedOfferSource(src, 24*time.Hour, catalog.WithClock(clock.Now))

	got, _ := cache.Offers(context.Background())
	assert.Contains(t, offerIDs(got), "current")

	clock.Advance(2 * time.Hour)
	got, _ = cache.Offers(context.Background())
	assert.Equal(t, []string{"open"}, offerIDs(got))
	assert.Equal(t, 1, src.calls)
}

func TestCachedOfferSource_Invalidate(t *testing.T) {
	src := &countingSource{offers: weekOffers()}
	cache := catalog.NewCachedOfferSource(src, time.Hour)

	_, _ = cache.Offers(context.Background())
	cache.Invalidate()
	_, _ = cache.Offers(context.Background())

	assert.Equal(t, 2, src.calls)
}

func TestStaticOffers_ReturnsCopy(t *testing.T) {
	static := catalog.StaticOffers(weekOffers())
	got, err := static.Offers(context.Background())
	require.NoError(t, err)

	got[0].ID = "changed"
	assert.Equal(t, "current", static[0].ID)
}

func TestOfferSourceFunc(t *testing.T) {
	src := catalog.OfferSourceFunc(func(context.Context) ([]catalog.Offer, error) {
		return weekOffers()[:1], nil
	})
	got, err := src.Offers(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRecipeBook(t *testing.T) {
	book := catalog.NewRecipeBook([]catalog.Recipe{
		{ID: "a", Name: "Erwtensoep", Servings: 6},
		{ID: "b", Name: "Hutspot", Servings: 4},
		{ID: "a", Name: "Duplicate", Servings: 2},
	})

	all, err := book.Recipes(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	r, err := book.Recipe(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "Hutspot", r.Name)

	first, _ := book.Recipe(context.Background(), "a")
	assert.Equal(t, "Erwtensoep", first.Name)

	_, err = book.Recipe(context.Background(), "zzz")
	assert.ErrorIs(t, err, catalog.ErrRecipeNotFound)
}

func TestOfferStats(t *testing.T) {
	stats := catalog.OfferStats([]catalog.Offer{
		{Store: catalog.Jumbo, Category: "vlees"},
		{Store: catalog.Jumbo, Category: "vis"},
		{Store: catalog.Lidl},
	})

	assert.Equal(t, 3, stats.TotalOffers)
	assert.Equal(t, map[string]int{"jumbo": 2, "lidl": 1}, stats.ByStore)
	assert.Equal(t, map[string]int{"vlees": 1, "vis": 1, "overig": 1}, stats.ByCategory)
}

func TestStores_KnownFirstThenAlphabetical(t *testing.T) {
	stores := catalog.Stores([]catalog.Offer{
		{Store: "marqt"}, {Store: catalog.Lidl}, {Store: "ekoplaza"}, {Store: catalog.AlbertHeijn}, {Store: catalog.Lidl},
	})
	assert.Equal(t, []catalog.Store{catalog.AlbertHeijn, catalog.Lidl, "ekoplaza", "marqt"}, stores)
}
