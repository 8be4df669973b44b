package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// OfferSource supplies the current offer catalog.
type OfferSource interface {
	Offers(ctx context.Context) ([]Offer, error)
}

// RecipeSource supplies the recipe catalog.
type RecipeSource interface {
	Recipes(ctx context.Context) ([]Recipe, error)
	Recipe(ctx context.Context, id string) (Recipe, error)
}

// OfferSourceFunc adapts a function to OfferSource.
type OfferSourceFunc func(ctx context.Context) ([]Offer, error)

// Offers calls f.
func (f OfferSourceFunc) Offers(ctx context.Context) ([]Offer, error) { return f(ctx) }

// StaticOffers is an OfferSource over a fixed snapshot.
type StaticOffers []Offer

// Offers returns a copy of the snapshot.
func (s StaticOffers) Offers(context.Context) ([]Offer, error) {
	return append([]Offer(nil), s...), nil
}

// OfferFile reads offers from disk on every call.
type OfferFile string

// Offers loads the file.
func (p OfferFile) Offers(context.Context) ([]Offer, error) {
	return LoadOffers(string(p))
}

// RecipeBook is an in-memory RecipeSource.
type RecipeBook struct {
	recipes []Recipe
	byID    map[string]int
}

// NewRecipeBook indexes recipes by id. Later duplicates are ignored.
func NewRecipeBook(recipes []Recipe) *RecipeBook {
	b := &RecipeBook{byID: make(map[string]int, len(recipes))}
	for _, r := range recipes {
		if _, dup := b.byID[r.ID]; dup {
			continue
		}
		b.byID[r.ID] = len(b.recipes)
		b.recipes = append(b.recipes, r)
	}
	return b
}

// LoadRecipeBook reads a recipes file into a RecipeBook.
func LoadRecipeBook(path string) (*RecipeBook, error) {
	recipes, err := LoadRecipes(path)
	if err != nil {
		return nil, err
	}
	return NewRecipeBook(recipes), nil
}

// Recipes returns every recipe in catalog order.
func (b *RecipeBook) Recipes(context.Context) ([]Recipe, error) {
	return append([]Recipe(nil), b.recipes...), nil
}

// Recipe looks up one recipe by id.
func (b *RecipeBook) Recipe(_ context.Context, id string) (Recipe, error) {
	idx, ok := b.byID[id]
	if !ok {
		return Recipe{}, fmt.Errorf("%w: %s", ErrRecipeNotFound, id)
	}
	return b.recipes[idx], nil
}

// ActiveOffers keeps the offers valid on day.
func ActiveOffers(offers []Offer, day Date) []Offer {
	out := make([]Offer, 0, len(offers))
	for _, o := range offers {
		if o.ActiveOn(day) {
			out = append(out, o)
		}
	}
	return out
}

// DefaultOfferTTL is how long a fetched offer catalog is served before a
// refresh is attempted.
const DefaultOfferTTL = time.Hour

// CachedOfferSource serves a snapshot of another source for a TTL and hides
// expired offers. When a refresh fails and a previous snapshot exists, the
// stale snapshot is served. Safe for concurrent use.
type CachedOfferSource struct {
	src    OfferSource
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu        sync.Mutex
	offers    []Offer
	fetchedAt time.Time
}

// CacheOption configures a CachedOfferSource.
type CacheOption func(*CachedOfferSource)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) CacheOption {
	return func(c *CachedOfferSource) { c.now = now }
}

// WithLogger sets the logger used for refresh events.
func WithLogger(logger *slog.Logger) CacheOption {
	return func(c *CachedOfferSource) { c.logger = logger }
}

// NewCachedOfferSource wraps src. A non-positive ttl uses DefaultOfferTTL.
func NewCachedOfferSource(src OfferSource, ttl time.Duration, opts ...CacheOption) *CachedOfferSource {
	if ttl <= 0 {
		ttl = DefaultOfferTTL
	}
	c := &CachedOfferSource{
		src:    src,
		ttl:    ttl,
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Offers returns the offers active today, refreshing the snapshot when the
// TTL has elapsed.
func (c *CachedOfferSource) Offers(ctx context.Context) ([]Offer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.fetchedAt.IsZero() || now.Sub(c.fetchedAt) >= c.ttl {
		fresh, err := c.src.Offers(ctx)
		switch {
		case err == nil:
			c.offers = fresh
			c.fetchedAt = now
			c.logger.Debug("offer catalog refreshed", "offers", len(fresh))
		case c.fetchedAt.IsZero():
			return nil, fmt.Errorf("loading offers: %w", err)
		default:
			c.logger.Warn("offer refresh failed, serving stale catalog",
				"error", err, "age", now.Sub(c.fetchedAt).String())
		}
	}
	return ActiveOffers(c.offers, DateOf(now)), nil
}

// Invalidate drops the snapshot so the next call refreshes.
func (c *CachedOfferSource) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offers = nil
	c.fetchedAt = time.Time{}
}

// Stats summarises an offer catalog.
type Stats struct {
	TotalOffers int            `json:"totalOffers"`
	ByStore     map[string]int `json:"byStore"`
	ByCategory  map[string]int `json:"byCategory"`
}

// OfferStats counts offers by store and category.
func OfferStats(offers []Offer) Stats {
	s := Stats{
		TotalOffers: len(offers),
		ByStore:     make(map[string]int),
		ByCategory:  make(map[string]int),
	}
	for _, o := range offers {
		s.ByStore[string(o.Store)]++
		cat := o.Category
		if cat == "" {
			cat = "overig"
		}
		s.ByCategory[cat]++
	}
	return s
}

// Stores lists the distinct stores in offers, known stores first in their
// canonical order, then the rest alphabetically.
func Stores(offers []Offer) []Store {
	seen := make(map[Store]bool)
	for _, o := range offers {
		seen[o.Store] = true
	}
	out := make([]Store, 0, len(seen))
	for _, s := range KnownStores {
		if seen[s] {
			out = append(out, s)
			delete(seen, s)
		}
	}
	rest := make([]Store, 0, len(seen))
	for s := range seen {
		rest = append(rest, s)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(out, rest...)
}
