package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/dealchef/internal/catalog"
	"github.com/tayloree/dealchef/internal/server"
)

func testRecipes() []catalog.Recipe {
	return []catalog.Recipe{
		{
			ID: "chili", Name: "Chili con carne", Servings: 4, BatchCookingScore: 5, FreezerFriendly: true,
			Tags: []string{"batch", "mexicaans"},
			Ingredients: []catalog.Ingredient{
				{Name: "gehakt", Amount: 500, Unit: "g", Category: "vlees"},
				{Name: "ui", Amount: 2, Unit: "stuks"},
				{Name: "kidneybonen", Amount: 400, Unit: "g", Category: "conserven"},
			},
		},
		{
			ID: "salade", Name: "Griekse salade", Servings: 2, BatchCookingScore: 1,
			Tags: []string{"vegetarisch"},
			Ingredients: []catalog.Ingredient{
				{Name: "feta", Amount: 200, Unit: "g", Category: "zuivel"},
				{Name: "komkommer", Amount: 1, Unit: "stuk", Category: "groenten"},
			},
		},
	}
}

func testOffers() catalog.StaticOffers {
	return catalog.StaticOffers{
		{ID: "ah-1", Store: catalog.AlbertHeijn, ProductName: "Rundergehakt", OriginalPrice: 6.49, OfferPrice: 4.49, Discount: catalog.Percent(31), Category: "vlees"},
		{ID: "jumbo-1", Store: catalog.Jumbo, ProductName: "Kidneybonen", OriginalPrice: 1.09, OfferPrice: 0.69, Discount: catalog.Percent(37), Category: "conserven"},
		{ID: "lidl-1", Store: catalog.Lidl, ProductName: "Halfvolle melk", OriginalPrice: 1.19, OfferPrice: 0.99, Discount: catalog.Percent(17), Category: "zuivel"},
	}
}

func newTestServer(t *testing.T, opts server.Options) *httptest.Server {
	t.Helper()
	if opts.Recipes == nil {
		opts.Recipes = catalog.NewRecipeBook(testRecipes())
	}
	if opts.Offers == nil {
		opts.Offers = testOffers()
	}
	srv := httptest.NewServer(server.New(opts).Handler())
	t.Cleanup(srv.Close)
	return srv
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func do(t *testing.T, method, url, body string) (*http.Response, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp, env
}

func get(t *testing.T, url string) (*http.Response, envelope) {
	t.Helper()
	return do(t, http.MethodGet, url, "")
}

type recipeMatch struct {
	Recipe struct {
		ID string `json:"id"`
	} `json:"recipe"`
	MatchScore       int     `json:"matchScore"`
	EstimatedSavings float64 `json:"estimatedSavings"`
}

func decodeMatches(t *testing.T, env envelope) []recipeMatch {
	t.Helper()
	var out []recipeMatch
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func matchIDs(ms []recipeMatch) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Recipe.ID)
	}
	return out
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, server.Options{})
	resp, env := get(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"status":"ok"`)
}

func TestListRecipes(t *testing.T) {
	srv := newTestServer(t, server.Options{})

	_, env := get(t, srv.URL+"/api/recipes")
	ms := decodeMatches(t, env)
	assert.Equal(t, []string{"chili", "salade"}, matchIDs(ms))
	assert.Equal(t, 100, ms[0].MatchScore)
	assert.Equal(t, 2.40, ms[0].EstimatedSavings)

	_, env = get(t, srv.URL+"/api/recipes?tag=vegetarisch")
	assert.Equal(t, []string{"salade"}, matchIDs(decodeMatches(t, env)))

	_, env = get(t, srv.URL+"/api/recipes?q=nothing-like-this")
	assert.JSONEq(t, "[]", string(env.Data))
}

func TestRankedViews(t *testing.T) {
	srv := newTestServer(t, server.Options{})

	tests := []struct {
		path string
		want []string
	}{
		{"/api/recipes/top-matches", []string{"chili"}},
		{"/api/recipes/best-deals", []string{"chili"}},
		{"/api/recipes/cheapest?limit=1", []string{"chili"}},
		{"/api/recipes/cheapest", []string{"chili", "salade"}},
		{"/api/recipes/batch-friendly", []string{"chili"}},
		{"/api/recipes/batch-friendly?minScore=1", []string{"chili", "salade"}},
		{"/api/recipes/freezer-friendly", []string{"chili"}},
		{"/api/recipes/search?q=salade", []string{"salade"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, env := get(t, srv.URL+tt.path)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.want, matchIDs(decodeMatches(t, env)))
		})
	}
}

func TestBadQueryParams(t *testing.T) {
	srv := newTestServer(t, server.Options{})

	for _, path := range []string{
		"/api/recipes/top-matches?limit=abc",
		"/api/recipes/best-deals?limit=0",
		"/api/recipes/batch-friendly?minScore=-2",
		"/api/recipes/search",
		"/api/offers?sort=random",
		"/api/offers?limit=x",
	} {
		resp, env := get(t, srv.URL+path)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		assert.False(t, env.Success, path)
		assert.NotEmpty(t, env.Error, path)
	}
}

func TestRecipeDetail(t *testing.T) {
	srv := newTestServer(t, server.Options{})

	resp, env := get(t, srv.URL+"/api/recipes/chili")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var m recipeMatch
	require.NoError(t, json.Unmarshal(env.Data, &m))
	assert.Equal(t, "chili", m.Recipe.ID)
	assert.Equal(t, 100, m.MatchScore)

	resp, env = get(t, srv.URL+"/api/recipes/unknown")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Recipe not found", env.Error)
}

func TestTags(t *testing.T) {
	srv := newTestServer(t, server.Options{})
	_, env := get(t, srv.URL+"/api/recipes/tags")
	assert.JSONEq(t, `[{"tag":"batch","count":1},{"tag":"mexicaans","count":1},{"tag":"vegetarisch","count":1}]`, string(env.Data))
}

func TestShoppingList(t *testing.T) {
	srv := newTestServer(t, server.Options{})

	resp, env := do(t, http.MethodPost, srv.URL+"/api/recipes/shopping-list",
		`{"recipes":[{"id":"chili","servings":8},{"id":"ghost","servings":2}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Items []struct {
			Ingredient struct {
				Name   string  `json:"name"`
				Amount float64 `json:"amount"`
			} `json:"ingredient"`
		} `json:"items"`
		TotalEstimatedCost float64 `json:"totalEstimatedCost"`
		TotalSavings       float64 `json:"totalSavings"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Items, 2)
	assert.Equal(t, "gehakt", list.Items[0].Ingredient.Name)
	assert.Equal(t, 1000.0, list.Items[0].Ingredient.Amount)
	assert.Equal(t, 5.18, list.TotalEstimatedCost)
	assert.Equal(t, 2.40, list.TotalSavings)
}

func TestShoppingList_BadBody(t *testing.T) {
	srv := newTestServer(t, server.Options{})

	for _, body := range []string{`not json`, `{}`, `{"recipes":"chili"}`} {
		resp, env := do(t, http.MethodPost, srv.URL+"/api/recipes/shopping-list", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.Equal(t, "Invalid request body", env.Error, body)
	}
}

func TestShoppingList_PDF(t *testing.T) {
	srv := newTestServer(t, server.Options{})

	resp, err := http.Post(srv.URL+"/api/recipes/shopping-list?format=pdf", "application/json",
		strings.NewReader(`{"recipes":[{"id":"chili"}]}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestOffers(t *testing.T) {
	srv := newTestServer(t, server.Options{})

	_, env := get(t, srv.URL+"/api/offers?store=Albert%20Heijn")
	var offers []catalog.Offer
	require.NoError(t, json.Unmarshal(env.Data, &offers))
	require.Len(t, offers, 1)
	assert.Equal(t, "ah-1", offers[0].ID)

	_, env = get(t, srv.URL+"/api/offers?category=dairy&sort=prijs")
	offers = nil
	require.NoError(t, json.Unmarshal(env.Data, &offers))
	require.Len(t, offers, 1)
	assert.Equal(t, "lidl-1", offers[0].ID)

	_, env = get(t, srv.URL+"/api/offers?q=zalm")
	assert.JSONEq(t, "[]", string(env.Data))

	_, env = get(t, srv.URL+"/api/offers/stats")
	assert.JSONEq(t, `{"totalOffers":3,"byStore":{"albert-heijn":1,"jumbo":1,"lidl":1},"byCategory":{"vlees":1,"conserven":1,"zuivel":1}}`, string(env.Data))
}

func TestOfferSourceFailure(t *testing.T) {
	failing := catalog.OfferSourceFunc(func(context.Context) ([]catalog.Offer, error) {
		return nil, errors.New("feed down")
	})
	srv := newTestServer(t, server.Options{Offers: failing})

	for _, path := range []string{"/api/recipes", "/api/recipes/chili", "/api/offers", "/api/offers/stats"} {
		resp, env := get(t, srv.URL+path)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode, path)
		assert.Equal(t, "Offer catalog unavailable", env.Error, path)
	}

	resp, _ := get(t, srv.URL+"/api/recipes/tags")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRefreshOffers(t *testing.T) {
	var calls atomic.Int32
	src := catalog.OfferSourceFunc(func(context.Context) ([]catalog.Offer, error) {
		calls.Add(1)
		return testOffers(), nil
	})
	cached := catalog.NewCachedOfferSource(src, 0)
	srv := newTestServer(t, server.Options{Offers: cached})

	get(t, srv.URL+"/api/offers")
	get(t, srv.URL+"/api/offers")
	assert.Equal(t, int32(1), calls.Load())

	resp, env := do(t, http.MethodPost, srv.URL+"/api/offers/refresh", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"totalOffers":3}`, string(env.Data))
	assert.Equal(t, int32(2), calls.Load())
}

func TestNotFoundRoute(t *testing.T) {
	srv := newTestServer(t, server.Options{})
	resp, env := get(t, srv.URL+"/api/nothing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, env.Success)
}

func TestRequestID(t *testing.T) {
	srv := newTestServer(t, server.Options{})

	resp, _ := get(t, srv.URL+"/health")
	_, err := uuid.Parse(resp.Header.Get(server.RequestIDHeader))
	assert.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set(server.RequestIDHeader, "trace-123")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "trace-123", resp.Header.Get(server.RequestIDHeader))
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, server.Options{CORSOrigins: []string{"https://dealchef.example"}})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://dealchef.example")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "https://dealchef.example", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, server.Options{RateLimit: 0.001, RateBurst: 2})

	for i := 0; i < 2; i++ {
		resp, _ := get(t, srv.URL+"/health")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, env := get(t, srv.URL+"/health")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "Too many requests", env.Error)
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := server.NewRateLimiter(0.001, 1)
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))

	assert.True(t, server.NewRateLimiter(0, 0).Allow("10.0.0.1"))
}

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	srv := newTestServer(t, server.Options{Logger: logger})

	get(t, srv.URL+"/api/recipes/unknown")

	out := buf.String()
	assert.Contains(t, out, "msg=request")
	assert.Contains(t, out, "method=GET")
	assert.Contains(t, out, "path=/api/recipes/unknown")
	assert.Contains(t, out, "status=404")
	assert.Contains(t, out, "request_id=")
}
