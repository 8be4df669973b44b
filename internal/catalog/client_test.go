package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/dealchef/internal/catalog"
)

func newTestFeedServer(t *testing.T, offers []catalog.Offer) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Contains(t, r.Header.Get("User-Agent"), "dealchef")

		doc := catalog.OffersDocument{
			LastUpdated: "2025-03-03T06:00:00Z",
			TotalOffers: len(offers),
			Offers:      offers,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(doc)
	}))
}

func TestClientOffers(t *testing.T) {
	offers := []catalog.Offer{
		{
			ID:            "ah-1",
			Store:         catalog.AlbertHeijn,
			ProductName:   "Kipfilet",
			OriginalPrice: 7.49,
			OfferPrice:    4.99,
			Discount:      catalog.Percent(33),
			Category:      "vlees",
		},
		{
			ID:            "jumbo-1",
			Store:         catalog.Jumbo,
			ProductName:   "Spaghetti",
			OriginalPrice: 1.29,
			OfferPrice:    0.99,
			Discount:      catalog.Percent(23),
		},
	}

	srv := newTestFeedServer(t, offers)
	defer srv.Close()

	client := catalog.NewClient(srv.URL)
	got, err := client.Offers(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Kipfilet", got[0].ProductName)
	assert.Equal(t, 33, got[0].Discount.Percent())
	assert.Equal(t, catalog.Jumbo, got[1].Store)
}

func TestClientOffers_EmptyFeed(t *testing.T) {
	srv := newTestFeedServer(t, nil)
	defer srv.Close()

	client := catalog.NewClientWithHTTP(srv.URL, srv.Client())
	got, err := client.Offers(context.Background())

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClientOffers_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := catalog.NewClient(srv.URL)
	_, err := client.Offers(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestClientOffers_BadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"offers": "nope"}`))
	}))
	defer srv.Close()

	client := catalog.NewClient(srv.URL)
	_, err := client.Offers(context.Background())

	assert.ErrorContains(t, err, "decoding offers")
}

func TestClientOffers_CanceledContext(t *testing.T) {
	srv := newTestFeedServer(t, nil)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := catalog.NewClient(srv.URL).Offers(ctx)
	assert.ErrorContains(t, err, "executing request")
}
