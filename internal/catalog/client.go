package catalog

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const userAgent = "dealchef/1.0 (+https://github.com/tayloree/dealchef)"

// Client fetches an offers feed over HTTP.
type Client struct {
	httpClient *http.Client
	feedURL    string
}

// NewClient creates a client for the offers feed at feedURL.
func NewClient(feedURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		feedURL:    feedURL,
	}
}

// NewClientWithHTTP creates a client using a caller-supplied http.Client.
func NewClientWithHTTP(feedURL string, httpClient *http.Client) *Client {
	return &Client{httpClient: httpClient, feedURL: feedURL}
}

// Offers fetches and decodes the full feed.
func (c *Client) Offers(ctx context.Context) ([]Offer, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, c.feedURL)
	}

	offers, err := DecodeOffers(resp.Body, FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("fetching offers: %w", err)
	}
	return offers, nil
}
