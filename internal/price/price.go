// Package price fetches Bitcoin spot prices from the CoinGecko API.
package price

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client fetches prices from a CoinGecko-compatible endpoint.
type Client struct {
	baseURL  string
	currency string
	client   *http.Client
}

// Quote is one fetched price observation.
type Quote struct {
	Price     float64
	Change24h *float64
	Currency  string
}

// New creates a price client. baseURL is the API root, e.g.
// "https://api.coingecko.com/api/v3".
func New(baseURL, currency string) *Client {
	return &Client{
		baseURL:  baseURL,
		currency: currency,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch returns the current Bitcoin price in the configured currency.
// The 24h change stays nil when the API leaves it out.
func (c *Client) Fetch(ctx context.Context) (*Quote, error) {
	params := url.Values{
		"ids":                 {"bitcoin"},
		"vs_currencies":       {c.currency},
		"include_24hr_change": {"true"},
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/simple/price?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price API returned %d", resp.StatusCode)
	}

	var result map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding price response: %w", err)
	}

	coin, ok := result["bitcoin"]
	if !ok {
		return nil, fmt.Errorf("no bitcoin entry in price response")
	}
	value, ok := coin[c.currency]
	if !ok {
		return nil, fmt.Errorf("no %s price in response", c.currency)
	}

	q := &Quote{Price: value, Currency: c.currency}
	if change, ok := coin[c.currency+"_24h_change"]; ok {
		q.Change24h = &change
	}
	return q, nil
}
