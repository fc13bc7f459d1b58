// Package twitter is a minimal X API v2 client covering what the bot needs:
// posting tweets, searching recent tweets and refreshing engagement metrics.
package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"btcbuzzbot/internal/format"
)

const defaultBaseURL = "https://api.twitter.com"

// Tweet is one tweet from a search response.
type Tweet struct {
	ID             string
	AuthorID       string
	AuthorUsername string
	Text           string
	CreatedAt      string
	Metrics        format.TweetMetrics
}

// Client talks to the X API v2. Reads use the app-only bearer token,
// posting needs the user-context access token.
type Client struct {
	BaseURL     string
	bearerToken string
	accessToken string
	client      *http.Client
}

// New creates a client, reading both tokens from the named env variables.
func New(bearerTokenEnv, accessTokenEnv string) *Client {
	return &Client{
		BaseURL:     defaultBaseURL,
		bearerToken: os.Getenv(bearerTokenEnv),
		accessToken: os.Getenv(accessTokenEnv),
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

// IsConfigured returns whether the client can post tweets.
func (c *Client) IsConfigured() bool {
	return c.accessToken != ""
}

// CanSearch returns whether the client can run searches and metric lookups.
func (c *Client) CanSearch() bool {
	return c.bearerToken != ""
}

// CreateTweet posts a tweet and returns its ID.
func (c *Client) CreateTweet(ctx context.Context, text string) (string, error) {
	if c.accessToken == "" {
		return "", fmt.Errorf("twitter access token not configured")
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", fmt.Errorf("marshaling tweet: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("twitter API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("twitter API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Data struct {
			ID   string `json:"id"`
			Text string `json:"text"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if result.Data.ID == "" {
		return "", fmt.Errorf("no tweet ID in response")
	}

	return result.Data.ID, nil
}

// SearchRecent runs a recent-search query and returns matching tweets with
// author handles and public metrics resolved.
func (c *Client) SearchRecent(ctx context.Context, query string, maxResults int) ([]Tweet, error) {
	if c.bearerToken == "" {
		return nil, fmt.Errorf("twitter bearer token not configured")
	}

	// API bounds: 10..100 per request.
	if maxResults < 10 {
		maxResults = 10
	}
	if maxResults > 100 {
		maxResults = 100
	}

	params := url.Values{
		"query":        {query},
		"max_results":  {fmt.Sprintf("%d", maxResults)},
		"tweet.fields": {"created_at,public_metrics,author_id"},
		"expansions":   {"author_id"},
		"user.fields":  {"username"},
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/2/tweets/search/recent?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twitter search error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("twitter search returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Data []struct {
			ID            string              `json:"id"`
			Text          string              `json:"text"`
			AuthorID      string              `json:"author_id"`
			CreatedAt     string              `json:"created_at"`
			PublicMetrics format.TweetMetrics `json:"public_metrics"`
		} `json:"data"`
		Includes struct {
			Users []struct {
				ID       string `json:"id"`
				Username string `json:"username"`
			} `json:"users"`
		} `json:"includes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	usernames := make(map[string]string)
	for _, u := range result.Includes.Users {
		usernames[u.ID] = u.Username
	}

	var tweets []Tweet
	for _, d := range result.Data {
		text := strings.TrimSpace(d.Text)
		if d.ID == "" || text == "" {
			continue
		}
		tweets = append(tweets, Tweet{
			ID:             d.ID,
			AuthorID:       d.AuthorID,
			AuthorUsername: usernames[d.AuthorID],
			Text:           text,
			CreatedAt:      d.CreatedAt,
			Metrics:        d.PublicMetrics,
		})
	}
	return tweets, nil
}

// GetTweetMetrics looks up current public metrics for up to 100 tweet IDs.
func (c *Client) GetTweetMetrics(ctx context.Context, ids []string) (map[string]format.TweetMetrics, error) {
	if c.bearerToken == "" {
		return nil, fmt.Errorf("twitter bearer token not configured")
	}
	if len(ids) == 0 {
		return map[string]format.TweetMetrics{}, nil
	}
	if len(ids) > 100 {
		ids = ids[:100]
	}

	params := url.Values{
		"ids":          {strings.Join(ids, ",")},
		"tweet.fields": {"public_metrics"},
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/2/tweets?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twitter lookup error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("twitter lookup returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Data []struct {
			ID            string              `json:"id"`
			PublicMetrics format.TweetMetrics `json:"public_metrics"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding lookup response: %w", err)
	}

	metrics := make(map[string]format.TweetMetrics, len(result.Data))
	for _, d := range result.Data {
		metrics[d.ID] = d.PublicMetrics
	}
	return metrics, nil
}
