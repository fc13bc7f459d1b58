package twitter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := &Client{
		BaseURL:     srv.URL,
		bearerToken: "test-bearer",
		accessToken: "test-access",
		client:      srv.Client(),
	}
	return c
}

func TestCreateTweet(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/2/tweets" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			t.Error("expected bearer auth header")
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data": {"id": "1880123456789", "text": "BTC update"}}`))
	})

	id, err := c.CreateTweet(context.Background(), "BTC update")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "1880123456789" {
		t.Errorf("expected tweet ID 1880123456789, got %q", id)
	}
}

func TestCreateTweetUnconfigured(t *testing.T) {
	c := &Client{BaseURL: defaultBaseURL, client: http.DefaultClient}
	if _, err := c.CreateTweet(context.Background(), "x"); err == nil {
		t.Error("expected error without access token")
	}
}

func TestCreateTweetAPIError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail": "duplicate content"}`))
	})

	_, err := c.CreateTweet(context.Background(), "dup")
	if err == nil {
		t.Fatal("expected error on 403")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestSearchRecent(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2/tweets/search/recent" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "bitcoin" {
			t.Errorf("expected query 'bitcoin', got %q", got)
		}
		w.Write([]byte(`{
			"data": [
				{"id": "101", "text": "BTC to the moon", "author_id": "u1", "created_at": "2026-08-20T10:00:00Z",
				 "public_metrics": {"like_count": 3, "retweet_count": 1, "reply_count": 0}},
				{"id": "102", "text": "  ", "author_id": "u2"}
			],
			"includes": {"users": [{"id": "u1", "username": "satoshi_fan"}]}
		}`))
	})

	tweets, err := c.SearchRecent(context.Background(), "bitcoin", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tweets) != 1 {
		t.Fatalf("expected 1 tweet (blank one skipped), got %d", len(tweets))
	}
	tw := tweets[0]
	if tw.AuthorUsername != "satoshi_fan" {
		t.Errorf("expected resolved username, got %q", tw.AuthorUsername)
	}
	if tw.Metrics.LikeCount != 3 {
		t.Errorf("expected 3 likes, got %d", tw.Metrics.LikeCount)
	}
	if tw.Metrics.ImpressionCount != nil {
		t.Error("expected nil impressions when API omits them")
	}
}

func TestSearchRecentClampsMaxResults(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("max_results"); got != "10" {
			t.Errorf("expected max_results clamped to 10, got %q", got)
		}
		w.Write([]byte(`{"data": []}`))
	})

	if _, err := c.SearchRecent(context.Background(), "btc", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetTweetMetrics(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ids"); got != "101,102" {
			t.Errorf("expected ids '101,102', got %q", got)
		}
		w.Write([]byte(`{"data": [
			{"id": "101", "public_metrics": {"like_count": 12, "retweet_count": 4}},
			{"id": "102", "public_metrics": {"like_count": 0, "retweet_count": 0, "impression_count": 900}}
		]}`))
	})

	metrics, err := c.GetTweetMetrics(context.Background(), []string{"101", "102"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics["101"].LikeCount != 12 {
		t.Errorf("expected 12 likes for 101, got %d", metrics["101"].LikeCount)
	}
	m := metrics["102"]
	if m.ImpressionCount == nil || *m.ImpressionCount != 900 {
		t.Error("expected 900 impressions for 102")
	}
}

func TestGetTweetMetricsEmptyIDs(t *testing.T) {
	c := &Client{BaseURL: defaultBaseURL, bearerToken: "x", client: http.DefaultClient}
	metrics, err := c.GetTweetMetrics(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(metrics) != 0 {
		t.Errorf("expected empty map, got %d entries", len(metrics))
	}
}
