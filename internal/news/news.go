// Package news collects Bitcoin news items from X search and RSS feeds into
// the database, deduplicating on external ID.
package news

import (
	"context"
	"encoding/json"
	"log"
	"net/url"
	"strings"
	"time"

	"btcbuzzbot/internal/config"
	"btcbuzzbot/internal/database"
	"btcbuzzbot/internal/twitter"
)

// Feed entries with less body text than this get a full-page fetch before
// they are stored, so the analyzer sees more than a teaser.
const minFeedContent = 300

// Result holds the results of a collection run.
type Result struct {
	TotalFound int
	NewItems   int
	Duplicates int
	Sources    map[string]int
}

// Collector gathers news items from X search and RSS feeds.
type Collector struct {
	db         *database.DB
	twitter    *twitter.Client
	feedParser *FeedParser
	fetcher    *ContentFetcher
	query      string
	maxResults int
	daysBack   int
}

// NewCollector creates a news collector. tw may be nil when the X API is not
// configured; feed collection still runs.
func NewCollector(cfg *config.Config, db *database.DB, tw *twitter.Client, daysBack int) *Collector {
	c := &Collector{
		db:         db,
		twitter:    tw,
		fetcher:    NewContentFetcher(0),
		query:      cfg.News.Query,
		maxResults: cfg.News.MaxResults,
		daysBack:   daysBack,
	}

	if len(cfg.News.Feeds) > 0 {
		feeds := make([]FeedConfig, len(cfg.News.Feeds))
		for i, f := range cfg.News.Feeds {
			feeds[i] = FeedConfig{URL: f.URL, Name: f.Name}
		}
		c.feedParser = NewFeedParser(feeds)
	}

	return c
}

// Collect gathers news from all configured sources.
func (c *Collector) Collect(ctx context.Context) *Result {
	r := &Result{Sources: make(map[string]int)}

	if c.twitter != nil && c.twitter.CanSearch() {
		log.Println("Collecting from X search...")
		c.collectTweets(ctx, r)
	}

	if c.feedParser != nil {
		log.Println("Collecting from RSS feeds...")
		c.collectFeeds(r)
	}

	log.Printf("Collection complete: %d found, %d new, %d duplicates",
		r.TotalFound, r.NewItems, r.Duplicates)
	return r
}

func (c *Collector) collectTweets(ctx context.Context, r *Result) {
	tweets, err := c.twitter.SearchRecent(ctx, c.query, c.maxResults)
	if err != nil {
		log.Printf("X search failed: %v", err)
		return
	}
	r.TotalFound += len(tweets)

	for _, tw := range tweets {
		var author, published, metricsJSON *string
		if tw.AuthorUsername != "" {
			author = &tw.AuthorUsername
		} else if tw.AuthorID != "" {
			author = &tw.AuthorID
		}
		if tw.CreatedAt != "" {
			published = &tw.CreatedAt
		}
		// Metrics are normalized here, once; readers get a parsed struct.
		if data, err := json.Marshal(tw.Metrics); err == nil {
			s := string(data)
			metricsJSON = &s
		}
		source := "twitter"
		link := tweetURL(tw)

		id, _ := c.db.InsertNewsItem(tw.ID, tw.Text, author, &source, &link, published, metricsJSON)
		if id > 0 {
			r.NewItems++
			r.Sources[source]++
		} else {
			r.Duplicates++
		}
	}
}

func (c *Collector) collectFeeds(r *Result) {
	entries := c.feedParser.ParseAll(c.daysBack)
	r.TotalFound += len(entries)

	failedDomains := make(map[string]struct{})
	for _, entry := range entries {
		text := buildItemText(entry.Title, entry.Content)

		if len(entry.Content) < minFeedContent {
			domain := domainOf(entry.URL)
			if _, failed := failedDomains[domain]; failed {
				// keep the teaser text
			} else if full, err := c.fetcher.FetchText(entry.URL); err != nil {
				if domain != "" {
					failedDomains[domain] = struct{}{}
				}
				log.Printf("HTTP error for %s, skipping remaining fetches from %s", entry.URL, domain)
			} else if full != "" {
				text = buildItemText(entry.Title, full)
			}
		}

		var published *string
		if entry.Published != nil {
			s := entry.Published.UTC().Format(time.RFC3339)
			published = &s
		}
		source := entry.Source
		link := entry.URL

		id, _ := c.db.InsertNewsItem(entry.URL, text, nil, &source, &link, published, nil)
		if id > 0 {
			r.NewItems++
			r.Sources[source]++
		} else {
			r.Duplicates++
		}
	}
}

// buildItemText joins a title and body into the stored news text.
func buildItemText(title, body string) string {
	if body == "" {
		return title
	}
	return title + "\n\n" + body
}

// tweetURL builds the canonical link for a collected tweet.
func tweetURL(tw twitter.Tweet) string {
	if tw.AuthorUsername != "" {
		return "https://x.com/" + tw.AuthorUsername + "/status/" + tw.ID
	}
	return "https://x.com/i/web/status/" + tw.ID
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
