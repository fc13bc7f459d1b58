package database

// Post is a tweet the bot has published.
type Post struct {
	ID          int64
	TweetID     string
	Content     string
	ContentType string // "price", "quote" or "joke"
	Likes       int
	Retweets    int
	PostedAt    *string
}

// ContentItem is a quote or joke from the posting pool.
type ContentItem struct {
	ID          int64
	ContentType string // "quote" or "joke"
	Text        string
	CreatedAt   *string
}

// PriceSnapshot is one Bitcoin price observation.
type PriceSnapshot struct {
	ID        int64
	Price     float64
	Change24h *float64
	Currency  string
	FetchedAt *string
}

// NewsItem is a collected news tweet or feed entry.
// MetricsJSON and AnalysisJSON hold normalized JSON written at ingestion;
// RawAnalysis keeps the LLM response verbatim for the dashboard.
type NewsItem struct {
	ID           int64
	ExternalID   string
	Text         string
	Author       *string
	Source       *string
	URL          *string
	PublishedAt  *string
	FetchedAt    *string
	Processed    bool
	MetricsJSON  *string
	RawAnalysis  *string
	AnalysisJSON *string
}

// Stats contains the aggregate numbers shown on the dashboard.
// Averages are nil when no posts exist yet.
type Stats struct {
	TotalPosts   int
	TotalQuotes  int
	TotalJokes   int
	TotalNews    int
	AnalyzedNews int
	AvgLikes     *float64
	AvgRetweets  *float64
	LatestPrice  *PriceSnapshot
	LastPostedAt *string
}
