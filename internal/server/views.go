package server

import (
	"encoding/json"
	"html/template"
	"strconv"
	"strings"

	"btcbuzzbot/internal/database"
	"btcbuzzbot/internal/format"
)

// priceView is the homepage price panel.
type priceView struct {
	Available  bool
	Amount     string
	Change     string
	Arrow      string
	Trend      string
	FetchedAgo string
}

func newPriceView(snap *database.PriceSnapshot) priceView {
	if snap == nil {
		return priceView{
			Trend:  format.Trend(nil),
			Change: format.FormatChange(nil),
		}
	}
	return priceView{
		Available:  true,
		Amount:     format.FormatUSD(snap.Price),
		Change:     format.FormatChange(snap.Change24h),
		Arrow:      format.TrendArrow(snap.Change24h),
		Trend:      format.Trend(snap.Change24h),
		FetchedAgo: format.TimeAgo(snap.FetchedAt),
	}
}

// statsView is the aggregate block on the homepage and admin dashboard.
// Missing averages show "--" rather than a zero that looks like data.
type statsView struct {
	TotalPosts    int
	TotalQuotes   int
	TotalJokes    int
	TotalNews     int
	AnalyzedNews  int
	AvgLikes      string
	AvgRetweets   string
	LastPostedAgo string
}

func newStatsView(stats *database.Stats) statsView {
	v := statsView{
		TotalPosts:    stats.TotalPosts,
		TotalQuotes:   stats.TotalQuotes,
		TotalJokes:    stats.TotalJokes,
		TotalNews:     stats.TotalNews,
		AnalyzedNews:  stats.AnalyzedNews,
		AvgLikes:      "--",
		AvgRetweets:   "--",
		LastPostedAgo: format.TimeAgo(stats.LastPostedAt),
	}
	if stats.AvgLikes != nil {
		v.AvgLikes = strconv.FormatFloat(*stats.AvgLikes, 'f', 1, 64)
	}
	if stats.AvgRetweets != nil {
		v.AvgRetweets = strconv.FormatFloat(*stats.AvgRetweets, 'f', 1, 64)
	}
	return v
}

// postView is one row of the post history table.
type postView struct {
	TweetID     string
	URL         string
	Content     string
	ContentType string
	Likes       int
	Retweets    int
	PostedAgo   string
	PostedAt    string
	Simulated   bool
}

func newPostViews(posts []database.Post) []postView {
	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		v := postView{
			TweetID:     p.TweetID,
			Content:     p.Content,
			ContentType: p.ContentType,
			Likes:       p.Likes,
			Retweets:    p.Retweets,
			PostedAgo:   format.TimeAgo(p.PostedAt),
			PostedAt:    format.FormatTimestamp(p.PostedAt),
			Simulated:   strings.HasPrefix(p.TweetID, "dry-run-"),
		}
		if !v.Simulated {
			v.URL = "https://x.com/i/web/status/" + p.TweetID
		}
		views = append(views, v)
	}
	return views
}

// newsView is one news card on the posts page. Badge classes and display
// text are precomputed so the template only prints them.
type newsView struct {
	ID           int64
	Text         string
	Author       string
	Source       string
	URL          string
	PublishedAgo string
	FetchedAgo   string
	Processed    bool
	Metrics      *format.TweetMetrics
	SigBucket    string
	SigDisplay   string
	Tone         string
	ToneDisplay  string
	Summary      string
	Analysis     template.HTML
}

func newNewsViews(items []database.NewsItem) []newsView {
	views := make([]newsView, 0, len(items))
	for _, item := range items {
		views = append(views, newNewsView(item))
	}
	return views
}

func newNewsView(item database.NewsItem) newsView {
	v := newsView{
		ID:           item.ID,
		Text:         item.Text,
		Author:       derefString(item.Author),
		Source:       derefString(item.Source),
		URL:          derefString(item.URL),
		PublishedAgo: format.TimeAgo(item.PublishedAt),
		FetchedAgo:   format.TimeAgo(item.FetchedAt),
		Processed:    item.Processed,
		Metrics:      format.ParseMetrics(derefString(item.MetricsJSON)),
	}

	if item.RawAnalysis != nil && *item.RawAnalysis != "" {
		v.Analysis = format.HighlightJSON(*item.RawAnalysis)
	}

	// Zero values classify missing ratings as low/neutral and display "N/A".
	var sig format.Significance
	var tone format.Sentiment
	if item.AnalysisJSON != nil {
		var parsed map[string]any
		if err := json.Unmarshal([]byte(*item.AnalysisJSON), &parsed); err == nil {
			if s := format.SignificanceFrom(analysisValue(parsed, "significance", "significance_score")); s != nil {
				sig = *s
			}
			if t := format.SentimentFrom(analysisValue(parsed, "sentiment", "sentiment_score")); t != nil {
				tone = *t
			}
			if summary, ok := parsed["summary"].(string); ok {
				v.Summary = summary
			}
		}
	}
	v.SigBucket = sig.Bucket()
	v.SigDisplay = sig.Display()
	v.Tone = tone.Tone()
	v.ToneDisplay = tone.Display()

	return v
}

// analysisValue returns the first key present; rows written by older
// analyzers used the _score names.
func analysisValue(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
