package format

import (
	"encoding/json"
	"strings"
)

// TweetMetrics holds the public engagement counters of a news tweet.
// Counters the API omitted default to zero; impressions stay nil so the
// template can leave that cell out entirely.
type TweetMetrics struct {
	LikeCount       int  `json:"like_count"`
	RetweetCount    int  `json:"retweet_count"`
	ReplyCount      int  `json:"reply_count"`
	ImpressionCount *int `json:"impression_count,omitempty"`
}

// ParseMetrics decodes the metrics JSON stored with a news item. This runs
// once at the ingestion boundary; readers only ever see the struct. Returns
// nil for empty or malformed input.
func ParseMetrics(raw string) *TweetMetrics {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var m TweetMetrics
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil
	}
	return &m
}
