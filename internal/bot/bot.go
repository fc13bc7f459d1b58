// Package bot composes and publishes the periodic Bitcoin price posts and
// keeps their engagement numbers current.
package bot

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"btcbuzzbot/internal/config"
	"btcbuzzbot/internal/database"
	"btcbuzzbot/internal/price"
	"btcbuzzbot/internal/twitter"
)

// simulatedIDPrefix marks posts that never reached the X API. Engagement
// refresh skips them.
const simulatedIDPrefix = "dry-run-"

// Bot posts price updates and records them.
type Bot struct {
	db          *database.DB
	twitter     *twitter.Client
	price       *price.Client
	hashtags    string
	contentType string
	dryRun      bool
}

// New creates a bot. tw may be nil; posts are then simulated and stored
// with a dry-run tweet ID so the dashboard works without API credentials.
func New(cfg *config.Config, db *database.DB, tw *twitter.Client, pc *price.Client, dryRun bool) *Bot {
	return &Bot{
		db:          db,
		twitter:     tw,
		price:       pc,
		hashtags:    cfg.Bot.Hashtags,
		contentType: cfg.Bot.ContentType,
		dryRun:      dryRun,
	}
}

// Post fetches the current price, records a snapshot, composes a tweet and
// publishes it. contentType overrides the configured default when non-empty.
func (b *Bot) Post(ctx context.Context, contentType string) (*database.Post, error) {
	quote, err := b.price.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price: %w", err)
	}
	if _, err := b.db.InsertPrice(quote.Price, quote.Change24h, quote.Currency); err != nil {
		log.Printf("Failed to record price snapshot: %v", err)
	}

	item, err := b.pickContent(contentType)
	if err != nil {
		return nil, err
	}

	text := ComposeTweet(quote, item, b.hashtags)

	tweetID, err := b.publish(ctx, text)
	if err != nil {
		return nil, err
	}

	usedType := "price"
	if item != nil {
		usedType = item.ContentType
	}
	if _, err := b.db.InsertPost(tweetID, text, usedType); err != nil {
		return nil, fmt.Errorf("failed to record post: %w", err)
	}

	log.Printf("Posted %s update as %s", usedType, tweetID)
	return b.db.GetPostByTweetID(tweetID)
}

// pickContent selects a quote or joke for the next post. An empty pool for
// the requested type falls back to the other pool, then to no item at all.
func (b *Bot) pickContent(contentType string) (*database.ContentItem, error) {
	ct := contentType
	if ct == "" {
		ct = b.contentType
	}
	if ct != "quote" && ct != "joke" {
		if rand.IntN(2) == 0 {
			ct = "quote"
		} else {
			ct = "joke"
		}
	}

	item, err := b.db.GetRandomContentItem(ct)
	if err != nil || item != nil {
		return item, err
	}

	other := "joke"
	if ct == "joke" {
		other = "quote"
	}
	return b.db.GetRandomContentItem(other)
}

func (b *Bot) publish(ctx context.Context, text string) (string, error) {
	if b.dryRun {
		id := simulatedIDPrefix + uuid.NewString()
		log.Printf("[dry-run] Would post (%d chars):\n%s", utf8.RuneCountInString(text), text)
		return id, nil
	}
	if b.twitter == nil || !b.twitter.IsConfigured() {
		id := simulatedIDPrefix + uuid.NewString()
		log.Println("X API not configured, recording simulated post")
		return id, nil
	}
	return b.twitter.CreateTweet(ctx, text)
}

// RefreshEngagement pulls current like and retweet counts for recent posts
// from the X API. Simulated posts are skipped. Returns the number updated.
func (b *Bot) RefreshEngagement(ctx context.Context, limit int) (int, error) {
	if b.twitter == nil || !b.twitter.CanSearch() {
		return 0, nil
	}

	posts, err := b.db.GetRecentPosts(limit)
	if err != nil {
		return 0, err
	}

	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		if strings.HasPrefix(p.TweetID, simulatedIDPrefix) {
			continue
		}
		ids = append(ids, p.TweetID)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	metrics, err := b.twitter.GetTweetMetrics(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch tweet metrics: %w", err)
	}

	updated := 0
	for _, p := range posts {
		m, ok := metrics[p.TweetID]
		if !ok {
			continue
		}
		if m.LikeCount == p.Likes && m.RetweetCount == p.Retweets {
			continue
		}
		if err := b.db.UpdatePostEngagement(p.TweetID, m.LikeCount, m.RetweetCount); err != nil {
			log.Printf("Failed to update engagement for %s: %v", p.TweetID, err)
			continue
		}
		updated++
	}

	log.Printf("Engagement refreshed: %d of %d posts updated", updated, len(ids))
	return updated, nil
}
