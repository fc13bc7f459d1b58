package bot

import (
	"strings"
	"unicode/utf8"

	"btcbuzzbot/internal/database"
	"btcbuzzbot/internal/format"
	"btcbuzzbot/internal/price"
)

// tweetMaxLen is the X post character limit.
const tweetMaxLen = 280

// minBodyRoom is the smallest quote fragment worth keeping. Below this the
// quote is dropped entirely rather than truncated into noise.
const minBodyRoom = 12

// ComposeTweet builds the text for a price update post. The price line and
// hashtags always survive; the quote or joke is trimmed when space runs out.
func ComposeTweet(q *price.Quote, item *database.ContentItem, hashtags string) string {
	head := priceLine(q)
	tail := strings.TrimSpace(hashtags)

	var body string
	if item != nil {
		body = strings.TrimSpace(item.Text)
	}

	tweet := assembleTweet(head, body, tail)
	if utf8.RuneCountInString(tweet) <= tweetMaxLen {
		return tweet
	}

	sep := 2 // "\n\n"
	overhead := utf8.RuneCountInString(head) + sep
	if tail != "" {
		overhead += utf8.RuneCountInString(tail) + sep
	}

	room := tweetMaxLen - overhead - 1 // reserve one rune for the ellipsis
	if room < minBodyRoom {
		body = ""
	} else {
		runes := []rune(body)
		if len(runes) > room {
			body = strings.TrimSpace(string(runes[:room])) + "…"
		}
	}

	tweet = assembleTweet(head, body, tail)
	if utf8.RuneCountInString(tweet) > tweetMaxLen {
		runes := []rune(tweet)
		tweet = string(runes[:tweetMaxLen])
	}
	return tweet
}

func assembleTweet(head, body, tail string) string {
	parts := []string{head}
	if body != "" {
		parts = append(parts, body)
	}
	if tail != "" {
		parts = append(parts, tail)
	}
	return strings.Join(parts, "\n\n")
}

func priceLine(q *price.Quote) string {
	line := "BTC " + format.FormatUSD(q.Price)
	if arrow := format.TrendArrow(q.Change24h); arrow != "" {
		line += " " + arrow
	}
	return line + " " + format.FormatChange(q.Change24h) + " (24h)"
}
