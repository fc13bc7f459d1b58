package news

import (
	"testing"
	"time"

	"btcbuzzbot/internal/twitter"
)

func TestStripHTML(t *testing.T) {
	in := "<p>Bitcoin&nbsp;hits   <b>new</b> high &amp; holds</p>"
	got := stripHTML(in)
	want := "Bitcoin hits new high & holds"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestExtractSourceName(t *testing.T) {
	cases := map[string]string{
		"https://www.coindesk.com/arc/outboundfeeds/rss/": "Coindesk",
		"https://blog.kraken.com/feed":                    "Kraken",
		"https://decrypt.co/feed":                         "Decrypt",
	}
	for feedURL, want := range cases {
		if got := extractSourceName(feedURL); got != want {
			t.Errorf("%s: expected %q, got %q", feedURL, want, got)
		}
	}
}

func TestIsWithinWindow(t *testing.T) {
	cutoff := time.Now().AddDate(0, 0, -2)

	if !isWithinWindow(nil, cutoff) {
		t.Error("expected entries without a date to pass")
	}

	old := time.Now().AddDate(0, 0, -5)
	if isWithinWindow(&old, cutoff) {
		t.Error("expected old entry to be filtered")
	}

	recent := time.Now().AddDate(0, 0, -1)
	if !isWithinWindow(&recent, cutoff) {
		t.Error("expected recent entry to pass")
	}
}

func TestBuildItemText(t *testing.T) {
	if got := buildItemText("Title only", ""); got != "Title only" {
		t.Errorf("expected bare title, got %q", got)
	}
	if got := buildItemText("Title", "Body"); got != "Title\n\nBody" {
		t.Errorf("expected title and body joined, got %q", got)
	}
}

func TestTweetURL(t *testing.T) {
	withUser := twitter.Tweet{ID: "123", AuthorUsername: "satoshi"}
	if got := tweetURL(withUser); got != "https://x.com/satoshi/status/123" {
		t.Errorf("unexpected URL %q", got)
	}

	anon := twitter.Tweet{ID: "456"}
	if got := tweetURL(anon); got != "https://x.com/i/web/status/456" {
		t.Errorf("unexpected fallback URL %q", got)
	}
}
