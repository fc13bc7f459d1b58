package database

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr(s string) *string { return &s }

func fptr(f float64) *float64 { return &f }

func TestInsertPost(t *testing.T) {
	db := openTestDB(t)
	id, err := db.InsertPost("1880123456789", "BTC: $97,000.00 | 24h: +2.10%", "quote")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero post ID")
	}
}

func TestInsertDuplicatePost(t *testing.T) {
	db := openTestDB(t)
	_, _ = db.InsertPost("1880000000000", "First", "price")
	id, err := db.InsertPost("1880000000000", "Duplicate", "price")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 0 {
		t.Error("expected 0 for duplicate post")
	}
}

func TestGetRecentPostsOrder(t *testing.T) {
	db := openTestDB(t)
	db.InsertPost("111", "oldest", "price")
	db.InsertPost("222", "middle", "quote")
	db.InsertPost("333", "newest", "joke")

	posts, err := db.GetRecentPosts(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if posts[0].Content != "newest" {
		t.Errorf("expected newest post first, got %q", posts[0].Content)
	}
}

func TestUpdatePostEngagement(t *testing.T) {
	db := openTestDB(t)
	db.InsertPost("444", "Test", "quote")

	if err := db.UpdatePostEngagement("444", 12, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	post, err := db.GetPostByTweetID("444")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post == nil {
		t.Fatal("expected post")
	}
	if post.Likes != 12 || post.Retweets != 3 {
		t.Errorf("expected 12 likes / 3 retweets, got %d / %d", post.Likes, post.Retweets)
	}
}

func TestGetPostByTweetIDMissing(t *testing.T) {
	db := openTestDB(t)
	post, err := db.GetPostByTweetID("does-not-exist")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post != nil {
		t.Error("expected nil for missing post")
	}
}

func TestContentLifecycle(t *testing.T) {
	db := openTestDB(t)
	id, err := db.InsertContentItem("quote", "HODL to the moon!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero content ID")
	}

	item, _ := db.GetContentItem(id)
	if item == nil {
		t.Fatal("expected content item")
	}
	if item.ContentType != "quote" {
		t.Errorf("expected type 'quote', got %q", item.ContentType)
	}

	quotes, _ := db.GetContentItems("quote")
	if len(quotes) != 1 {
		t.Errorf("expected 1 quote, got %d", len(quotes))
	}
	jokes, _ := db.GetContentItems("joke")
	if len(jokes) != 0 {
		t.Errorf("expected 0 jokes, got %d", len(jokes))
	}

	deleted, err := db.DeleteContentItem("quote", id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("expected delete to report true")
	}

	item, _ = db.GetContentItem(id)
	if item != nil {
		t.Error("expected nil after delete")
	}
}

func TestDeleteContentItemWrongType(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.InsertContentItem("joke", "Why did the blockchain cross the road?")

	deleted, err := db.DeleteContentItem("quote", id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted {
		t.Error("expected no delete when type does not match")
	}

	item, _ := db.GetContentItem(id)
	if item == nil {
		t.Error("expected joke to survive mismatched delete")
	}
}

func TestInsertContentItemInvalidType(t *testing.T) {
	db := openTestDB(t)
	_, err := db.InsertContentItem("meme", "not allowed")
	if err == nil {
		t.Error("expected CHECK constraint error for invalid content type")
	}
}

func TestRandomContentFromEmptyPool(t *testing.T) {
	db := openTestDB(t)
	item, err := db.GetRandomContentItem("quote")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item != nil {
		t.Error("expected nil from empty pool")
	}
}

func TestRandomContentPicksFromPool(t *testing.T) {
	db := openTestDB(t)
	db.InsertContentItem("joke", "A")
	db.InsertContentItem("joke", "B")

	item, err := db.GetRandomContentItem("joke")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item == nil {
		t.Fatal("expected an item")
	}
	if item.Text != "A" && item.Text != "B" {
		t.Errorf("expected A or B, got %q", item.Text)
	}
}

func TestLatestPriceEmpty(t *testing.T) {
	db := openTestDB(t)
	price, err := db.GetLatestPrice()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != nil {
		t.Error("expected nil when no prices stored")
	}
}

func TestLatestPricePicksNewest(t *testing.T) {
	db := openTestDB(t)
	db.InsertPrice(95000.0, fptr(-1.2), "usd")
	db.InsertPrice(97123.45, fptr(2.1), "usd")

	price, err := db.GetLatestPrice()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price == nil {
		t.Fatal("expected a price")
	}
	if price.Price != 97123.45 {
		t.Errorf("expected 97123.45, got %v", price.Price)
	}
	if price.Change24h == nil || *price.Change24h != 2.1 {
		t.Error("expected change_24h 2.1")
	}
}

func TestNewsLifecycle(t *testing.T) {
	db := openTestDB(t)
	id, err := db.InsertNewsItem("tw-1001", "Bitcoin breaks new high", ptr("satoshi_fan"), ptr("twitter"), nil, ptr("2026-08-20T10:00:00Z"), ptr(`{"like_count": 3}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero news ID")
	}

	dup, err := db.InsertNewsItem("tw-1001", "Same tweet again", nil, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dup != 0 {
		t.Error("expected 0 for duplicate news item")
	}

	unprocessed, _ := db.GetUnprocessedNews(10)
	if len(unprocessed) != 1 {
		t.Fatalf("expected 1 unprocessed item, got %d", len(unprocessed))
	}

	analysis := `{"significance": 8, "sentiment": "Positive", "summary": "New all-time high."}`
	if err := db.SaveNewsAnalysis(id, analysis, &analysis); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	unprocessed, _ = db.GetUnprocessedNews(10)
	if len(unprocessed) != 0 {
		t.Error("expected 0 unprocessed after analysis")
	}

	item, _ := db.GetNewsItem(id)
	if item == nil {
		t.Fatal("expected news item")
	}
	if !item.Processed {
		t.Error("expected item to be processed")
	}
	if item.AnalysisJSON == nil {
		t.Error("expected analysis_json to be stored")
	}
}

func TestSaveNewsAnalysisParseFailureStaysUnprocessed(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.InsertNewsItem("tw-1002", "Some noise", nil, nil, nil, nil, nil)

	if err := db.SaveNewsAnalysis(id, "I cannot answer that.", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	item, _ := db.GetNewsItem(id)
	if item.Processed {
		t.Error("expected item to stay unprocessed when parsing failed")
	}
	if item.RawAnalysis == nil || *item.RawAnalysis != "I cannot answer that." {
		t.Error("expected raw response to be kept")
	}

	unprocessed, _ := db.GetUnprocessedNews(10)
	if len(unprocessed) != 1 {
		t.Errorf("expected item to be retried, got %d unprocessed", len(unprocessed))
	}
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)
	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalPosts != 0 {
		t.Errorf("expected 0 posts, got %d", stats.TotalPosts)
	}
	if stats.AvgLikes != nil {
		t.Error("expected nil avg likes on empty db")
	}
	if stats.LatestPrice != nil {
		t.Error("expected nil latest price on empty db")
	}

	db.InsertPost("555", "Test", "quote")
	db.UpdatePostEngagement("555", 10, 4)
	db.InsertContentItem("quote", "Q1")
	db.InsertContentItem("joke", "J1")
	db.InsertPrice(90000, nil, "usd")

	stats, _ = db.GetStats()
	if stats.TotalPosts != 1 {
		t.Errorf("expected 1 post, got %d", stats.TotalPosts)
	}
	if stats.TotalQuotes != 1 || stats.TotalJokes != 1 {
		t.Errorf("expected 1 quote and 1 joke, got %d / %d", stats.TotalQuotes, stats.TotalJokes)
	}
	if stats.AvgLikes == nil || *stats.AvgLikes != 10 {
		t.Error("expected avg likes 10")
	}
	if stats.LatestPrice == nil || stats.LatestPrice.Price != 90000 {
		t.Error("expected latest price 90000")
	}
	if stats.LastPostedAt == nil {
		t.Error("expected last posted timestamp")
	}
}
