package database

import (
	"database/sql"
)

// InsertPost records a published tweet. Returns the ID on success, 0 if the
// tweet_id was already recorded.
func (db *DB) InsertPost(tweetID, content, contentType string) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO posts (tweet_id, content, content_type) VALUES (?, ?, ?)`,
		tweetID, content, contentType,
	)
	if err != nil {
		// Duplicate tweet_id constraint
		return 0, nil //nolint: nilerr
	}
	return result.LastInsertId()
}

// GetRecentPosts returns the most recent posts, newest first.
func (db *DB) GetRecentPosts(limit int) ([]Post, error) {
	rows, err := db.conn.Query(
		`SELECT id, tweet_id, content, content_type, likes, retweets, posted_at
		FROM posts ORDER BY posted_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

// GetPostByTweetID returns a single post by its tweet ID.
func (db *DB) GetPostByTweetID(tweetID string) (*Post, error) {
	row := db.conn.QueryRow(
		`SELECT id, tweet_id, content, content_type, likes, retweets, posted_at
		FROM posts WHERE tweet_id = ?`, tweetID,
	)
	var p Post
	if err := row.Scan(&p.ID, &p.TweetID, &p.Content, &p.ContentType,
		&p.Likes, &p.Retweets, &p.PostedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// UpdatePostEngagement refreshes the like/retweet counters for a post.
func (db *DB) UpdatePostEngagement(tweetID string, likes, retweets int) error {
	_, err := db.conn.Exec(
		"UPDATE posts SET likes = ?, retweets = ? WHERE tweet_id = ?",
		likes, retweets, tweetID,
	)
	return err
}

func scanPosts(rows *sql.Rows) ([]Post, error) {
	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.TweetID, &p.Content, &p.ContentType,
			&p.Likes, &p.Retweets, &p.PostedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
