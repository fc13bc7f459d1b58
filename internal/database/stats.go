package database

import "database/sql"

// GetStats returns the aggregate numbers for the dashboard and status command.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}

	counts := []struct {
		sql  string
		dest *int
	}{
		{"SELECT COUNT(*) FROM posts", &s.TotalPosts},
		{"SELECT COUNT(*) FROM content_items WHERE content_type = 'quote'", &s.TotalQuotes},
		{"SELECT COUNT(*) FROM content_items WHERE content_type = 'joke'", &s.TotalJokes},
		{"SELECT COUNT(*) FROM news_items", &s.TotalNews},
		{"SELECT COUNT(*) FROM news_items WHERE processed = 1", &s.AnalyzedNews},
	}
	for _, q := range counts {
		if err := db.conn.QueryRow(q.sql).Scan(q.dest); err != nil {
			return nil, err
		}
	}

	var avgLikes, avgRetweets sql.NullFloat64
	if err := db.conn.QueryRow(
		"SELECT AVG(likes), AVG(retweets) FROM posts",
	).Scan(&avgLikes, &avgRetweets); err != nil {
		return nil, err
	}
	if avgLikes.Valid {
		s.AvgLikes = &avgLikes.Float64
	}
	if avgRetweets.Valid {
		s.AvgRetweets = &avgRetweets.Float64
	}

	var lastPosted sql.NullString
	if err := db.conn.QueryRow(
		"SELECT MAX(posted_at) FROM posts",
	).Scan(&lastPosted); err != nil {
		return nil, err
	}
	if lastPosted.Valid {
		s.LastPostedAt = &lastPosted.String
	}

	latest, err := db.GetLatestPrice()
	if err != nil {
		return nil, err
	}
	s.LatestPrice = latest

	return s, nil
}
