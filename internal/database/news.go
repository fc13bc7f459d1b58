package database

import (
	"database/sql"
)

// InsertNewsItem stores a collected news item. Returns the ID on success,
// 0 if the external_id was already collected.
func (db *DB) InsertNewsItem(externalID, text string, author, source, url, publishedAt, metricsJSON *string) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO news_items (external_id, text, author, source, url, published_at, metrics_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		externalID, text, author, source, url, publishedAt, metricsJSON,
	)
	if err != nil {
		// Duplicate external_id constraint
		return 0, nil //nolint: nilerr
	}
	return result.LastInsertId()
}

// GetUnprocessedNews returns items still waiting for analysis, oldest first.
func (db *DB) GetUnprocessedNews(limit int) ([]NewsItem, error) {
	rows, err := db.conn.Query(
		`SELECT id, external_id, text, author, source, url, published_at, fetched_at,
		processed, metrics_json, raw_analysis, analysis_json
		FROM news_items WHERE processed = 0 ORDER BY fetched_at ASC, id ASC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNewsItems(rows)
}

// GetRecentNews returns the most recently collected items, newest first.
func (db *DB) GetRecentNews(limit int) ([]NewsItem, error) {
	rows, err := db.conn.Query(
		`SELECT id, external_id, text, author, source, url, published_at, fetched_at,
		processed, metrics_json, raw_analysis, analysis_json
		FROM news_items ORDER BY fetched_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNewsItems(rows)
}

// GetNewsItem returns a single item by ID.
func (db *DB) GetNewsItem(newsID int64) (*NewsItem, error) {
	row := db.conn.QueryRow(
		`SELECT id, external_id, text, author, source, url, published_at, fetched_at,
		processed, metrics_json, raw_analysis, analysis_json
		FROM news_items WHERE id = ?`, newsID,
	)
	n, err := scanNewsItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// SaveNewsAnalysis stores the LLM output for an item. The raw response is
// always kept; the item counts as processed only when parsing succeeded and
// analysisJSON is non-nil, so failed items get retried on the next run.
func (db *DB) SaveNewsAnalysis(newsID int64, rawAnalysis string, analysisJSON *string) error {
	processed := 0
	if analysisJSON != nil {
		processed = 1
	}
	_, err := db.conn.Exec(
		"UPDATE news_items SET raw_analysis = ?, analysis_json = ?, processed = ? WHERE id = ?",
		rawAnalysis, analysisJSON, processed, newsID,
	)
	return err
}

func scanNewsItems(rows *sql.Rows) ([]NewsItem, error) {
	var items []NewsItem
	for rows.Next() {
		var n NewsItem
		var processed int
		if err := rows.Scan(&n.ID, &n.ExternalID, &n.Text, &n.Author, &n.Source,
			&n.URL, &n.PublishedAt, &n.FetchedAt, &processed,
			&n.MetricsJSON, &n.RawAnalysis, &n.AnalysisJSON); err != nil {
			return nil, err
		}
		n.Processed = processed != 0
		items = append(items, n)
	}
	return items, rows.Err()
}

func scanNewsItem(row *sql.Row) (*NewsItem, error) {
	var n NewsItem
	var processed int
	if err := row.Scan(&n.ID, &n.ExternalID, &n.Text, &n.Author, &n.Source,
		&n.URL, &n.PublishedAt, &n.FetchedAt, &processed,
		&n.MetricsJSON, &n.RawAnalysis, &n.AnalysisJSON); err != nil {
		return nil, err
	}
	n.Processed = processed != 0
	return &n, nil
}
