package database

import (
	"database/sql"
)

// InsertContentItem adds a quote or joke to the posting pool.
func (db *DB) InsertContentItem(contentType, text string) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO content_items (content_type, text) VALUES (?, ?)`,
		contentType, text,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetContentItems returns all items of one type, newest first.
func (db *DB) GetContentItems(contentType string) ([]ContentItem, error) {
	return db.queryContentItems(
		"SELECT id, content_type, text, created_at FROM content_items WHERE content_type = ? ORDER BY created_at DESC, id DESC",
		contentType,
	)
}

// GetAllContentItems returns the whole pool, quotes before jokes.
func (db *DB) GetAllContentItems() ([]ContentItem, error) {
	return db.queryContentItems(
		"SELECT id, content_type, text, created_at FROM content_items ORDER BY content_type DESC, created_at DESC, id DESC",
	)
}

// GetContentItem returns a single item by ID.
func (db *DB) GetContentItem(itemID int64) (*ContentItem, error) {
	row := db.conn.QueryRow(
		"SELECT id, content_type, text, created_at FROM content_items WHERE id = ?",
		itemID,
	)
	var c ContentItem
	if err := row.Scan(&c.ID, &c.ContentType, &c.Text, &c.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// GetRandomContentItem picks a random item of one type for composing a post.
// Returns (nil, nil) when the pool is empty.
func (db *DB) GetRandomContentItem(contentType string) (*ContentItem, error) {
	row := db.conn.QueryRow(
		"SELECT id, content_type, text, created_at FROM content_items WHERE content_type = ? ORDER BY RANDOM() LIMIT 1",
		contentType,
	)
	var c ContentItem
	if err := row.Scan(&c.ID, &c.ContentType, &c.Text, &c.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// DeleteContentItem removes an item, checking it belongs to the given type.
// Returns false when no matching row existed.
func (db *DB) DeleteContentItem(contentType string, itemID int64) (bool, error) {
	result, err := db.conn.Exec(
		"DELETE FROM content_items WHERE id = ? AND content_type = ?",
		itemID, contentType,
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (db *DB) queryContentItems(query string, args ...any) ([]ContentItem, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ContentItem
	for rows.Next() {
		var c ContentItem
		if err := rows.Scan(&c.ID, &c.ContentType, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
