package database

import (
	"database/sql"
)

// InsertPrice stores a price snapshot.
func (db *DB) InsertPrice(price float64, change24h *float64, currency string) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO prices (price, change_24h, currency) VALUES (?, ?, ?)`,
		price, change24h, currency,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetLatestPrice returns the most recent snapshot, or (nil, nil) when none exists.
func (db *DB) GetLatestPrice() (*PriceSnapshot, error) {
	row := db.conn.QueryRow(
		`SELECT id, price, change_24h, currency, fetched_at
		FROM prices ORDER BY fetched_at DESC, id DESC LIMIT 1`,
	)
	var p PriceSnapshot
	if err := row.Scan(&p.ID, &p.Price, &p.Change24h, &p.Currency, &p.FetchedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
