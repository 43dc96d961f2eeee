package history

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

// Record inserts or replaces a deck row.
func (db *DB) Record(d models.Deck) error {
	_, err := db.conn.Exec(`
		INSERT INTO decks (filename, title, provider, slide_count, checksum, size_bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(filename) DO UPDATE SET
			title       = excluded.title,
			provider    = excluded.provider,
			slide_count = excluded.slide_count,
			checksum    = excluded.checksum,
			size_bytes  = excluded.size_bytes,
			created_at  = excluded.created_at
	`, d.Filename, d.Title, d.Provider, d.SlideCount, d.Checksum, d.SizeBytes, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("history: record deck: %w", err)
	}
	return nil
}

// Get returns one deck row by filename.
func (db *DB) Get(filename string) (*models.Deck, error) {
	row := db.conn.QueryRow(`
		SELECT filename, title, provider, slide_count, checksum, size_bytes, created_at
		FROM decks WHERE filename = ?`, filename)

	var d models.Deck
	err := row.Scan(&d.Filename, &d.Title, &d.Provider, &d.SlideCount, &d.Checksum, &d.SizeBytes, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("history: get deck: %w", err)
	}
	return &d, nil
}

// List returns deck rows newest first, with the total row count.
func (db *DB) List(limit, offset int) ([]models.Deck, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM decks`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("history: count: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT filename, title, provider, slide_count, checksum, size_bytes, created_at
		FROM decks ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var out []models.Deck
	for rows.Next() {
		var d models.Deck
		if err := rows.Scan(&d.Filename, &d.Title, &d.Provider, &d.SlideCount, &d.Checksum, &d.SizeBytes, &d.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

// Delete removes a deck row. Deleting an absent row is not an error.
func (db *DB) Delete(filename string) error {
	if _, err := db.conn.Exec(`DELETE FROM decks WHERE filename = ?`, filename); err != nil {
		return fmt.Errorf("history: delete: %w", err)
	}
	return nil
}

// AllFilenames returns every recorded deck filename.
func (db *DB) AllFilenames() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT filename FROM decks`)
	if err != nil {
		return nil, fmt.Errorf("history: all filenames: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, err
		}
		out[f] = struct{}{}
	}
	return out, rows.Err()
}
