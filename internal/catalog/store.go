// Package catalog reads the station's song library from SQLite and
// expands the broadcast schedule into concrete work items.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"aircheck/internal/services"
)

// Song is one row of the station library.
type Song struct {
	ID     string
	Artist string
	Title  string
	Year   int
}

// Store reads songs from the catalog database. The catalog is an
// input, never written by the pipeline, so the connection is opened
// read-only.
type Store struct {
	db *sql.DB
}

// Open connects to the catalog at path. A missing file is a
// configuration error rather than an empty library; silently
// generating zero items would look like success.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "open",
			fmt.Sprintf("catalog database not found at %s", path), err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "open", "opening catalog database", err)
	}
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Songs returns the library ordered by numeric id. A limit of 0 means
// no limit.
func (s *Store) Songs(ctx context.Context, limit int) ([]Song, error) {
	query := `SELECT id, artist, title, COALESCE(year, 0) FROM songs ORDER BY CAST(id AS INTEGER), id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying songs: %w", err)
	}
	defer rows.Close()

	var songs []Song
	for rows.Next() {
		var song Song
		if err := rows.Scan(&song.ID, &song.Artist, &song.Title, &song.Year); err != nil {
			return nil, fmt.Errorf("scanning song row: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating songs: %w", err)
	}
	return songs, nil
}

// Count returns the number of songs in the library.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM songs`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting songs: %w", err)
	}
	return count, nil
}
