package testsupport

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// SeedSong is one catalog row for test fixtures.
type SeedSong struct {
	ID     string
	Artist string
	Title  string
	Year   int
}

// SeedCatalog creates a catalog database at path with the given songs.
func SeedCatalog(t testing.TB, path string, songs []SeedSong) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS songs (
		id TEXT PRIMARY KEY,
		artist TEXT NOT NULL,
		title TEXT NOT NULL,
		year INTEGER
	)`)
	if err != nil {
		t.Fatalf("create songs table: %v", err)
	}
	for _, song := range songs {
		_, err := db.Exec(`INSERT INTO songs (id, artist, title, year) VALUES (?, ?, ?, ?)`,
			song.ID, song.Artist, song.Title, song.Year)
		if err != nil {
			t.Fatalf("insert song %s: %v", song.ID, err)
		}
	}
}

// SwingEraSongs returns a small fixed library for pipeline tests.
func SwingEraSongs() []SeedSong {
	return []SeedSong{
		{ID: "1", Artist: "Cass Daley", Title: "A Good Man Is Hard to Find", Year: 1943},
		{ID: "2", Artist: "Glenn Miller", Title: "In the Mood", Year: 1939},
		{ID: "3", Artist: "The Andrews Sisters", Title: "Rum and Coca-Cola", Year: 1945},
	}
}
