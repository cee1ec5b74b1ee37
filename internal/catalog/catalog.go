// Package catalog resolves educational document titles to downloadable
// URLs from a local SQLite table.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no document matches the requested title.
var ErrNotFound = errors.New("document not found")

// Catalog is a read-mostly store of education documents.
type Catalog struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the catalog at path. logger may be nil.
func Open(path string, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS education_documents (
	title TEXT PRIMARY KEY,
	url   TEXT NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate catalog: %w", err)
	}
	return &Catalog{db: db, logger: logger}, nil
}

// LookupDocumentURL resolves a title to its download URL. Returns
// ErrNotFound on a miss.
func (c *Catalog) LookupDocumentURL(title string) (string, error) {
	var url string
	err := c.db.QueryRow(
		`SELECT url FROM education_documents WHERE title = ?`, title,
	).Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup document %q: %w", title, err)
	}
	return url, nil
}

// AddDocument inserts or replaces a document entry.
func (c *Catalog) AddDocument(title, url string) error {
	_, err := c.db.Exec(
		`INSERT INTO education_documents (title, url) VALUES (?, ?)
		 ON CONFLICT(title) DO UPDATE SET url = excluded.url`,
		title, url,
	)
	if err != nil {
		return fmt.Errorf("add document %q: %w", title, err)
	}
	return nil
}

// Close releases the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}
