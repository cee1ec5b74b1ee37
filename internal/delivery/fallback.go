package delivery

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// FallbackStore keeps snapshots that could not be delivered so a later run
// can replay them. Each payload is keyed by its capture time.
type FallbackStore struct {
	db *sql.DB
}

// StoredSubmission is one captured payload awaiting replay.
type StoredSubmission struct {
	Key     string
	Payload []byte
	SavedAt time.Time
}

// OpenFallbackStore opens (creating if needed) the store at path.
func OpenFallbackStore(path string) (*FallbackStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open fallback store %s: %w", path, err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS failed_submissions (
	key      TEXT PRIMARY KEY,
	payload  BLOB NOT NULL,
	saved_at TEXT NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate fallback store: %w", err)
	}
	return &FallbackStore{db: db}, nil
}

// Save captures a payload under a key derived from at.
func (s *FallbackStore) Save(at time.Time, payload []byte) error {
	key := fmt.Sprintf("leadData_%d", at.UnixNano())
	_, err := s.db.Exec(
		`INSERT INTO failed_submissions (key, payload, saved_at) VALUES (?, ?, ?)`,
		key, payload, at.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save failed submission: %w", err)
	}
	return nil
}

// Pending returns all captured payloads in capture order.
func (s *FallbackStore) Pending() ([]StoredSubmission, error) {
	rows, err := s.db.Query(
		`SELECT key, payload, saved_at FROM failed_submissions ORDER BY saved_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("list failed submissions: %w", err)
	}
	defer rows.Close()

	var pending []StoredSubmission
	for rows.Next() {
		var sub StoredSubmission
		var savedAt string
		if err := rows.Scan(&sub.Key, &sub.Payload, &savedAt); err != nil {
			return nil, fmt.Errorf("scan failed submission: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, savedAt); err == nil {
			sub.SavedAt = ts
		}
		pending = append(pending, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failed submissions: %w", err)
	}
	return pending, nil
}

// Delete removes a replayed payload.
func (s *FallbackStore) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM failed_submissions WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete failed submission %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying database.
func (s *FallbackStore) Close() error {
	return s.db.Close()
}
