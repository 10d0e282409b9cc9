// Package store caches extraction results in SQLite, keyed by the SHA-256
// of the source bytes. Extraction is deterministic, so a hash hit can skip
// the (possibly expensive) re-extraction entirely.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrClosed is returned when operating on a closed store.
var ErrClosed = errors.New("store: cache is closed")

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	content_hash TEXT PRIMARY KEY,
	file_name    TEXT NOT NULL DEFAULT '',
	format       TEXT NOT NULL DEFAULT '',
	content      TEXT NOT NULL DEFAULT '',
	metadata     TEXT NOT NULL DEFAULT '{}',
	extracted_at TEXT NOT NULL
);
`

// CachedDocument is one cached extraction result.
type CachedDocument struct {
	ContentHash string
	FileName    string
	Format      string
	Content     string
	Metadata    map[string]string
	ExtractedAt time.Time
}

// Store is a SQLite-backed extraction cache, safe for concurrent use.
// Readers and writers hold the lock shared; Close takes it exclusively so
// no query can race the database handle shutting down.
type Store struct {
	db *sql.DB

	mu     sync.RWMutex
	closed bool
}

// Open creates or opens the cache database at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Hash returns the cache key for a source byte stream.
func Hash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached result for a content hash, or nil on a miss.
func (s *Store) Get(ctx context.Context, hash string) (*CachedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT content_hash, file_name, format, content, metadata, extracted_at
		 FROM documents WHERE content_hash = ?`, hash)

	var doc CachedDocument
	var metaJSON, extractedAt string
	err := row.Scan(&doc.ContentHash, &doc.FileName, &doc.Format, &doc.Content, &metaJSON, &extractedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache row: %w", err)
	}

	if err := json.Unmarshal([]byte(metaJSON), &doc.Metadata); err != nil {
		return nil, fmt.Errorf("decoding cached metadata: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, extractedAt); err == nil {
		doc.ExtractedAt = t
	}
	return &doc, nil
}

// Put stores an extraction result, replacing any previous entry for the
// same content hash.
func (s *Store) Put(ctx context.Context, doc CachedDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	meta := doc.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	at := doc.ExtractedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents
		 (content_hash, file_name, format, content, metadata, extracted_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ContentHash, doc.FileName, doc.Format, doc.Content, string(metaJSON), at.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("writing cache row: %w", err)
	}
	return nil
}

// Close shuts down the cache.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
