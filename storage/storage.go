// Package storage holds the artifact-store collaborator used to publish
// conversion by-products (e.g. preview PDFs) for downstream consumers.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// Store publishes a byte artifact and returns a locator for it. An empty
// locator or an error both mean the publish failed; callers treat that as
// non-fatal.
type Store interface {
	Store(ctx context.Context, data []byte, suffix string) (string, error)
}

// LocalStore writes artifacts into a base directory, naming them by content
// hash so repeated publishes of the same bytes are idempotent.
type LocalStore struct {
	BaseDir string
}

func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact directory: %w", err)
	}
	return &LocalStore{BaseDir: baseDir}, nil
}

func (s *LocalStore) Store(ctx context.Context, data []byte, suffix string) (string, error) {
	sum := sha256.Sum256(data)
	name := hex.EncodeToString(sum[:16]) + suffix
	path := filepath.Join(s.BaseDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	return path, nil
}

// NopStore never publishes anything. Used when no artifact store is
// configured.
type NopStore struct{}

func (NopStore) Store(ctx context.Context, data []byte, suffix string) (string, error) {
	return "", nil
}
