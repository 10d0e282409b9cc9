package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	in := CachedDocument{
		ContentHash: Hash([]byte("source bytes")),
		FileName:    "notes.eml",
		Format:      "eml",
		Content:     "Subject: Hi\n\nHello",
		Metadata:    map[string]string{"subject": "Hi"},
	}
	if err := s.Put(ctx, in); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, in.ContentHash)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned miss for stored hash")
	}
	if got.Content != in.Content || got.FileName != in.FileName || got.Format != in.Format {
		t.Errorf("got %+v, want fields of %+v", got, in)
	}
	if got.Metadata["subject"] != "Hi" {
		t.Errorf("metadata = %v", got.Metadata)
	}
	if got.ExtractedAt.IsZero() {
		t.Error("ExtractedAt not recorded")
	}
}

func TestGetMiss(t *testing.T) {
	s := openTestStore(t)

	got, err := s.Get(context.Background(), Hash([]byte("never stored")))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("Get = %+v, want nil miss", got)
	}
}

func TestPutReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	hash := Hash([]byte("same source"))

	for _, content := range []string{"first", "second"} {
		if err := s.Put(ctx, CachedDocument{ContentHash: hash, Content: content}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	got, err := s.Get(ctx, hash)
	if err != nil || got == nil {
		t.Fatalf("Get: %v, %v", got, err)
	}
	if got.Content != "second" {
		t.Errorf("content = %q, want latest write", got.Content)
	}
}

func TestPutNilMetadata(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	hash := Hash([]byte("no meta"))

	if err := s.Put(ctx, CachedDocument{ContentHash: hash, Content: "x"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(ctx, hash)
	if err != nil || got == nil {
		t.Fatalf("Get: %v, %v", got, err)
	}
	if got.Metadata == nil {
		t.Error("metadata decoded as nil, want empty map")
	}
}

func TestClosedStore(t *testing.T) {
	s := openTestStore(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	ctx := context.Background()
	if _, err := s.Get(ctx, "h"); err != ErrClosed {
		t.Errorf("Get on closed store = %v, want ErrClosed", err)
	}
	if err := s.Put(ctx, CachedDocument{ContentHash: "h"}); err != ErrClosed {
		t.Errorf("Put on closed store = %v, want ErrClosed", err)
	}
}

func TestConcurrentUseAndClose(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hash := Hash([]byte{byte(i)})
			// ErrClosed is fine once Close lands; a torn read of the
			// closed flag is not.
			if err := s.Put(ctx, CachedDocument{ContentHash: hash, Content: "x"}); err != nil && err != ErrClosed {
				t.Errorf("Put: %v", err)
			}
			if _, err := s.Get(ctx, hash); err != nil && err != ErrClosed {
				t.Errorf("Get: %v", err)
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	}()
	wg.Wait()
}

func TestHashDeterministic(t *testing.T) {
	if Hash([]byte("a")) != Hash([]byte("a")) {
		t.Error("same bytes hash differently")
	}
	if Hash([]byte("a")) == Hash([]byte("b")) {
		t.Error("different bytes hash identically")
	}
	if len(Hash([]byte("a"))) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(Hash([]byte("a"))))
	}
}

func TestExtractedAtPreserved(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	hash := Hash([]byte("dated"))

	if err := s.Put(ctx, CachedDocument{ContentHash: hash, ExtractedAt: at}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(ctx, hash)
	if err != nil || got == nil {
		t.Fatalf("Get: %v, %v", got, err)
	}
	if !got.ExtractedAt.Equal(at) {
		t.Errorf("ExtractedAt = %v, want %v", got.ExtractedAt, at)
	}
}
