package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// BlobStore implements ports.BlobStore with one file per key under a
// directory. Writes go to a temp file first and are renamed into place, so a
// crash mid-write leaves the previous value intact.
type BlobStore struct {
	dir string
	mu  sync.Mutex
}

// NewBlobStore creates the directory if needed and returns a store rooted there.
func NewBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating storage dir %s: %w", dir, err)
	}
	return &BlobStore{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (s *BlobStore) Dir() string {
	return s.dir
}

func (s *BlobStore) path(key string) string {
	return filepath.Join(s.dir, url.QueryEscape(key)+".blob")
}

// Get reads the blob for key, or nil, nil if no file exists.
func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading blob %s: %w", key, err)
	}
	return data, nil
}

// Set atomically replaces the blob for key.
func (s *BlobStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(key, value)
}

// SetMany replaces each blob atomically. The set as a whole is not atomic:
// a failure part way leaves earlier keys written.
func (s *BlobStore) SetMany(ctx context.Context, entries map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range entries {
		if err := s.write(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the blob file. A missing file is not an error.
func (s *BlobStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting blob %s: %w", key, err)
	}
	return nil
}

func (s *BlobStore) write(key string, value []byte) error {
	target := s.path(key)
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing blob %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing blob %s: %w", key, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing blob %s: %w", key, err)
	}
	return nil
}
