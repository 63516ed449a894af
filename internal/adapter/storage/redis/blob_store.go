package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// BlobStore implements ports.BlobStore on plain Redis strings.
type BlobStore struct {
	client goredis.UniversalClient
}

// NewBlobStore creates a Redis-backed blob store.
func NewBlobStore(client goredis.UniversalClient) *BlobStore {
	return &BlobStore{client: client}
}

// Get returns the blob stored under key, or nil, nil if the key does not exist.
func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis blob get %s: %w", key, err)
	}
	return val, nil
}

// Set stores value under key without expiry.
func (s *BlobStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis blob set %s: %w", key, err)
	}
	return nil
}

// SetMany writes every entry inside one MULTI/EXEC block.
func (s *BlobStore) SetMany(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for key, value := range entries {
			pipe.Set(ctx, key, value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis blob set many: %w", err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *BlobStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis blob delete %s: %w", key, err)
	}
	return nil
}
