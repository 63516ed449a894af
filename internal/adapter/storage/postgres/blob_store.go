package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
)

const upsertBlobSQL = `INSERT INTO ledger_blobs (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

// BlobStore implements ports.BlobStore on the ledger_blobs table.
type BlobStore struct {
	pool       Pool
	transactor *Transactor
}

// NewBlobStore creates a new BlobStore.
func NewBlobStore(pool Pool) *BlobStore {
	return &BlobStore{pool: pool, transactor: NewTransactor(pool)}
}

// Get fetches the blob stored under key. Returns nil, nil if no row exists.
func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM ledger_blobs WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get blob %s: %w", key, err)
	}
	return value, nil
}

// Set upserts a single blob.
func (s *BlobStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.pool.Exec(ctx, upsertBlobSQL, key, value); err != nil {
		return fmt.Errorf("upsert blob %s: %w", key, err)
	}
	return nil
}

// SetMany upserts every entry in one transaction, in key order.
func (s *BlobStore) SetMany(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return s.transactor.WithinTx(ctx, func(tx pgx.Tx) error {
		for _, k := range keys {
			if _, err := tx.Exec(ctx, upsertBlobSQL, k, entries[k]); err != nil {
				return fmt.Errorf("upsert blob %s: %w", k, err)
			}
		}
		return nil
	})
}

// Delete removes the row for key, if any.
func (s *BlobStore) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM ledger_blobs WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}
