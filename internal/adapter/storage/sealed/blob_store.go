package sealed

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"personal-ledger/internal/core/ports"
)

// BlobStore encrypts blobs with AES-256-GCM before handing them to the
// wrapped store. Each blob is nonce || ciphertext, and the key name is bound
// as additional data so a blob cannot be moved to another key.
type BlobStore struct {
	inner ports.BlobStore
	aead  cipher.AEAD
}

var _ ports.BlobStore = (*BlobStore)(nil)

// NewBlobStore wraps inner. hexKey must be a 64-character hex string (32 bytes decoded).
func NewBlobStore(inner ports.BlobStore, hexKey string) (*BlobStore, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decoding AES key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("AES key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return &BlobStore{inner: inner, aead: aead}, nil
}

func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil || sealed == nil {
		return nil, err
	}
	return s.open(key, sealed)
}

func (s *BlobStore) Set(ctx context.Context, key string, value []byte) error {
	sealed, err := s.seal(key, value)
	if err != nil {
		return err
	}
	return s.inner.Set(ctx, key, sealed)
}

func (s *BlobStore) SetMany(ctx context.Context, entries map[string][]byte) error {
	sealed := make(map[string][]byte, len(entries))
	for k, v := range entries {
		b, err := s.seal(k, v)
		if err != nil {
			return err
		}
		sealed[k] = b
	}
	return s.inner.SetMany(ctx, sealed)
}

func (s *BlobStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *BlobStore) seal(key string, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, []byte(key)), nil
}

func (s *BlobStore) open(key string, sealed []byte) ([]byte, error) {
	nonceSize := s.aead.NonceSize()
	if len(sealed) < nonceSize {
		return nil, fmt.Errorf("decrypting %s: ciphertext too short", key)
	}
	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("decrypting %s: %w", key, err)
	}
	return plaintext, nil
}
