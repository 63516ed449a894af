package sealed

import (
	"context"
	"errors"
	"testing"

	"personal-ledger/internal/adapter/storage/memory"
	"personal-ledger/internal/core/ports/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// Valid 32-byte key in hex (64 chars)
const testAESKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func newTestStore(t *testing.T) (*memory.BlobStore, *BlobStore) {
	t.Helper()
	inner := memory.NewBlobStore()
	s, err := NewBlobStore(inner, testAESKey)
	require.NoError(t, err)
	return inner, s
}

func TestNewBlobStore_InvalidKey(t *testing.T) {
	for _, key := range []string{"shortkey", "zz", "0123456789abcdef"} {
		_, err := NewBlobStore(memory.NewBlobStore(), key)
		assert.Error(t, err, key)
	}
}

func TestBlobStore_RoundTrip(t *testing.T) {
	inner, s := newTestStore(t)
	ctx := context.Background()

	plaintext := []byte(`[{"name":"Sparkonto","balance":"100"}]`)
	require.NoError(t, s.Set(ctx, "ledger:accounts", plaintext))

	raw, err := inner.Get(ctx, "ledger:accounts")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Sparkonto")

	got, err := s.Get(ctx, "ledger:accounts")
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestBlobStore_MissingKey(t *testing.T) {
	_, s := newTestStore(t)

	got, err := s.Get(context.Background(), "ledger:nothing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBlobStore_DifferentNonces(t *testing.T) {
	inner, s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetMany(ctx, map[string][]byte{"a": []byte("same"), "b": []byte("same")}))
	ra, _ := inner.Get(ctx, "a")
	rb, _ := inner.Get(ctx, "b")
	assert.NotEqual(t, ra, rb)

	ga, err := s.Get(ctx, "a")
	require.NoError(t, err)
	gb, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, ga, gb)
}

func TestBlobStore_BlobBoundToKey(t *testing.T) {
	inner, s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "ledger:accounts", []byte("secret")))
	raw, _ := inner.Get(ctx, "ledger:accounts")
	require.NoError(t, inner.Set(ctx, "ledger:transactions", raw))

	_, err := s.Get(ctx, "ledger:transactions")
	assert.Error(t, err)
}

func TestBlobStore_TamperedCiphertext(t *testing.T) {
	inner, s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("value")))
	raw, _ := inner.Get(ctx, "k")
	raw[len(raw)-1] ^= 0xff
	require.NoError(t, inner.Set(ctx, "k", raw))

	_, err := s.Get(ctx, "k")
	assert.Error(t, err)

	require.NoError(t, inner.Set(ctx, "k", []byte("tiny")))
	_, err = s.Get(ctx, "k")
	assert.ErrorContains(t, err, "too short")
}

func TestBlobStore_PropagatesInnerErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	inner := mocks.NewMockBlobStore(ctrl)
	s, err := NewBlobStore(inner, testAESKey)
	require.NoError(t, err)

	boom := errors.New("redis down")
	inner.EXPECT().Get(gomock.Any(), "k").Return(nil, boom)
	inner.EXPECT().Delete(gomock.Any(), "k").Return(boom)

	_, err = s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, s.Delete(context.Background(), "k"), boom)
}
