package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBlobStore_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := NewBlobStore(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, s.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestBlobStore_RoundTrip(t *testing.T) {
	s, err := NewBlobStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	got, err := s.Get(ctx, "ledger:accounts")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Set(ctx, "ledger:accounts", []byte(`[1]`)))
	require.NoError(t, s.Set(ctx, "ledger:accounts", []byte(`[1,2]`)))

	got, err = s.Get(ctx, "ledger:accounts")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(got))
}

func TestBlobStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s1, err := NewBlobStore(dir)
	require.NoError(t, err)
	require.NoError(t, s1.SetMany(ctx, map[string][]byte{
		"ledger:accounts":     []byte("a"),
		"ledger:transactions": []byte("t"),
	}))

	s2, err := NewBlobStore(dir)
	require.NoError(t, err)
	a, err := s2.Get(ctx, "ledger:accounts")
	require.NoError(t, err)
	assert.Equal(t, "a", string(a))
	tx, err := s2.Get(ctx, "ledger:transactions")
	require.NoError(t, err)
	assert.Equal(t, "t", string(tx))
}

func TestBlobStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s, err := NewBlobStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), "k", []byte("v")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "k.blob", entries[0].Name())
}

func TestBlobStore_Delete(t *testing.T) {
	s, err := NewBlobStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	require.NoError(t, s.Delete(ctx, "k"))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, s.Delete(ctx, "k"))
}

func TestBlobStore_CancelledContext(t *testing.T) {
	s, err := NewBlobStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Set(ctx, "k", []byte("v")), context.Canceled)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}
