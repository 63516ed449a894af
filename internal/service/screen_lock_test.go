package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"personal-ledger/internal/adapter/storage/gateway"
	"personal-ledger/internal/adapter/storage/memory"
	"personal-ledger/internal/core/ports/mocks"
	"personal-ledger/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newLockOnMemory(t *testing.T) (*ScreenLock, *gateway.Gateway) {
	t.Helper()
	flags := gateway.New(memory.NewBlobStore(), "ledger:", time.Second)
	lock, err := NewScreenLock(flags, DefaultPasscode, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, lock.Init(context.Background()))
	return lock, flags
}

func TestScreenLock_DefaultsToLocked(t *testing.T) {
	lock, _ := newLockOnMemory(t)
	assert.False(t, lock.IsUnlocked())
}

func TestScreenLock_VerifyCorrectCode(t *testing.T) {
	lock, flags := newLockOnMemory(t)
	ctx := context.Background()

	ok, err := lock.Verify(ctx, "7788")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, lock.IsUnlocked())

	persisted, err := flags.LoadFlag(ctx)
	require.NoError(t, err)
	assert.True(t, persisted)
}

func TestScreenLock_VerifyWrongCodeWritesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	flags := mocks.NewMockFlagStore(ctrl)
	flags.EXPECT().LoadFlag(gomock.Any()).Return(false, nil)
	// No SaveFlag expected

	lock, err := NewScreenLock(flags, "7788", zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, lock.Init(context.Background()))

	for _, code := range []string{"", "0000", "77888", "7788 "} {
		ok, err := lock.Verify(context.Background(), code)
		require.NoError(t, err)
		assert.False(t, ok, "code %q", code)
	}
	assert.False(t, lock.IsUnlocked())
}

func TestScreenLock_StateSurvivesRestart(t *testing.T) {
	lock, flags := newLockOnMemory(t)
	ctx := context.Background()

	_, err := lock.Verify(ctx, "7788")
	require.NoError(t, err)

	restarted, err := NewScreenLock(flags, "7788", zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, restarted.Init(ctx))
	assert.True(t, restarted.IsUnlocked())

	require.NoError(t, restarted.Lock(ctx))
	assert.False(t, restarted.IsUnlocked())

	again, err := NewScreenLock(flags, "7788", zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, again.Init(ctx))
	assert.False(t, again.IsUnlocked())
}

func TestScreenLock_CustomPasscode(t *testing.T) {
	flags := gateway.New(memory.NewBlobStore(), "", time.Second)
	lock, err := NewScreenLock(flags, "2468", zerolog.Nop())
	require.NoError(t, err)

	ok, err := lock.Verify(context.Background(), "7788")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = lock.Verify(context.Background(), "2468")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewScreenLock_BlankPasscode(t *testing.T) {
	_, err := NewScreenLock(nil, "   ", zerolog.Nop())
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestScreenLock_SaveFailureStaysLocked(t *testing.T) {
	ctrl := gomock.NewController(t)
	flags := mocks.NewMockFlagStore(ctrl)
	flags.EXPECT().SaveFlag(gomock.Any(), true).Return(errors.New("redis down"))

	lock, err := NewScreenLock(flags, "7788", zerolog.Nop())
	require.NoError(t, err)

	ok, err := lock.Verify(context.Background(), "7788")
	require.Error(t, err)
	assert.False(t, ok)
	assert.False(t, lock.IsUnlocked())
	assert.Equal(t, "SYS_002", appCode(err))
}

func TestScreenLock_LockLocksEvenIfClearFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	flags := mocks.NewMockFlagStore(ctrl)
	flags.EXPECT().LoadFlag(gomock.Any()).Return(true, nil)
	flags.EXPECT().ClearFlag(gomock.Any()).Return(errors.New("redis down"))

	lock, err := NewScreenLock(flags, "7788", zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, lock.Init(context.Background()))
	require.True(t, lock.IsUnlocked())

	assert.Error(t, lock.Lock(context.Background()))
	assert.False(t, lock.IsUnlocked())
}

func TestScreenLock_InitError(t *testing.T) {
	ctrl := gomock.NewController(t)
	flags := mocks.NewMockFlagStore(ctrl)
	flags.EXPECT().LoadFlag(gomock.Any()).Return(false, errors.New("timeout"))

	lock, err := NewScreenLock(flags, "7788", zerolog.Nop())
	require.NoError(t, err)

	err = lock.Init(context.Background())
	require.Error(t, err)
	assert.False(t, lock.IsUnlocked())
}
