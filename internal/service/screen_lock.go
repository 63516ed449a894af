package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"personal-ledger/internal/core/ports"
	"personal-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// DefaultPasscode unlocks the ledger when no passcode is configured.
const DefaultPasscode = "7788"

var _ ports.ScreenLock = (*ScreenLock)(nil)

// ScreenLock gates the ledger behind a passcode. The unlocked state survives
// restarts through a persisted flag.
type ScreenLock struct {
	flags  ports.FlagStore
	hasher *PasscodeHasher
	hash   string
	log    zerolog.Logger

	mu       sync.RWMutex
	unlocked bool
}

// NewScreenLock hashes passcode and returns a locked screen lock.
// Call Init to restore the persisted state.
func NewScreenLock(flags ports.FlagStore, passcode string, log zerolog.Logger) (*ScreenLock, error) {
	if strings.TrimSpace(passcode) == "" {
		return nil, apperror.Validation("Passcode must not be blank")
	}

	hasher := NewPasscodeHasher()
	hash, err := hasher.Hash(passcode)
	if err != nil {
		return nil, fmt.Errorf("hashing passcode: %w", err)
	}

	return &ScreenLock{flags: flags, hasher: hasher, hash: hash, log: log}, nil
}

// Init loads the persisted flag. An absent flag means locked.
func (l *ScreenLock) Init(ctx context.Context) error {
	unlocked, err := l.flags.LoadFlag(ctx)
	if err != nil {
		return apperror.ErrStorage(fmt.Errorf("load screen-lock flag: %w", err))
	}

	l.mu.Lock()
	l.unlocked = unlocked
	l.mu.Unlock()

	l.log.Info().Bool("unlocked", unlocked).Msg("screen lock initialized")
	return nil
}

// IsUnlocked reports the current state.
func (l *ScreenLock) IsUnlocked() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.unlocked
}

// Verify unlocks when code matches the passcode and persists the flag.
// A wrong code returns false and writes nothing.
func (l *ScreenLock) Verify(ctx context.Context, code string) (bool, error) {
	match, err := l.hasher.Verify(code, l.hash)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("verify passcode: %w", err))
	}
	if !match {
		l.log.Warn().Msg("screen lock: wrong passcode")
		return false, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.flags.SaveFlag(ctx, true); err != nil {
		return false, apperror.ErrStorage(fmt.Errorf("save screen-lock flag: %w", err))
	}
	l.unlocked = true

	l.log.Info().Msg("screen lock: unlocked")
	return true, nil
}

// Lock locks immediately and clears the persisted flag.
func (l *ScreenLock) Lock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.unlocked = false
	if err := l.flags.ClearFlag(ctx); err != nil {
		return apperror.ErrStorage(fmt.Errorf("clear screen-lock flag: %w", err))
	}

	l.log.Info().Msg("screen lock: locked")
	return nil
}
