package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"
	"time"

	"personal-ledger/internal/core/domain"
)

// BlobStore is a key-value store of opaque blobs. Get returns nil, nil for
// an absent key.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetMany writes all entries together, atomically where the backend allows it.
	SetMany(ctx context.Context, entries map[string][]byte) error
	Delete(ctx context.Context, key string) error
}

// LedgerStore persists the account and transaction collections wholesale.
// Loads return empty collections when nothing is stored yet.
type LedgerStore interface {
	LoadAccounts(ctx context.Context) ([]domain.Account, error)
	SaveAccounts(ctx context.Context, accounts []domain.Account) error
	LoadTransactions(ctx context.Context) ([]domain.Transaction, error)
	SaveTransactions(ctx context.Context, transactions []domain.Transaction) error
	// SaveLedger writes both collections in one call.
	SaveLedger(ctx context.Context, accounts []domain.Account, transactions []domain.Transaction) error
	Clear(ctx context.Context) error
}

// FlagStore persists the screen-lock unlocked flag.
type FlagStore interface {
	LoadFlag(ctx context.Context) (bool, error)
	SaveFlag(ctx context.Context, value bool) error
	ClearFlag(ctx context.Context) error
}

// EventPublisher forwards interest notifications to an outbound channel.
type EventPublisher interface {
	PublishInterestApplied(ctx context.Context, event domain.InterestApplied) error
}

// RateLimitResult holds the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // Unix timestamp
}

// RateLimiter counts hits per key in fixed windows.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
}
