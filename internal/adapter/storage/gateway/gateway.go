package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"personal-ledger/internal/core/domain"
	"personal-ledger/internal/core/ports"
)

// Blob keys, relative to the configured prefix.
const (
	KeyAccounts     = "accounts"
	KeyTransactions = "transactions"
	KeyUnlockedFlag = "screen-lock-unlocked"
)

// DefaultTimeout bounds each blob operation when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// Gateway persists the ledger collections and the screen-lock flag as JSON
// blobs. It implements ports.LedgerStore and ports.FlagStore.
type Gateway struct {
	blobs   ports.BlobStore
	prefix  string
	timeout time.Duration
}

// New wraps a blob store. A non-positive timeout falls back to DefaultTimeout.
func New(blobs ports.BlobStore, prefix string, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{blobs: blobs, prefix: prefix, timeout: timeout}
}

// Key returns the fully prefixed blob key for name.
func (g *Gateway) Key(name string) string {
	return g.prefix + name
}

func (g *Gateway) LoadAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts := []domain.Account{}
	if err := g.load(ctx, KeyAccounts, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (g *Gateway) SaveAccounts(ctx context.Context, accounts []domain.Account) error {
	return g.save(ctx, KeyAccounts, nonNilAccounts(accounts))
}

func (g *Gateway) LoadTransactions(ctx context.Context) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}
	if err := g.load(ctx, KeyTransactions, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

func (g *Gateway) SaveTransactions(ctx context.Context, transactions []domain.Transaction) error {
	return g.save(ctx, KeyTransactions, nonNilTransactions(transactions))
}

// SaveLedger encodes both collections before writing either, then hands
// them to the blob store in one SetMany call.
func (g *Gateway) SaveLedger(ctx context.Context, accounts []domain.Account, transactions []domain.Transaction) error {
	accountsBlob, err := json.Marshal(nonNilAccounts(accounts))
	if err != nil {
		return fmt.Errorf("encoding %s: %w", KeyAccounts, err)
	}
	transactionsBlob, err := json.Marshal(nonNilTransactions(transactions))
	if err != nil {
		return fmt.Errorf("encoding %s: %w", KeyTransactions, err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	err = g.blobs.SetMany(ctx, map[string][]byte{
		g.Key(KeyAccounts):     accountsBlob,
		g.Key(KeyTransactions): transactionsBlob,
	})
	if err != nil {
		return fmt.Errorf("saving ledger: %w", err)
	}
	return nil
}

// Clear removes both ledger collections. The screen-lock flag is left alone.
func (g *Gateway) Clear(ctx context.Context) error {
	for _, name := range []string{KeyAccounts, KeyTransactions} {
		if err := g.delete(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// LoadFlag reports the persisted unlocked flag, false when absent.
func (g *Gateway) LoadFlag(ctx context.Context) (bool, error) {
	var unlocked bool
	if err := g.load(ctx, KeyUnlockedFlag, &unlocked); err != nil {
		return false, err
	}
	return unlocked, nil
}

func (g *Gateway) SaveFlag(ctx context.Context, value bool) error {
	return g.save(ctx, KeyUnlockedFlag, value)
}

func (g *Gateway) ClearFlag(ctx context.Context) error {
	return g.delete(ctx, KeyUnlockedFlag)
}

// load decodes the blob under name into dst. An absent key leaves dst untouched.
func (g *Gateway) load(ctx context.Context, name string, dst any) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	data, err := g.blobs.Get(ctx, g.Key(name))
	if err != nil {
		return fmt.Errorf("loading %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}

func (g *Gateway) save(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.blobs.Set(ctx, g.Key(name), data); err != nil {
		return fmt.Errorf("saving %s: %w", name, err)
	}
	return nil
}

func (g *Gateway) delete(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.blobs.Delete(ctx, g.Key(name)); err != nil {
		return fmt.Errorf("clearing %s: %w", name, err)
	}
	return nil
}

func nonNilAccounts(a []domain.Account) []domain.Account {
	if a == nil {
		return []domain.Account{}
	}
	return a
}

func nonNilTransactions(t []domain.Transaction) []domain.Transaction {
	if t == nil {
		return []domain.Transaction{}
	}
	return t
}
