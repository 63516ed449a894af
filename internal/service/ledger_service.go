package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"personal-ledger/internal/core/domain"
	"personal-ledger/internal/core/ports"
	"personal-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultSavingsRatePercent is the annual rate used when none is configured.
var DefaultSavingsRatePercent = decimal.RequireFromString("2.5")

var _ ports.LedgerService = (*LedgerService)(nil)

// LedgerService implements ports.LedgerService over an in-memory copy of the
// ledger that is kept in step with a ports.LedgerStore. Every operation holds
// mu for its whole validate, mutate and persist sequence. Mutations are built
// on copies and only replace the in-memory collections after the store
// accepted them.
type LedgerService struct {
	store    ports.LedgerStore
	notifier ports.InterestNotifier
	rate     decimal.Decimal
	clock    func() time.Time
	log      zerolog.Logger

	mu           sync.Mutex
	accounts     []domain.Account
	transactions []domain.Transaction // oldest first
	lastStamp    time.Time
}

// Option configures a LedgerService.
type Option func(*LedgerService)

// WithClock replaces time.Now as the source of timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *LedgerService) { s.clock = clock }
}

// WithSavingsRate sets the annual interest rate, in percent, for savings accounts.
func WithSavingsRate(ratePercent decimal.Decimal) Option {
	return func(s *LedgerService) { s.rate = ratePercent }
}

// WithNotifier sets where interest events are published.
func WithNotifier(n ports.InterestNotifier) Option {
	return func(s *LedgerService) { s.notifier = n }
}

// WithLogger sets the service logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *LedgerService) { s.log = log }
}

// OpenLedger loads both collections from store and returns a ready service.
func OpenLedger(ctx context.Context, store ports.LedgerStore, opts ...Option) (*LedgerService, error) {
	s := &LedgerService{
		store: store,
		rate:  DefaultSavingsRatePercent,
		clock: time.Now,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload discards the in-memory ledger and reads it again from the store.
// The lock is held across the read so no commit lands between load and assign.
func (s *LedgerService) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.store.LoadAccounts(ctx)
	if err != nil {
		return apperror.ErrStorage(fmt.Errorf("load accounts: %w", err))
	}
	transactions, err := s.store.LoadTransactions(ctx)
	if err != nil {
		return apperror.ErrStorage(fmt.Errorf("load transactions: %w", err))
	}

	s.accounts = accounts
	s.transactions = transactions
	s.bumpStamp(accounts, transactions)

	s.log.Info().
		Int("accounts", len(accounts)).
		Int("transactions", len(transactions)).
		Msg("ledger loaded")
	return nil
}

// CreateAccount opens an account and records its opening balance.
func (s *LedgerService) CreateAccount(ctx context.Context, req ports.CreateAccountRequest) (*domain.Account, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperror.Validation("Account name is required")
	}
	if strings.TrimSpace(req.Currency) == "" {
		return nil, apperror.Validation("Currency is required")
	}
	if !req.AccountType.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("Unknown account type %q", req.AccountType))
	}
	if req.InitialBalance.IsNegative() {
		return nil, apperror.Validation("Initial balance must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	at := s.now()
	account := domain.NewAccount(req.Name, req.AccountType, req.Currency, req.InitialBalance, at)
	opening := domain.NewTransaction(account.ID, domain.TransactionTypeDeposit,
		req.InitialBalance, req.InitialBalance, nil, domain.OptionalNote(domain.NoteOpeningBalance), at)

	accounts := append(cloneAccounts(s.accounts), *account)
	transactions := appendTransactions(s.transactions, *opening)
	if err := s.commit(ctx, accounts, transactions); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("account_id", account.ID.String()).
		Str("account_type", string(account.AccountType)).
		Str("currency", account.Currency).
		Str("initial_balance", account.Balance.String()).
		Msg("account created")

	return account.Clone(), nil
}

// ListAccounts returns a copy of every account in creation order.
func (s *LedgerService) ListAccounts(_ context.Context) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAccounts(s.accounts), nil
}

// GetAccount returns a copy of one account.
func (s *LedgerService) GetAccount(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(s.accounts, id)
	if i < 0 {
		return nil, apperror.ErrNotFound("Account")
	}
	return s.accounts[i].Clone(), nil
}

// DeleteAccount removes an account and all of its transactions.
// Deleting an unknown account is a no-op.
func (s *LedgerService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(s.accounts, id) < 0 {
		return nil
	}

	accounts := make([]domain.Account, 0, len(s.accounts)-1)
	for _, a := range s.accounts {
		if a.ID != id {
			accounts = append(accounts, *a.Clone())
		}
	}
	transactions := make([]domain.Transaction, 0, len(s.transactions))
	removed := 0
	for _, t := range s.transactions {
		if t.AccountID == id {
			removed++
			continue
		}
		transactions = append(transactions, t)
	}

	if err := s.commit(ctx, accounts, transactions); err != nil {
		return err
	}

	s.log.Info().
		Str("account_id", id.String()).
		Int("transactions_removed", removed).
		Msg("account deleted")
	return nil
}

// Deposit credits an account.
func (s *LedgerService) Deposit(ctx context.Context, req ports.MovementRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := cloneAccounts(s.accounts)
	i := s.indexOf(accounts, req.AccountID)
	if i < 0 {
		return nil, apperror.ErrNotFound("Account")
	}

	txn := s.credit(&accounts[i], req.Amount, domain.OptionalNote(req.Note), s.now())
	if err := s.commit(ctx, accounts, appendTransactions(s.transactions, *txn)); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("account_id", req.AccountID.String()).
		Str("amount", req.Amount.String()).
		Str("balance", txn.BalanceAfter.String()).
		Msg("deposit recorded")
	return txn.Clone(), nil
}

// Withdraw debits an account. The balance never goes below zero.
func (s *LedgerService) Withdraw(ctx context.Context, req ports.MovementRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := cloneAccounts(s.accounts)
	i := s.indexOf(accounts, req.AccountID)
	if i < 0 {
		return nil, apperror.ErrNotFound("Account")
	}
	if !accounts[i].CanDebit(req.Amount) {
		return nil, apperror.ErrInsufficientFunds()
	}

	at := s.now()
	accounts[i].Debit(req.Amount, at)
	txn := domain.NewTransaction(accounts[i].ID, domain.TransactionTypeWithdrawal,
		req.Amount, accounts[i].Balance, nil, domain.OptionalNote(req.Note), at)

	if err := s.commit(ctx, accounts, appendTransactions(s.transactions, *txn)); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("account_id", req.AccountID.String()).
		Str("amount", req.Amount.String()).
		Str("balance", txn.BalanceAfter.String()).
		Msg("withdrawal recorded")
	return txn.Clone(), nil
}

// Transfer moves money between two accounts. Both legs share one timestamp
// and are persisted in a single save; on failure nothing changes.
func (s *LedgerService) Transfer(ctx context.Context, req ports.TransferRequest) (*ports.TransferResult, error) {
	if req.FromAccountID == req.ToAccountID {
		return nil, apperror.ErrSameAccount()
	}
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := cloneAccounts(s.accounts)
	from := s.indexOf(accounts, req.FromAccountID)
	if from < 0 {
		return nil, apperror.ErrNotFound("Source account")
	}
	to := s.indexOf(accounts, req.ToAccountID)
	if to < 0 {
		return nil, apperror.ErrNotFound("Destination account")
	}
	if !accounts[from].CanDebit(req.Amount) {
		return nil, apperror.ErrInsufficientFunds()
	}

	at := s.now()
	note := domain.OptionalNote(req.Note)
	toID, fromID := req.ToAccountID, req.FromAccountID

	accounts[from].Debit(req.Amount, at)
	out := domain.NewTransaction(fromID, domain.TransactionTypeTransferOut,
		req.Amount, accounts[from].Balance, &toID, note, at)

	accounts[to].Credit(req.Amount, at)
	in := domain.NewTransaction(toID, domain.TransactionTypeTransferIn,
		req.Amount, accounts[to].Balance, &fromID, note, at)

	if err := s.commit(ctx, accounts, appendTransactions(s.transactions, *out, *in)); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("from_account_id", fromID.String()).
		Str("to_account_id", toID.String()).
		Str("amount", req.Amount.String()).
		Msg("transfer recorded")

	return &ports.TransferResult{Out: *out.Clone(), In: *in.Clone()}, nil
}

// ListTransactions returns transactions newest first, optionally for one
// account. Transactions with equal dates keep their insertion order.
func (s *LedgerService) ListTransactions(_ context.Context, accountID *uuid.UUID) ([]domain.Transaction, error) {
	s.mu.Lock()
	result := make([]domain.Transaction, 0, len(s.transactions))
	for i := range s.transactions {
		if accountID != nil && s.transactions[i].AccountID != *accountID {
			continue
		}
		result = append(result, *s.transactions[i].Clone())
	}
	s.mu.Unlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})
	return result, nil
}

// Summary aggregates account count and balances per currency.
func (s *LedgerService) Summary(_ context.Context) (*ports.LedgerSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := &ports.LedgerSummary{
		Accounts:     len(s.accounts),
		Transactions: len(s.transactions),
		Totals:       make(map[string]decimal.Decimal),
	}
	for _, a := range s.accounts {
		summary.Totals[a.Currency] = summary.Totals[a.Currency].Add(a.Balance)
	}
	return summary, nil
}

// credit adds amount to account and returns the deposit transaction for it.
func (s *LedgerService) credit(account *domain.Account, amount decimal.Decimal, note *string, at time.Time) *domain.Transaction {
	account.Credit(amount, at)
	return domain.NewTransaction(account.ID, domain.TransactionTypeDeposit,
		amount, account.Balance, nil, note, at)
}

// commit persists both collections and, on success, makes them current.
// Callers hold mu.
func (s *LedgerService) commit(ctx context.Context, accounts []domain.Account, transactions []domain.Transaction) error {
	if err := s.store.SaveLedger(ctx, accounts, transactions); err != nil {
		s.log.Error().Err(err).Msg("persisting ledger failed, changes discarded")
		return apperror.ErrStorage(fmt.Errorf("persist ledger: %w", err))
	}
	s.accounts = accounts
	s.transactions = transactions
	return nil
}

// now returns a UTC timestamp strictly after every timestamp handed out
// before. Callers hold mu.
func (s *LedgerService) now() time.Time {
	t := s.clock().UTC()
	if !t.After(s.lastStamp) {
		t = s.lastStamp.Add(time.Microsecond)
	}
	s.lastStamp = t
	return t
}

// bumpStamp moves lastStamp past every timestamp already in the ledger.
func (s *LedgerService) bumpStamp(accounts []domain.Account, transactions []domain.Transaction) {
	for _, a := range accounts {
		if a.LastUpdated.After(s.lastStamp) {
			s.lastStamp = a.LastUpdated
		}
	}
	for _, t := range transactions {
		if t.Date.After(s.lastStamp) {
			s.lastStamp = t.Date
		}
	}
}

func (s *LedgerService) indexOf(accounts []domain.Account, id uuid.UUID) int {
	for i := range accounts {
		if accounts[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAccounts(src []domain.Account) []domain.Account {
	out := make([]domain.Account, len(src))
	for i := range src {
		out[i] = *src[i].Clone()
	}
	return out
}

// appendTransactions returns a new slice; the receiver's backing array is never shared.
func appendTransactions(src []domain.Transaction, added ...domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(src)+len(added))
	out = append(out, src...)
	return append(out, added...)
}
