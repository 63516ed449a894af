package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"time"

	"personal-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerService defines the account and transaction operations.
type LedgerService interface {
	CreateAccount(ctx context.Context, req CreateAccountRequest) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
	Deposit(ctx context.Context, req MovementRequest) (*domain.Transaction, error)
	Withdraw(ctx context.Context, req MovementRequest) (*domain.Transaction, error)
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
	ListTransactions(ctx context.Context, accountID *uuid.UUID) ([]domain.Transaction, error)
	ApplyInterest(ctx context.Context, asOf time.Time) ([]domain.InterestApplied, error)
	ExportLedger(ctx context.Context) ([]byte, error)
	ImportLedger(ctx context.Context, data []byte, replaceExisting bool) (*ImportResult, error)
	Summary(ctx context.Context) (*LedgerSummary, error)
}

// CreateAccountRequest holds input for opening an account.
type CreateAccountRequest struct {
	Name           string
	AccountType    domain.AccountType
	Currency       string
	InitialBalance decimal.Decimal
}

// MovementRequest holds input for a deposit or a withdrawal.
type MovementRequest struct {
	AccountID uuid.UUID
	Amount    decimal.Decimal
	Note      string
}

// TransferRequest holds input for moving money between two accounts.
type TransferRequest struct {
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	Amount        decimal.Decimal
	Note          string
}

// TransferResult holds both legs of a completed transfer.
type TransferResult struct {
	Out domain.Transaction
	In  domain.Transaction
}

// ImportResult reports what an import changed.
type ImportResult struct {
	Replaced     bool
	Accounts     int
	Transactions int
}

// LedgerSummary aggregates the ledger for the dashboard.
type LedgerSummary struct {
	Accounts     int
	Transactions int
	// Totals maps currency code to the summed balance.
	Totals map[string]decimal.Decimal
}

// ScreenLock gates the API behind a fixed passcode.
type ScreenLock interface {
	IsUnlocked() bool
	Verify(ctx context.Context, code string) (bool, error)
	Lock(ctx context.Context) error
}

// InterestNotifier fans interest events out to listeners.
type InterestNotifier interface {
	Publish(ctx context.Context, events ...domain.InterestApplied)
	Recent(limit int) []domain.InterestApplied
}
