package dto

import "github.com/shopspring/decimal"

// CreateAccountRequest is the request body for opening an account.
// InitialBalance accepts a JSON string or number.
type CreateAccountRequest struct {
	Name           string          `json:"name" binding:"required,min=1,max=100"`
	AccountType    string          `json:"account_type" binding:"required,account_type"`
	Currency       string          `json:"currency" binding:"required,iso_currency"`
	InitialBalance decimal.Decimal `json:"initial_balance" binding:"gte=0"`
}

// MovementRequest is the request body for a deposit or a withdrawal.
type MovementRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"gt=0"`
	Note   string          `json:"note" binding:"max=200"`
}

// TransferRequest is the request body for moving money between accounts.
type TransferRequest struct {
	FromAccountID string          `json:"from_account_id" binding:"required,uuid"`
	ToAccountID   string          `json:"to_account_id" binding:"required,uuid"`
	Amount        decimal.Decimal `json:"amount" binding:"gt=0"`
	Note          string          `json:"note" binding:"max=200"`
}

// VerifyPasscodeRequest is the request body for unlocking the ledger.
type VerifyPasscodeRequest struct {
	Code string `json:"code" binding:"required,max=64"`
}

// AccountResponse is the response body for a single account.
type AccountResponse struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	AccountType         string  `json:"account_type"`
	Currency            string  `json:"currency"`
	Balance             string  `json:"balance"`
	LastUpdated         string  `json:"last_updated"`
	LastInterestApplied *string `json:"last_interest_applied,omitempty"`
}

// TransactionResponse is the response body for a ledger entry.
type TransactionResponse struct {
	ID                    string  `json:"id"`
	AccountID             string  `json:"account_id"`
	Date                  string  `json:"date"`
	TransactionType       string  `json:"transaction_type"`
	Amount                string  `json:"amount"`
	BalanceAfter          string  `json:"balance_after"`
	CounterpartyAccountID *string `json:"counterparty_account_id,omitempty"`
	Note                  *string `json:"note,omitempty"`
}

// TransferResponse holds both legs of a transfer.
type TransferResponse struct {
	Out TransactionResponse `json:"out"`
	In  TransactionResponse `json:"in"`
}

// SummaryResponse is the dashboard overview.
type SummaryResponse struct {
	Accounts     int               `json:"accounts"`
	Transactions int               `json:"transactions"`
	Totals       map[string]string `json:"totals"`
}

// ImportResponse reports the outcome of a ledger import.
type ImportResponse struct {
	Replaced     bool `json:"replaced"`
	Accounts     int  `json:"accounts"`
	Transactions int  `json:"transactions"`
}

// InterestEventResponse is a single interest credit.
type InterestEventResponse struct {
	AccountID string `json:"account_id"`
	Amount    string `json:"amount"`
	Timestamp string `json:"timestamp"`
}

// InterestRunResponse lists the credits made by one interest cycle.
type InterestRunResponse struct {
	AsOf    string                  `json:"as_of"`
	Applied []InterestEventResponse `json:"applied"`
}

// LockStatusResponse is the current screen-lock state.
type LockStatusResponse struct {
	Unlocked bool `json:"unlocked"`
}
