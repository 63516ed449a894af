package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of money movement.
type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "Deposit"
	TransactionTypeWithdrawal  TransactionType = "Withdrawal"
	TransactionTypeTransferIn  TransactionType = "TransferIn"
	TransactionTypeTransferOut TransactionType = "TransferOut"
)

// Notes written by the ledger itself.
const (
	NoteOpeningBalance = "opening balance"
	NoteInterest       = "interest"
)

var transactionTypeAliases = map[string]TransactionType{
	"deposit":      TransactionTypeDeposit,
	"insättning":   TransactionTypeDeposit,
	"0":            TransactionTypeDeposit,
	"withdrawal":   TransactionTypeWithdrawal,
	"uttag":        TransactionTypeWithdrawal,
	"1":            TransactionTypeWithdrawal,
	"transferin":   TransactionTypeTransferIn,
	"transfer_in":  TransactionTypeTransferIn,
	"överföringin": TransactionTypeTransferIn,
	"2":            TransactionTypeTransferIn,
	"transferout":  TransactionTypeTransferOut,
	"transfer_out": TransactionTypeTransferOut,
	"överföringut": TransactionTypeTransferOut,
	"3":            TransactionTypeTransferOut,
}

// ParseTransactionType resolves a human-readable transaction type name.
func ParseTransactionType(s string) (TransactionType, error) {
	if t, ok := transactionTypeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

// UnmarshalJSON accepts canonical names, legacy names and legacy numeric codes.
func (t *TransactionType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		s = string(b)
	}
	parsed, err := ParseTransactionType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Valid reports whether t is one of the canonical transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeTransferIn, TransactionTypeTransferOut:
		return true
	}
	return false
}

// IsTransferLeg returns true for both halves of a transfer.
func (t TransactionType) IsTransferLeg() bool {
	return t == TransactionTypeTransferIn || t == TransactionTypeTransferOut
}

// Transaction is an immutable ledger entry owned by one account.
type Transaction struct {
	ID                    uuid.UUID       `json:"id"`
	AccountID             uuid.UUID       `json:"accountId"`
	Date                  time.Time       `json:"date"`
	Type                  TransactionType `json:"transactionType"`
	Amount                decimal.Decimal `json:"amount"`
	BalanceAfter          decimal.Decimal `json:"balanceAfter"`
	CounterpartyAccountID *uuid.UUID      `json:"toAccountId"`
	Note                  *string         `json:"note"`
}

// NewTransaction records a movement on accountID. counterparty is set only for transfer legs.
func NewTransaction(accountID uuid.UUID, txType TransactionType, amount, balanceAfter decimal.Decimal, counterparty *uuid.UUID, note *string, at time.Time) *Transaction {
	return &Transaction{
		ID:                    uuid.New(),
		AccountID:             accountID,
		Date:                  at,
		Type:                  txType,
		Amount:                amount,
		BalanceAfter:          balanceAfter,
		CounterpartyAccountID: counterparty,
		Note:                  note,
	}
}

// Clone returns a deep copy of the transaction.
func (t *Transaction) Clone() *Transaction {
	cp := *t
	if t.CounterpartyAccountID != nil {
		id := *t.CounterpartyAccountID
		cp.CounterpartyAccountID = &id
	}
	if t.Note != nil {
		n := *t.Note
		cp.Note = &n
	}
	return &cp
}

// NoteOf returns the note or an empty string.
func (t *Transaction) NoteOf() string {
	if t.Note == nil {
		return ""
	}
	return *t.Note
}

// OptionalNote turns a blank note into nil.
func OptionalNote(note string) *string {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil
	}
	return &note
}
