package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType is the category of an account. Only savings accounts accrue interest.
type AccountType string

const (
	AccountTypeChecking AccountType = "Checking"
	AccountTypeSavings  AccountType = "Savings"
	AccountTypeBusiness AccountType = "Business"
)

// accountTypeAliases maps lower-cased names, legacy Swedish names and the
// legacy numeric codes onto the canonical account types.
var accountTypeAliases = map[string]AccountType{
	"checking":      AccountTypeChecking,
	"baskonto":      AccountTypeChecking,
	"0":             AccountTypeChecking,
	"savings":       AccountTypeSavings,
	"sparkonto":     AccountTypeSavings,
	"1":             AccountTypeSavings,
	"business":      AccountTypeBusiness,
	"företagskonto": AccountTypeBusiness,
	"2":             AccountTypeBusiness,
}

// ParseAccountType resolves a human-readable account type name.
func ParseAccountType(s string) (AccountType, error) {
	if t, ok := accountTypeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown account type %q", s)
}

// Valid reports whether t is one of the canonical account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeBusiness:
		return true
	}
	return false
}

// UnmarshalJSON accepts canonical names, legacy names and legacy numeric codes.
func (t *AccountType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		s = string(b)
	}
	parsed, err := ParseAccountType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Account is a single ledger account. Balance is exact decimal money.
type Account struct {
	ID                  uuid.UUID       `json:"id"`
	Name                string          `json:"name"`
	AccountType         AccountType     `json:"accountType"`
	Currency            string          `json:"currency"`
	Balance             decimal.Decimal `json:"balance"`
	LastUpdated         time.Time       `json:"lastUpdated"`
	LastInterestApplied *time.Time      `json:"lastInterestApplied"`
}

// NewAccount opens an account with the given starting balance.
func NewAccount(name string, accountType AccountType, currency string, balance decimal.Decimal, at time.Time) *Account {
	return &Account{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(name),
		AccountType: accountType,
		Currency:    NormalizeCurrency(currency),
		Balance:     balance,
		LastUpdated: at,
	}
}

// NormalizeCurrency trims and upper-cases a currency code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsSavings returns true if the account accrues interest.
func (a *Account) IsSavings() bool {
	return a.AccountType == AccountTypeSavings
}

// CanDebit reports whether amount can be taken without going negative.
func (a *Account) CanDebit(amount decimal.Decimal) bool {
	return !amount.GreaterThan(a.Balance)
}

// Credit adds amount to the balance and stamps the update time.
func (a *Account) Credit(amount decimal.Decimal, at time.Time) {
	a.Balance = a.Balance.Add(amount)
	a.LastUpdated = at
}

// Debit subtracts amount from the balance and stamps the update time.
// Callers check CanDebit first.
func (a *Account) Debit(amount decimal.Decimal, at time.Time) {
	a.Balance = a.Balance.Sub(amount)
	a.LastUpdated = at
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	cp := *a
	if a.LastInterestApplied != nil {
		t := *a.LastInterestApplied
		cp.LastInterestApplied = &t
	}
	return &cp
}
