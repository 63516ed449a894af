package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"personal-ledger/internal/core/domain"
	"personal-ledger/internal/core/ports"
	"personal-ledger/pkg/apperror"

	"github.com/google/uuid"
)

// Import problems reported through apperror.Import.
const (
	problemEmptyInput   = "empty input"
	problemNoData       = "no data"
	problemMalformed    = "malformed input: %v"
	problemDangling     = "dangling transaction reference: transaction %s references unknown account %s"
	problemDuplicateAcc = "duplicate account id: %s"
	problemDuplicateTx  = "duplicate transaction id: %s"
	problemInvalidAcc   = "invalid account at index %d: %s"
	problemInvalidTx    = "invalid transaction at index %d: %s"
)

// ExportLedger writes the whole ledger as an indented JSON backup document
// with transactions in ascending date order.
func (s *LedgerService) ExportLedger(_ context.Context) ([]byte, error) {
	doc := func() domain.LedgerDocument {
		s.mu.Lock()
		defer s.mu.Unlock()
		exportedAt := s.clock().UTC()
		return domain.LedgerDocument{
			Version:      domain.DocumentVersion,
			ExportedAt:   &exportedAt,
			Accounts:     cloneAccounts(s.accounts),
			Transactions: appendTransactions(s.transactions),
		}
	}()

	sortByDate(doc.Transactions)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("encode ledger document: %w", err))
	}

	s.log.Info().
		Int("accounts", len(doc.Accounts)).
		Int("transactions", len(doc.Transactions)).
		Msg("ledger exported")
	return data, nil
}

// ImportLedger validates a backup document and either replaces the ledger
// with it or merges it in. Every problem is collected before failing and
// nothing changes when the document is rejected.
//
// Merging takes the union by id. An account present on both sides is
// replaced only when the incoming copy has a strictly newer LastUpdated.
// Known transactions are kept as they are.
func (s *LedgerService) ImportLedger(ctx context.Context, data []byte, replaceExisting bool) (*ports.ImportResult, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var accounts []domain.Account
	var transactions []domain.Transaction
	if replaceExisting {
		accounts = cloneAccounts(doc.Accounts)
		transactions = appendTransactions(doc.Transactions)
	} else {
		accounts, transactions = s.merge(doc)
	}
	sortByDate(transactions)

	if err := s.commit(ctx, accounts, transactions); err != nil {
		return nil, err
	}
	s.bumpStamp(accounts, transactions)

	s.log.Info().
		Bool("replace", replaceExisting).
		Int("incoming_accounts", len(doc.Accounts)).
		Int("incoming_transactions", len(doc.Transactions)).
		Int("accounts", len(accounts)).
		Int("transactions", len(transactions)).
		Msg("ledger imported")

	return &ports.ImportResult{
		Replaced:     replaceExisting,
		Accounts:     len(accounts),
		Transactions: len(transactions),
	}, nil
}

// merge unions doc into the current ledger. Callers hold mu.
func (s *LedgerService) merge(doc *domain.LedgerDocument) ([]domain.Account, []domain.Transaction) {
	accounts := cloneAccounts(s.accounts)
	index := make(map[uuid.UUID]int, len(accounts))
	for i, a := range accounts {
		index[a.ID] = i
	}
	for _, incoming := range doc.Accounts {
		if i, ok := index[incoming.ID]; ok {
			if incoming.LastUpdated.After(accounts[i].LastUpdated) {
				accounts[i] = *incoming.Clone()
			}
			continue
		}
		index[incoming.ID] = len(accounts)
		accounts = append(accounts, *incoming.Clone())
	}

	transactions := appendTransactions(s.transactions)
	known := make(map[uuid.UUID]struct{}, len(transactions))
	for _, t := range transactions {
		known[t.ID] = struct{}{}
	}
	for _, incoming := range doc.Transactions {
		if _, ok := known[incoming.ID]; ok {
			continue
		}
		known[incoming.ID] = struct{}{}
		transactions = append(transactions, *incoming.Clone())
	}
	return accounts, transactions
}

// decodeDocument parses and validates a backup document.
func decodeDocument(data []byte) (*domain.LedgerDocument, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apperror.Import(problemEmptyInput)
	}

	var doc domain.LedgerDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperror.Import(fmt.Sprintf(problemMalformed, err))
	}
	if len(doc.Accounts) == 0 && len(doc.Transactions) == 0 {
		return nil, apperror.Import(problemNoData)
	}

	if problems := validateDocument(&doc); len(problems) > 0 {
		return nil, apperror.Import(problems...)
	}
	return &doc, nil
}

// validateDocument checks every record is well formed, ids are unique and
// every transaction belongs to an account of the same document. Transfer
// counterparties are not checked: a leg keeps naming its counterparty after
// that account is deleted.
func validateDocument(doc *domain.LedgerDocument) []string {
	var problems []string

	accountIDs := make(map[uuid.UUID]struct{}, len(doc.Accounts))
	for i, a := range doc.Accounts {
		if reasons := accountProblems(a); len(reasons) > 0 {
			problems = append(problems, fmt.Sprintf(problemInvalidAcc, i, strings.Join(reasons, ", ")))
		}
		if a.ID == uuid.Nil {
			continue
		}
		if _, dup := accountIDs[a.ID]; dup {
			problems = append(problems, fmt.Sprintf(problemDuplicateAcc, a.ID))
			continue
		}
		accountIDs[a.ID] = struct{}{}
	}

	txIDs := make(map[uuid.UUID]struct{}, len(doc.Transactions))
	for i, t := range doc.Transactions {
		if reasons := transactionProblems(t); len(reasons) > 0 {
			problems = append(problems, fmt.Sprintf(problemInvalidTx, i, strings.Join(reasons, ", ")))
		}
		if t.ID != uuid.Nil {
			if _, dup := txIDs[t.ID]; dup {
				problems = append(problems, fmt.Sprintf(problemDuplicateTx, t.ID))
			}
			txIDs[t.ID] = struct{}{}
		}
		if t.AccountID == uuid.Nil {
			continue
		}
		if _, ok := accountIDs[t.AccountID]; !ok {
			problems = append(problems, fmt.Sprintf(problemDangling, t.ID, t.AccountID))
		}
	}
	return problems
}

func accountProblems(a domain.Account) []string {
	var reasons []string
	if a.ID == uuid.Nil {
		reasons = append(reasons, "missing id")
	}
	if strings.TrimSpace(a.Name) == "" {
		reasons = append(reasons, "blank name")
	}
	if strings.TrimSpace(a.Currency) == "" {
		reasons = append(reasons, "blank currency")
	}
	if !a.AccountType.Valid() {
		reasons = append(reasons, "missing account type")
	}
	if a.Balance.IsNegative() {
		reasons = append(reasons, "negative balance")
	}
	return reasons
}

// transactionProblems allows a zero amount, which an empty opening balance records.
func transactionProblems(t domain.Transaction) []string {
	var reasons []string
	if t.ID == uuid.Nil {
		reasons = append(reasons, "missing id")
	}
	if t.AccountID == uuid.Nil {
		reasons = append(reasons, "missing account id")
	}
	if t.Date.IsZero() {
		reasons = append(reasons, "missing date")
	}
	if !t.Type.Valid() {
		reasons = append(reasons, "missing transaction type")
	}
	if t.Amount.IsNegative() {
		reasons = append(reasons, "negative amount")
	}
	if t.BalanceAfter.IsNegative() {
		reasons = append(reasons, "negative balance after")
	}
	return reasons
}

func sortByDate(transactions []domain.Transaction) {
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Date.Before(transactions[j].Date)
	})
}
