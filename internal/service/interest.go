package service

import (
	"context"
	"time"

	"personal-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// ApplyInterest credits accrued simple interest to every savings account as
// of asOf. Accrual starts at the last interest credit, else at the account's
// first transaction, else at its last update. Accounts with nothing to credit
// keep their baseline so accrual continues on the next cycle. Events are
// published after the ledger has been persisted and the lock released.
func (s *LedgerService) ApplyInterest(ctx context.Context, asOf time.Time) ([]domain.InterestApplied, error) {
	asOf = asOf.UTC()

	events, err := func() ([]domain.InterestApplied, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.applyInterestLocked(ctx, asOf)
	}()
	if err != nil {
		return nil, err
	}

	if len(events) > 0 && s.notifier != nil {
		s.notifier.Publish(ctx, events...)
	}
	return events, nil
}

func (s *LedgerService) applyInterestLocked(ctx context.Context, asOf time.Time) ([]domain.InterestApplied, error) {
	earliest := make(map[uuid.UUID]time.Time)
	for _, t := range s.transactions {
		if first, ok := earliest[t.AccountID]; !ok || t.Date.Before(first) {
			earliest[t.AccountID] = t.Date
		}
	}

	accounts := cloneAccounts(s.accounts)
	var credited []domain.Transaction
	var events []domain.InterestApplied

	for i := range accounts {
		acc := &accounts[i]
		if !acc.IsSavings() {
			continue
		}

		baseline := acc.LastUpdated
		if first, ok := earliest[acc.ID]; ok {
			baseline = first
		}
		if acc.LastInterestApplied != nil {
			baseline = *acc.LastInterestApplied
		}

		interest := domain.CalculateInterest(acc.Balance, s.rate, domain.WholeDays(baseline, asOf))
		if !interest.IsPositive() {
			continue
		}

		txn := s.credit(acc, interest, domain.OptionalNote(domain.NoteInterest), s.now())
		applied := asOf
		acc.LastInterestApplied = &applied

		credited = append(credited, *txn)
		events = append(events, domain.InterestApplied{
			AccountID: acc.ID,
			Amount:    interest,
			When:      txn.Date,
		})
	}

	if len(events) == 0 {
		return nil, nil
	}

	if err := s.commit(ctx, accounts, appendTransactions(s.transactions, credited...)); err != nil {
		return nil, err
	}

	for _, e := range events {
		s.log.Info().
			Str("account_id", e.AccountID.String()).
			Str("amount", e.Amount.String()).
			Time("as_of", asOf).
			Msg("interest applied")
	}
	return events, nil
}
