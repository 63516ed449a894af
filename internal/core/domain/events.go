package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InterestApplied is emitted once per account credited during an interest cycle.
type InterestApplied struct {
	AccountID uuid.UUID       `json:"accountId"`
	Amount    decimal.Decimal `json:"amount"`
	When      time.Time       `json:"timestamp"`
}
