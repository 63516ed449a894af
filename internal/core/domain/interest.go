package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DaysPerYear is the day-count basis for simple interest.
const DaysPerYear = 365

var interestDivisor = decimal.NewFromInt(100 * DaysPerYear)

// CalculateInterest returns balance × rate/100 × days/365 rounded to two
// decimals with banker's rounding. Non-positive inputs yield zero.
func CalculateInterest(balance, annualRatePercent decimal.Decimal, days int) decimal.Decimal {
	if days <= 0 || !balance.IsPositive() || !annualRatePercent.IsPositive() {
		return decimal.Zero
	}
	return balance.
		Mul(annualRatePercent).
		Mul(decimal.NewFromInt(int64(days))).
		Div(interestDivisor).
		RoundBank(2)
}

// WholeDays counts complete 24h periods between from and to.
func WholeDays(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	return int(to.Sub(from) / (24 * time.Hour))
}
