// Package report folds a month's transactions and resolved review items into
// totals and renders them for the terminal.
package report

import (
	"github.com/shopspring/decimal"

	"github.com/dvloznov/simplebook/internal/domain"
)

// Summary holds sign-partitioned totals for one set of transactions.
// Credits are amounts > 0 and debits are amounts < 0; zero-amount rows count
// toward Count only.
type Summary struct {
	Count        int
	CreditsCount int
	CreditsTotal decimal.Decimal
	DebitsCount  int
	DebitsTotal  decimal.Decimal
	NetTotal     decimal.Decimal
}

// Summarize computes the month summary in one pass.
func Summarize(txs []domain.Transaction) Summary {
	s := Summary{
		CreditsTotal: decimal.Zero,
		DebitsTotal:  decimal.Zero,
		NetTotal:     decimal.Zero,
	}
	for _, t := range txs {
		s.Count++
		s.NetTotal = s.NetTotal.Add(t.Amount)
		switch {
		case t.Amount.IsPositive():
			s.CreditsCount++
			s.CreditsTotal = s.CreditsTotal.Add(t.Amount)
		case t.Amount.IsNegative():
			s.DebitsCount++
			s.DebitsTotal = s.DebitsTotal.Add(t.Amount)
		}
	}
	return s
}
