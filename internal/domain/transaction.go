package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents one ledger entry as decoded from a statement
// download. It is immutable once ingested; identity for dedup purposes is
// derived from the field values (see store.Fingerprint), never from a
// database row id, because imports are re-run on the same source files.
type Transaction struct {
	PostedDate time.Time       // calendar date the bank posted the entry
	Amount     decimal.Decimal // positive = credit/inflow, negative = debit/outflow
	Name       string          // payee/description, may be empty or generic
	Memo       string          // optional free text
	CheckNum   string          // set only for paper checks, "" otherwise
	FITID      string          // source-provided transaction id, "" if absent
}

// YearMonth returns the YYYY-MM bucket the transaction falls into.
func (t Transaction) YearMonth() string {
	return t.PostedDate.Format("2006-01")
}

// DateString returns the posted date in ISO form (YYYY-MM-DD).
func (t Transaction) DateString() string {
	return t.PostedDate.Format("2006-01-02")
}
