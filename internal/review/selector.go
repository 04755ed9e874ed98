// Package review implements the needs-review workflow: the selector that
// flags ambiguous transactions, the per-month review ledger, and its
// record-per-line persistence.
package review

import (
	"github.com/shopspring/decimal"

	"github.com/dvloznov/simplebook/internal/domain"
	"github.com/dvloznov/simplebook/internal/rules"
)

// Reasons attached to flagged transactions.
const (
	ReasonLargeAmbiguous = "large + needs classification"
	ReasonGenericName    = "generic or missing name"
)

// largeAmount is the absolute-amount threshold above which an ambiguous
// transaction is unsafe to auto-classify, in the ledger's currency unit.
var largeAmount = decimal.NewFromInt(500)

// genericNames are placeholder payee tokens that carry no information.
// Deliberately hard-coded: unlike the vendor table this set describes the
// bank's formatting, not the operator's ledger.
var genericNames = map[string]bool{
	"POS":     true,
	"ONLINE":  true,
	"PAYMENT": true,
}

// Flagged pairs a transaction with the reason it needs human review.
type Flagged struct {
	Tx     domain.Transaction
	Reason string
}

// Select returns the transactions unsafe to auto-classify, each with a
// human-readable reason. Predicates run in fixed priority order, first match
// wins. Memo presence is deliberately ignored: staff often leave memos empty,
// and an expensive, generically named transaction must still be flagged.
func Select(txs []domain.Transaction) []Flagged {
	var flagged []Flagged
	for _, t := range txs {
		name := rules.NormalizeName(t.Name)
		generic := name == "" || genericNames[name]

		if t.Amount.Abs().GreaterThanOrEqual(largeAmount) &&
			(generic || rules.TransferPattern(name) || rules.CheckLike(t)) {
			flagged = append(flagged, Flagged{Tx: t, Reason: ReasonLargeAmbiguous})
			continue
		}

		if generic {
			flagged = append(flagged, Flagged{Tx: t, Reason: ReasonGenericName})
		}
	}
	return flagged
}
