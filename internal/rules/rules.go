// Package rules implements the deterministic transaction classifier. It
// evaluates a fixed, ordered list of predicates over the normalized payee
// name, memo, and signed amount; the first predicate that matches wins.
// Classification is total: every transaction yields a Result, never an error.
package rules

import (
	"html"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/simplebook/internal/domain"
)

// Confidence is the classifier's trust level for a result.
type Confidence string

const (
	// ConfidenceHard marks an unambiguous institution match.
	ConfidenceHard Confidence = "hard"
	// ConfidenceGuess marks a heuristic result that may need correction.
	ConfidenceGuess Confidence = "guess"
)

// Categories produced by the built-in rule set.
const (
	CategoryRentalIncome      = "Rental Income"
	CategoryCreditCardPayment = "Credit Card Payment"
	CategoryPhoneExpense      = "Phone Expense"
	CategoryPersonalTransfer  = "Personal Transfer"
)

// Result is one classification outcome. It is computed on demand for
// display and never persisted independently.
type Result struct {
	Category   string // "" = unresolved
	Confidence Confidence
	Note       string
}

// VendorRule maps payee name tokens to a category. Rules are evaluated in
// list order; the position in the list encodes human-curated precedence.
type VendorRule struct {
	Tokens     []string // match if any token is a substring of the normalized name
	Category   string
	Confidence Confidence
	Note       string
}

// Config carries the externally supplied classification settings. It is
// threaded into New rather than read from ambient process state so that
// classification stays a pure function of (transaction, configuration).
type Config struct {
	// AssumeAllIncomeIsRental treats every positive amount as rental income.
	AssumeAllIncomeIsRental bool
	// VendorRules is the ordered vendor token table. Nil means
	// DefaultVendorRules.
	VendorRules []VendorRule
}

// DefaultVendorRules returns the curated vendor table. Institutions and card
// issuers are hard matches; imperfect mappings carry a guess with a note.
func DefaultVendorRules() []VendorRule {
	return []VendorRule{
		{Tokens: []string{"AMERICAN EXPRESS", "AMEX"}, Category: CategoryCreditCardPayment, Confidence: ConfidenceHard},
		{Tokens: []string{"CITIBANK", "CITI"}, Category: CategoryCreditCardPayment, Confidence: ConfidenceHard},
		{Tokens: []string{"AT&T", "ATT"}, Category: CategoryPhoneExpense, Confidence: ConfidenceHard},
		{Tokens: []string{"HOME DEPOT"}, Category: CategoryCreditCardPayment, Confidence: ConfidenceGuess, Note: "verify if this is always a card payment"},
	}
}

// matchInput is the normalized view of a transaction the predicates see.
type matchInput struct {
	name     string // entity-decoded, trimmed, uppercased
	memo     string // entity-decoded, trimmed
	amount   decimal.Decimal
	hasCheck bool
}

// rule pairs a predicate with the result it produces. Evaluation is
// short-circuit: later rules never override earlier ones.
type rule struct {
	matches func(in matchInput) bool
	result  Result
}

// Classifier holds the compiled, ordered rule list.
type Classifier struct {
	rules []rule
}

// New compiles a Classifier from the given configuration. Priority order:
// income heuristic, vendor table (institutions first in the default table),
// transfer patterns, check heuristic, then the unresolved fallback.
func New(cfg Config) *Classifier {
	vendorRules := cfg.VendorRules
	if vendorRules == nil {
		vendorRules = DefaultVendorRules()
	}

	var rs []rule

	if cfg.AssumeAllIncomeIsRental {
		rs = append(rs, rule{
			matches: func(in matchInput) bool { return in.amount.IsPositive() },
			result:  Result{Category: CategoryRentalIncome, Confidence: ConfidenceGuess},
		})
	}

	for _, vr := range vendorRules {
		tokens := make([]string, len(vr.Tokens))
		for i, tok := range vr.Tokens {
			tokens[i] = strings.ToUpper(strings.TrimSpace(tok))
		}
		conf := vr.Confidence
		if conf == "" {
			conf = ConfidenceGuess
		}
		rs = append(rs, rule{
			matches: func(in matchInput) bool { return containsAny(in.name, tokens) },
			result:  Result{Category: vr.Category, Confidence: conf, Note: vr.Note},
		})
	}

	rs = append(rs,
		rule{
			matches: func(in matchInput) bool { return TransferPattern(in.name) },
			result:  Result{Category: CategoryPersonalTransfer, Confidence: ConfidenceGuess},
		},
		rule{
			matches: func(in matchInput) bool { return in.hasCheck || strings.Contains(in.name, checkMarker) },
			result:  Result{Confidence: ConfidenceGuess, Note: "unknown payee"},
		},
	)

	return &Classifier{rules: rs}
}

// Classify runs the transaction through the ordered rule list and returns
// the result of the first match, or the unresolved fallback.
func (c *Classifier) Classify(t domain.Transaction) Result {
	in := matchInput{
		name:     NormalizeName(t.Name),
		memo:     strings.TrimSpace(html.UnescapeString(t.Memo)),
		amount:   t.Amount,
		hasCheck: t.CheckNum != "",
	}
	for _, r := range c.rules {
		if r.matches(in) {
			return r.result
		}
	}
	return Result{Confidence: ConfidenceGuess}
}

const checkMarker = "CHECK #"

// transferTokens are substrings that indicate a transfer between accounts.
// "CASH APP" only counts as a transfer when a transfer word is also present.
var transferTokens = []string{"TRANSFER TO", "META PAY"}

// NormalizeName decodes HTML entities (repairs artifacts such as AT&amp;T),
// trims, and uppercases a payee name for token matching.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(html.UnescapeString(name)))
}

// TransferPattern reports whether a normalized name carries a
// transfer-pattern token.
func TransferPattern(name string) bool {
	if strings.Contains(name, "CASH APP") && strings.Contains(name, "TRANSFER") {
		return true
	}
	return containsAny(name, transferTokens)
}

// CheckLike reports whether the transaction looks like a paper check: the
// name carries the check marker or a check number is present.
func CheckLike(t domain.Transaction) bool {
	return t.CheckNum != "" || strings.Contains(NormalizeName(t.Name), checkMarker)
}

func containsAny(s string, tokens []string) bool {
	for _, tok := range tokens {
		if tok != "" && strings.Contains(s, tok) {
			return true
		}
	}
	return false
}
