package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/simplebook/internal/domain"
	"github.com/dvloznov/simplebook/internal/review"
)

func TestSummarize(t *testing.T) {
	date := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	amt := decimal.RequireFromString
	txs := []domain.Transaction{
		{PostedDate: date, Amount: amt("2000.00"), Name: "RENT PAYMENT"},
		{PostedDate: date, Amount: amt("-1200.00"), Name: "AMEX AUTOPAY"},
		{PostedDate: date, Amount: amt("-75.00"), Name: "AT&T WIRELESS"},
		{PostedDate: date, Amount: amt("-40.00"), Name: "POS"},
	}

	s := Summarize(txs)

	if s.Count != 4 {
		t.Errorf("Count = %d, want 4", s.Count)
	}
	if s.CreditsCount != 1 || !s.CreditsTotal.Equal(amt("2000.00")) {
		t.Errorf("credits = %d/%s, want 1/2000.00", s.CreditsCount, s.CreditsTotal)
	}
	if s.DebitsCount != 3 || !s.DebitsTotal.Equal(amt("-1315.00")) {
		t.Errorf("debits = %d/%s, want 3/-1315.00", s.DebitsCount, s.DebitsTotal)
	}
	if !s.NetTotal.Equal(amt("685.00")) {
		t.Errorf("net = %s, want 685.00", s.NetTotal)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.Count != 0 || !s.NetTotal.Equal(decimal.Zero) {
		t.Errorf("Summarize(nil) = %+v, want zeroes", s)
	}
}

func resolvedItem(id, amount string, extra map[string]string) *review.Item {
	return &review.Item{
		ID:     id,
		YM:     "2025-07",
		Amount: decimal.RequireFromString(amount),
		Status: review.StatusResolved,
		Extra:  extra,
	}
}

func TestByCategory(t *testing.T) {
	items := []*review.Item{
		resolvedItem("a", "-100.00", map[string]string{"category": "Materials"}),
		resolvedItem("b", "-900.00", map[string]string{"category": "Rent"}),
		resolvedItem("c", "-50.00", nil), // no category set
		resolvedItem("d", "-200.00", map[string]string{"category": "Materials"}),
		{ID: "open", Amount: decimal.RequireFromString("-999.00"), Status: review.StatusOpen},
	}

	got := ByCategory(items)
	if len(got) != 3 {
		t.Fatalf("ByCategory() returned %d groups, want 3", len(got))
	}
	// Descending by absolute total: Rent 900, Materials 300, Uncategorized 50.
	if got[0].Label != "Rent" || !got[0].Total.Equal(decimal.RequireFromString("-900.00")) {
		t.Errorf("group 0 = %+v, want Rent -900.00", got[0])
	}
	if got[1].Label != "Materials" || got[1].Count != 2 || !got[1].Total.Equal(decimal.RequireFromString("-300.00")) {
		t.Errorf("group 1 = %+v, want Materials x2 -300.00", got[1])
	}
	if got[2].Label != LabelUncategorized {
		t.Errorf("group 2 label = %q, want %q", got[2].Label, LabelUncategorized)
	}
}

func TestByVendor_TiesKeepInsertionOrder(t *testing.T) {
	items := []*review.Item{
		resolvedItem("a", "-100.00", map[string]string{"vendor": "First Seen"}),
		resolvedItem("b", "100.00", map[string]string{"vendor": "Second Seen"}),
	}

	got := ByVendor(items)
	if len(got) != 2 {
		t.Fatalf("ByVendor() returned %d groups, want 2", len(got))
	}
	if got[0].Label != "First Seen" || got[1].Label != "Second Seen" {
		t.Errorf("tie order = %q, %q; want insertion order", got[0].Label, got[1].Label)
	}
}

func TestByVendor_DefaultLabel(t *testing.T) {
	got := ByVendor([]*review.Item{resolvedItem("a", "-10.00", nil)})
	if len(got) != 1 || got[0].Label != LabelUnknownVendor {
		t.Fatalf("ByVendor() = %+v, want single Unknown group", got)
	}
}
