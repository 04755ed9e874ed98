package review

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/simplebook/internal/domain"
)

func mkTx(name, amount string) domain.Transaction {
	return domain.Transaction{
		PostedDate: time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC),
		Amount:     decimal.RequireFromString(amount),
		Name:       name,
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name   string
		tx     domain.Transaction
		reason string // "" = not flagged
	}{
		{"bare pos marker", mkTx("POS", "-40.00"), ReasonGenericName},
		{"bare online marker", mkTx("ONLINE", "-12.00"), ReasonGenericName},
		{"bare payment marker", mkTx("PAYMENT", "-80.00"), ReasonGenericName},
		{"empty name", mkTx("", "-25.00"), ReasonGenericName},
		{"large generic outranks generic reason", mkTx("POS", "-750.00"), ReasonLargeAmbiguous},
		{"large transfer", mkTx("TRANSFER TO 8694", "-900.00"), ReasonLargeAmbiguous},
		{"large credit transfer", mkTx("TRANSFER TO 8694", "900.00"), ReasonLargeAmbiguous},
		{"large check", domain.Transaction{
			PostedDate: time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC),
			Amount:     decimal.RequireFromString("-500.00"),
			Name:       "CHECK # 2730",
		}, ReasonLargeAmbiguous},
		{"large but well named", mkTx("AMEX AUTOPAY", "-1200.00"), ""},
		{"small and well named", mkTx("AT&T WIRELESS", "-75.00"), ""},
		{"small transfer is not flagged", mkTx("TRANSFER TO 8694", "-20.00"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select([]domain.Transaction{tt.tx})
			if tt.reason == "" {
				if len(got) != 0 {
					t.Fatalf("Select() flagged %q with %q, want not flagged", tt.tx.Name, got[0].Reason)
				}
				return
			}
			if len(got) != 1 {
				t.Fatalf("Select() returned %d items, want 1", len(got))
			}
			if got[0].Reason != tt.reason {
				t.Errorf("Select() reason = %q, want %q", got[0].Reason, tt.reason)
			}
		})
	}
}

func TestSelect_IgnoresMemo(t *testing.T) {
	// An expensive, generically named transaction must be flagged even when
	// the memo is filled in.
	tx := mkTx("POS", "-750.00")
	tx.Memo = "plenty of detail here"

	got := Select([]domain.Transaction{tx})
	if len(got) != 1 || got[0].Reason != ReasonLargeAmbiguous {
		t.Fatalf("Select() = %+v, want one large+ambiguous flag", got)
	}
}

func TestSelect_CheckNumIsCheckLike(t *testing.T) {
	tx := domain.Transaction{
		PostedDate: time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC),
		Amount:     decimal.RequireFromString("-650.00"),
		Name:       "WITHDRAWAL",
		CheckNum:   "2731",
	}
	got := Select([]domain.Transaction{tx})
	if len(got) != 1 || got[0].Reason != ReasonLargeAmbiguous {
		t.Fatalf("Select() = %+v, want one large+ambiguous flag", got)
	}
}

func TestMakeID_Stable(t *testing.T) {
	a := mkTx("TRANSFER TO 8694", "-900.00")
	b := mkTx("TRANSFER TO 8694", "-900.00")
	if MakeID(a) != MakeID(b) {
		t.Error("MakeID() differs for identical transactions")
	}
	if len(MakeID(a)) != idLen {
		t.Errorf("MakeID() length = %d, want %d", len(MakeID(a)), idLen)
	}

	c := mkTx("TRANSFER TO 8694", "-900.01")
	if MakeID(a) == MakeID(c) {
		t.Error("MakeID() collides across different amounts")
	}

	d := a
	d.CheckNum = "42"
	if MakeID(a) == MakeID(d) {
		t.Error("MakeID() ignores the check number")
	}
}
