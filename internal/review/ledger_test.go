package review

import (
	"errors"
	"os"
	"testing"

	"github.com/shopspring/decimal"
)

func mkItem(id, reason string) Item {
	return Item{
		ID:         id,
		YM:         "2025-07",
		PostedDate: "2025-07-14",
		Amount:     decimal.RequireFromString("-750.00"),
		Name:       "POS",
		Reason:     reason,
		Status:     StatusOpen,
	}
}

func TestLedger_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	l, err := Load(dir, "2025-07")
	if err != nil {
		t.Fatalf("Load() on empty dir: %v", err)
	}
	l.Upsert(mkItem("aaa111", ReasonLargeAmbiguous))
	l.Upsert(mkItem("bbb222", ReasonGenericName))
	if err := l.Patch("bbb222", []string{"status=resolved", `category="Materials"`, "vendor=Home Depot"}); err != nil {
		t.Fatalf("Patch(): %v", err)
	}
	if err := l.Save(dir); err != nil {
		t.Fatalf("Save(): %v", err)
	}

	got, err := Load(dir, "2025-07")
	if err != nil {
		t.Fatalf("Load() after save: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", got.Len())
	}
	it, ok := got.Get("bbb222")
	if !ok {
		t.Fatal("Get(bbb222) missing after round trip")
	}
	if it.Status != StatusResolved {
		t.Errorf("status = %q, want resolved", it.Status)
	}
	if it.Extra["category"] != "Materials" || it.Extra["vendor"] != "Home Depot" {
		t.Errorf("operator fields = %v, want category/vendor preserved", it.Extra)
	}
	if !it.Amount.Equal(decimal.RequireFromString("-750.00")) {
		t.Errorf("amount = %s, want -750.00", it.Amount)
	}
}

func TestLedger_UpsertIsNonDestructive(t *testing.T) {
	l := &Ledger{ym: "2025-07", items: make(map[string]*Item)}

	created := l.Upsert(mkItem("aaa111", ReasonGenericName))
	if !created {
		t.Fatal("Upsert() of a new id should report created")
	}
	if err := l.Patch("aaa111", []string{"status=resolved", "category=Materials", "note=lot 12 remodel"}); err != nil {
		t.Fatalf("Patch(): %v", err)
	}

	// Re-running the selector produces the same id with fresh mechanical
	// fields; the human's resolution must survive.
	again := mkItem("aaa111", ReasonLargeAmbiguous)
	again.Memo = "refreshed memo"
	if created := l.Upsert(again); created {
		t.Error("Upsert() of an existing id should not report created")
	}

	it, _ := l.Get("aaa111")
	if it.Status != StatusResolved {
		t.Errorf("status = %q, want resolved after re-upsert", it.Status)
	}
	if it.Extra["category"] != "Materials" || it.Extra["note"] != "lot 12 remodel" {
		t.Errorf("operator fields clobbered: %v", it.Extra)
	}
	if it.Reason != ReasonLargeAmbiguous || it.Memo != "refreshed memo" {
		t.Errorf("mechanical fields not refreshed: reason=%q memo=%q", it.Reason, it.Memo)
	}
}

func TestLedger_PatchRejectsUnknownID(t *testing.T) {
	dir := t.TempDir()

	l := &Ledger{ym: "2025-07", items: make(map[string]*Item)}
	l.Upsert(mkItem("aaa111", ReasonGenericName))
	if err := l.Save(dir); err != nil {
		t.Fatalf("Save(): %v", err)
	}
	before, err := os.ReadFile(BucketPath(dir, "2025-07"))
	if err != nil {
		t.Fatalf("ReadFile(): %v", err)
	}

	loaded, err := Load(dir, "2025-07")
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	err = loaded.Patch("nope", []string{"status=resolved"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Patch() error = %v, want ErrNotFound", err)
	}

	// The caller skips Save on error, so the bucket stays byte-identical.
	after, err := os.ReadFile(BucketPath(dir, "2025-07"))
	if err != nil {
		t.Fatalf("ReadFile(): %v", err)
	}
	if string(before) != string(after) {
		t.Error("bucket file changed after a rejected patch")
	}
}

func TestLedger_PatchRejectsBeforeApplying(t *testing.T) {
	l := &Ledger{ym: "2025-07", items: make(map[string]*Item)}
	l.Upsert(mkItem("aaa111", ReasonGenericName))

	err := l.Patch("aaa111", []string{"category=Materials", "not-a-pair"})
	if !errors.Is(err, ErrBadField) {
		t.Fatalf("Patch() error = %v, want ErrBadField", err)
	}

	// Zero fields applied: reject-before-apply, not partial-apply.
	it, _ := l.Get("aaa111")
	if len(it.Extra) != 0 {
		t.Errorf("operator fields = %v, want none applied", it.Extra)
	}
}

func TestLedger_FindNextOpen(t *testing.T) {
	l := &Ledger{ym: "2025-07", items: make(map[string]*Item)}
	if l.FindNextOpen() != nil {
		t.Error("FindNextOpen() on an empty ledger should be nil")
	}

	l.Upsert(mkItem("aaa111", ReasonGenericName))
	l.Upsert(mkItem("bbb222", ReasonGenericName))
	l.Upsert(mkItem("ccc333", ReasonGenericName))

	if next := l.FindNextOpen(); next == nil || next.ID != "aaa111" {
		t.Fatalf("FindNextOpen() = %v, want aaa111 (insertion order)", next)
	}
	if err := l.Patch("aaa111", []string{"status=resolved"}); err != nil {
		t.Fatalf("Patch(): %v", err)
	}
	if next := l.FindNextOpen(); next == nil || next.ID != "bbb222" {
		t.Fatalf("FindNextOpen() = %v, want bbb222", next)
	}

	open, resolved := l.Counts()
	if open != 2 || resolved != 1 {
		t.Errorf("Counts() = (%d, %d), want (2, 1)", open, resolved)
	}
}

func TestLedger_MissingStatusCountsAsOpen(t *testing.T) {
	it := &Item{ID: "x"}
	if !it.Open() {
		t.Error("item without status should be open by default")
	}
}
