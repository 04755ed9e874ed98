package review

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

// Domain errors for ledger operations.
var (
	// ErrNotFound means a patch targeted an id absent from the bucket.
	ErrNotFound = errors.New("review item not found")
	// ErrBadField means a patch argument was not in key=value shape.
	ErrBadField = errors.New("expected key=value")
)

// Item statuses. Open is the implicit default; resolved is terminal.
const (
	StatusOpen     = "open"
	StatusResolved = "resolved"
)

// Item is one entry in a month's review ledger: a fixed mechanical core plus
// an open-ended map for operator-supplied resolution fields. Items are never
// deleted; they are closed by a status transition, preserving the audit trail.
type Item struct {
	ID         string          `json:"id"`
	YM         string          `json:"ym"`
	PostedDate string          `json:"posted_date"` // YYYY-MM-DD
	Amount     decimal.Decimal `json:"amount"`
	Name       string          `json:"name"`
	Memo       string          `json:"memo,omitempty"`
	Reason     string          `json:"reason"`
	Status     string          `json:"status"`

	// Extra holds operator annotations set via patch (category, vendor,
	// note, ...). Upsert never touches it.
	Extra map[string]string `json:"extra,omitempty"`
}

// Open reports whether the item still awaits resolution.
func (it *Item) Open() bool {
	return it.Status == "" || it.Status == StatusOpen
}

// Field returns an operator-supplied value with a default when unset.
func (it *Item) Field(key, def string) string {
	if v, ok := it.Extra[key]; ok && v != "" {
		return v
	}
	return def
}

// NewItem builds the mechanical review item for a flagged transaction.
func NewItem(ym string, f Flagged) Item {
	return Item{
		ID:         MakeID(f.Tx),
		YM:         ym,
		PostedDate: f.Tx.DateString(),
		Amount:     f.Tx.Amount,
		Name:       f.Tx.Name,
		Memo:       f.Tx.Memo,
		Reason:     f.Reason,
		Status:     StatusOpen,
	}
}

// Ledger is the full review bucket for one month, loaded into memory as a
// whole, mutated, and saved as a whole. The load→mutate→save sequence is one
// logical transaction; callers must not interleave writers on the same bucket.
type Ledger struct {
	ym    string
	items map[string]*Item
	order []string // insertion order; drives FindNextOpen and the saved layout
}

// BucketPath returns the on-disk location of a month's review file.
func BucketPath(dir, ym string) string {
	return filepath.Join(dir, "review_"+ym+".jsonl")
}

// Load reads a month's review bucket. A missing file yields an empty ledger.
func Load(dir, ym string) (*Ledger, error) {
	l := &Ledger{ym: ym, items: make(map[string]*Item)}

	f, err := os.Open(BucketPath(dir, ym))
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("Load: open review bucket %s: %w", ym, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		var it Item
		if err := json.Unmarshal([]byte(raw), &it); err != nil {
			return nil, fmt.Errorf("Load: review bucket %s line %d: %w", ym, line, err)
		}
		if it.ID == "" {
			return nil, fmt.Errorf("Load: review bucket %s line %d: record without id", ym, line)
		}
		if _, dup := l.items[it.ID]; !dup {
			l.order = append(l.order, it.ID)
		}
		clone := it
		l.items[it.ID] = &clone
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("Load: read review bucket %s: %w", ym, err)
	}
	return l, nil
}

// Save writes the whole bucket back, one self-contained JSON record per line
// in insertion order. The write goes through a temp file and rename so a
// reader never observes a partially written bucket.
func (l *Ledger) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("Save: create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "review_"+l.ym+".*.tmp")
	if err != nil {
		return fmt.Errorf("Save: create temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	w := bufio.NewWriter(tmp)
	for _, id := range l.order {
		b, err := json.Marshal(l.items[id])
		if err != nil {
			return fmt.Errorf("Save: marshal item %s: %w", id, err)
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			return fmt.Errorf("Save: write item %s: %w", id, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("Save: flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("Save: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), BucketPath(dir, l.ym)); err != nil {
		return fmt.Errorf("Save: replace review bucket %s: %w", l.ym, err)
	}
	return nil
}

// Upsert merges a mechanical item into the ledger. If the id is new the item
// is created with status open. If it already exists only the mechanical
// fields are refreshed; status and operator-supplied fields are never
// touched, so re-running the selector cannot clobber human work. Returns
// true when the item was newly created.
func (l *Ledger) Upsert(it Item) bool {
	existing, ok := l.items[it.ID]
	if !ok {
		if it.Status == "" {
			it.Status = StatusOpen
		}
		l.items[it.ID] = &it
		l.order = append(l.order, it.ID)
		return true
	}
	existing.YM = it.YM
	existing.PostedDate = it.PostedDate
	existing.Amount = it.Amount
	existing.Name = it.Name
	existing.Memo = it.Memo
	existing.Reason = it.Reason
	return false
}

// Patch applies operator-issued key=value assignments to an existing item.
// Every pair is validated before any is applied: a malformed pair rejects
// the whole patch. "status" targets the status field; any other key lands in
// the operator map. Patch never creates items.
func (l *Ledger) Patch(id string, pairs []string) error {
	it, ok := l.items[id]
	if !ok {
		return fmt.Errorf("review id %q: %w", id, ErrNotFound)
	}

	type kv struct{ key, val string }
	parsed := make([]kv, 0, len(pairs))
	for _, raw := range pairs {
		key, val, ok := strings.Cut(raw, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return fmt.Errorf("bad field %q: %w", raw, ErrBadField)
		}
		val = strings.Trim(strings.TrimSpace(val), `"'`)
		parsed = append(parsed, kv{key, val})
	}

	for _, p := range parsed {
		if p.key == "status" {
			it.Status = p.val
			continue
		}
		if it.Extra == nil {
			it.Extra = make(map[string]string)
		}
		it.Extra[p.key] = p.val
	}
	return nil
}

// FindNextOpen returns the first open item in insertion order, or nil when
// everything is resolved.
func (l *Ledger) FindNextOpen() *Item {
	for _, id := range l.order {
		if it := l.items[id]; it.Open() {
			return it
		}
	}
	return nil
}

// Get returns the item for an id, if present.
func (l *Ledger) Get(id string) (*Item, bool) {
	it, ok := l.items[id]
	return it, ok
}

// Items returns every item in insertion order.
func (l *Ledger) Items() []*Item {
	out := make([]*Item, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.items[id])
	}
	return out
}

// Resolved returns the resolved items in insertion order.
func (l *Ledger) Resolved() []*Item {
	var out []*Item
	for _, id := range l.order {
		if it := l.items[id]; it.Status == StatusResolved {
			out = append(out, it)
		}
	}
	return out
}

// Counts reports how many items are open and resolved.
func (l *Ledger) Counts() (open, resolved int) {
	for _, it := range l.items {
		if it.Open() {
			open++
		} else if it.Status == StatusResolved {
			resolved++
		}
	}
	return open, resolved
}

// Len returns the number of items in the bucket.
func (l *Ledger) Len() int {
	return len(l.order)
}
