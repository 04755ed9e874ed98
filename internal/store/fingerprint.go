package store

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/dvloznov/simplebook/internal/domain"
)

// Fingerprint computes the stable dedup identity of a transaction from the
// fields expected to survive re-imports of the same underlying record: the
// source-provided FITID when present, the posted date, the amount, and the
// payee name. A locally generated sequence number would change between
// imports and must never participate.
func Fingerprint(t domain.Transaction) string {
	h := sha256.New()
	io.WriteString(h, t.FITID)
	io.WriteString(h, "|")
	io.WriteString(h, t.DateString())
	io.WriteString(h, "|")
	io.WriteString(h, t.Amount.String())
	io.WriteString(h, "|")
	io.WriteString(h, t.Name)
	return hex.EncodeToString(h.Sum(nil))
}
