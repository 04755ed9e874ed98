package review

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"

	"github.com/dvloznov/simplebook/internal/domain"
)

// idLen keeps review ids short enough to type into review-set.
const idLen = 12

// MakeID derives a stable review id from the transaction's own fields so the
// same underlying transaction maps to the same id across repeated runs,
// independent of row-storage order.
func MakeID(t domain.Transaction) string {
	h := sha256.New()
	io.WriteString(h, t.DateString())
	io.WriteString(h, "|")
	io.WriteString(h, t.Amount.String())
	io.WriteString(h, "|")
	io.WriteString(h, strings.ToUpper(strings.TrimSpace(t.Name)))
	if t.CheckNum != "" {
		io.WriteString(h, "|#")
		io.WriteString(h, t.CheckNum)
	}
	return hex.EncodeToString(h.Sum(nil))[:idLen]
}
