// Package qfx decodes OFX/QFX statement downloads into transactions.
//
// OFX 1.x is SGML, not XML: element tags are usually unclosed and a value
// runs from the tag to the end of the line or the next tag. encoding/xml
// cannot parse it, so the decoder scans for <STMTTRN> blocks and pulls each
// field out with a tag-value pattern. Field values are kept raw; entity
// decoding is the classifier's job.
package qfx

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/simplebook/internal/domain"
)

var (
	stmtTrnSplit = regexp.MustCompile(`(?i)<STMTTRN>`)
	blockEnd     = regexp.MustCompile(`(?i)</STMTTRN>`)

	dtPostedPattern = tagValue("DTPOSTED")
	trnAmtPattern   = tagValue("TRNAMT")
	namePattern     = tagValue("NAME")
	memoPattern     = tagValue("MEMO")
	checkNumPattern = tagValue("CHECKNUM")
	fitIDPattern    = tagValue("FITID")

	// DTPOSTED looks like 20250714 or 20250714120000[-5:EST]; only the
	// date prefix matters here.
	datePrefix = regexp.MustCompile(`^\d{8}`)
)

func tagValue(tag string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)<` + tag + `>([^<\r\n]*)`)
}

// ParseFile reads and decodes a QFX/OFX file.
func ParseFile(path string) ([]domain.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ParseFile: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes every <STMTTRN> block from r, in file order.
func Parse(r io.Reader) ([]domain.Transaction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("Parse: read: %w", err)
	}

	blocks := stmtTrnSplit.Split(string(data), -1)
	if len(blocks) < 2 {
		return nil, nil
	}

	txs := make([]domain.Transaction, 0, len(blocks)-1)
	for i, block := range blocks[1:] {
		if loc := blockEnd.FindStringIndex(block); loc != nil {
			block = block[:loc[0]]
		}
		t, err := parseBlock(block)
		if err != nil {
			return nil, fmt.Errorf("Parse: transaction %d: %w", i+1, err)
		}
		txs = append(txs, t)
	}
	return txs, nil
}

func parseBlock(block string) (domain.Transaction, error) {
	var t domain.Transaction

	rawDate := field(dtPostedPattern, block)
	prefix := datePrefix.FindString(rawDate)
	if prefix == "" {
		return t, fmt.Errorf("missing or malformed DTPOSTED %q", rawDate)
	}
	posted, err := time.Parse("20060102", prefix)
	if err != nil {
		return t, fmt.Errorf("DTPOSTED %q: %w", rawDate, err)
	}
	t.PostedDate = posted

	rawAmt := field(trnAmtPattern, block)
	if rawAmt == "" {
		return t, fmt.Errorf("missing TRNAMT")
	}
	// Some exports write amounts with a comma decimal separator.
	amt, err := decimal.NewFromString(strings.ReplaceAll(rawAmt, ",", "."))
	if err != nil {
		return t, fmt.Errorf("TRNAMT %q: %w", rawAmt, err)
	}
	t.Amount = amt

	t.Name = field(namePattern, block)
	t.Memo = field(memoPattern, block)
	t.CheckNum = field(checkNumPattern, block)
	t.FITID = field(fitIDPattern, block)
	return t, nil
}

func field(p *regexp.Regexp, block string) string {
	if m := p.FindStringSubmatch(block); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
