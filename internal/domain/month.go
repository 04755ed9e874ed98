package domain

import (
	"fmt"
	"time"
)

// ParseYearMonth splits a YYYY-MM bucket key into its numeric parts.
func ParseYearMonth(ym string) (year int, month int, err error) {
	t, err := time.Parse("2006-01", ym)
	if err != nil {
		return 0, 0, fmt.Errorf("ParseYearMonth: invalid month bucket %q: %w", ym, err)
	}
	return t.Year(), int(t.Month()), nil
}

// FormatYearMonth builds the YYYY-MM bucket key for a year and month.
func FormatYearMonth(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
