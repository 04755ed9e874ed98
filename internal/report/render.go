package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/dvloznov/simplebook/internal/store"
)

// RenderMonths writes the month buckets as a table, newest first.
func RenderMonths(w io.Writer, months []store.MonthCount) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Month", "Transactions"})
	for _, m := range months {
		table.Append([]string{m.YM, fmt.Sprintf("%d", m.Count)})
	}
	table.Render()
}

// RenderSummary writes the sign-partitioned month totals.
func RenderSummary(w io.Writer, ym string, s Summary) {
	fmt.Fprintf(w, "\nMonth: %s\n", ym)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"", "Count", "Total"})
	table.Append([]string{"Credits", fmt.Sprintf("%d", s.CreditsCount), s.CreditsTotal.StringFixed(2)})
	table.Append([]string{"Debits", fmt.Sprintf("%d", s.DebitsCount), s.DebitsTotal.StringFixed(2)})
	table.Append([]string{"Net", fmt.Sprintf("%d", s.Count), s.NetTotal.StringFixed(2)})
	table.Render()
}

// RenderGroups writes one resolved-review breakdown table.
func RenderGroups(w io.Writer, title string, groups []GroupTotal) {
	if len(groups) == 0 {
		fmt.Fprintf(w, "\n%s: none resolved yet\n", title)
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{title, "Count", "Total"})
	for _, g := range groups {
		table.Append([]string{g.Label, fmt.Sprintf("%d", g.Count), g.Total.StringFixed(2)})
	}
	table.Render()
}
