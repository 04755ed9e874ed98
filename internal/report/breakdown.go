package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/simplebook/internal/review"
)

// Default labels for resolved items missing an operator field.
const (
	LabelUncategorized = "Uncategorized"
	LabelUnknownVendor = "Unknown"
)

// GroupTotal is one aggregated bucket of resolved review amounts.
type GroupTotal struct {
	Label string
	Count int
	Total decimal.Decimal
}

// ByCategory sums resolved review amounts grouped by the operator-assigned
// category, sorted descending by absolute total. Ties keep insertion order.
func ByCategory(items []*review.Item) []GroupTotal {
	return groupResolved(items, "category", LabelUncategorized)
}

// ByVendor sums resolved review amounts grouped by the operator-assigned
// vendor, sorted descending by absolute total. Ties keep insertion order.
func ByVendor(items []*review.Item) []GroupTotal {
	return groupResolved(items, "vendor", LabelUnknownVendor)
}

func groupResolved(items []*review.Item, key, def string) []GroupTotal {
	totals := make(map[string]*GroupTotal)
	var order []string

	for _, it := range items {
		if it.Status != review.StatusResolved {
			continue
		}
		label := it.Field(key, def)
		g, ok := totals[label]
		if !ok {
			g = &GroupTotal{Label: label, Total: decimal.Zero}
			totals[label] = g
			order = append(order, label)
		}
		g.Count++
		g.Total = g.Total.Add(it.Amount)
	}

	out := make([]GroupTotal, 0, len(order))
	for _, label := range order {
		out = append(out, *totals[label])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.Abs().GreaterThan(out[j].Total.Abs())
	})
	return out
}
