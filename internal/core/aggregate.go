package core

import "time"

// CategoryShare is one category's slice of the ledger total.
type CategoryShare struct {
	Name    string
	Amount  Money
	Percent float64
}

// WindowedSum totals the amounts of every entry whose timestamp falls within
// [now - windowDays*24h, now], inclusive at both ends. Entries with a zero
// timestamp (rows whose timestamp could not be parsed) are excluded and never
// abort the computation.
func WindowedSum(entries []Entry, now time.Time, windowDays int) Money {
	from := now.Add(-time.Duration(windowDays) * 24 * time.Hour)
	var total int64
	for _, e := range entries {
		if e.Timestamp.IsZero() {
			continue
		}
		if e.Timestamp.Before(from) || e.Timestamp.After(now) {
			continue
		}
		total += e.Amount.Cents
	}
	return Money{Cents: total}
}

// CategoryRatio groups entries by category and expresses each group's sum as
// a percentage of the grand total, preserving first-seen category order.
// A zero grand total yields an empty result.
func CategoryRatio(entries []Entry) []CategoryShare {
	sums := map[string]int64{}
	order := make([]string, 0)
	var total int64
	for _, e := range entries {
		if _, seen := sums[e.Category]; !seen {
			order = append(order, e.Category)
		}
		sums[e.Category] += e.Amount.Cents
		total += e.Amount.Cents
	}
	if total == 0 {
		return nil
	}
	out := make([]CategoryShare, 0, len(order))
	for _, name := range order {
		cents := sums[name]
		out = append(out, CategoryShare{
			Name:    name,
			Amount:  Money{Cents: cents},
			Percent: float64(cents) * 100.0 / float64(total),
		})
	}
	return out
}
