package ledger

import (
	"slices"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

// Filter returns the entries matching f in ledger order. Date bounds are
// inclusive calendar days; entries with an unknown date never match a
// date-bounded filter. Limit, when positive, keeps the first matches.
func Filter(entries []model.LedgerEntry, f service.TransactionFilter) []model.LedgerEntry {
	var start, end time.Time
	if f.StartDate != nil {
		start = model.CalendarDate(*f.StartDate)
	}
	if f.EndDate != nil {
		end = model.CalendarDate(*f.EndDate)
	}

	out := make([]model.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		if f.StartDate != nil && (e.Date.IsZero() || e.Date.Before(start)) {
			continue
		}
		if f.EndDate != nil && (e.Date.IsZero() || e.Date.After(end)) {
			continue
		}
		if len(f.Accounts) > 0 && !slices.Contains(f.Accounts, e.Account) {
			continue
		}
		if len(f.Categories) > 0 && !slices.Contains(f.Categories, e.Category) {
			continue
		}
		if len(f.Types) > 0 && !slices.Contains(f.Types, e.Type) {
			continue
		}

		out = append(out, e)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}

// InMonth returns the entries dated in the same year and month as now.
func InMonth(entries []model.LedgerEntry, now time.Time) []model.LedgerEntry {
	year, month, _ := now.Date()
	var out []model.LedgerEntry
	for _, e := range entries {
		if e.Date.IsZero() {
			continue
		}
		if y, m, _ := e.Date.Date(); y == year && m == month {
			out = append(out, e)
		}
	}
	return out
}

// Recent returns up to n entries, newest first. Entries on the same day
// keep their ledger order.
func Recent(entries []model.LedgerEntry, n int) []model.LedgerEntry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b model.LedgerEntry) int {
		return b.Date.Compare(a.Date)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
