// Package core holds the domain model and the pure aggregation
// functions used by list views and reports. Aggregations take the
// entry slice as input and keep no state of their own.
package core

import (
	"sort"
	"time"
)

// SumHours returns the total hours across the given entries.
// Zero-hour entries count; an empty slice sums to 0.
func SumHours(entries []Overtime) float64 {
	var total float64
	for _, e := range entries {
		total += e.Hours
	}
	return total
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// SameMonth reports whether two times fall in the same calendar month
// of the same year.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// StartOfDay returns 00:00:00 of the same day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// FilterByDay returns the entries whose date falls on the same
// calendar day as day.
func FilterByDay(entries []Overtime, day time.Time) []Overtime {
	out := make([]Overtime, 0, len(entries))
	for _, e := range entries {
		if SameDay(e.Date, day) {
			out = append(out, e)
		}
	}
	return out
}

// FilterByMonth returns the entries whose date falls in the same
// calendar month and year as month.
func FilterByMonth(entries []Overtime, month time.Time) []Overtime {
	out := make([]Overtime, 0, len(entries))
	for _, e := range entries {
		if SameMonth(e.Date, month) {
			out = append(out, e)
		}
	}
	return out
}

// FilterByOwner returns the entries owned by the given user.
func FilterByOwner(entries []Overtime, u User) []Overtime {
	out := make([]Overtime, 0, len(entries))
	for _, e := range entries {
		if e.UserID == u.ID {
			out = append(out, e)
		}
	}
	return out
}

// GroupByDay partitions entries by the start of day of their date.
// Every entry lands in exactly one bucket.
func GroupByDay(entries []Overtime) map[time.Time][]Overtime {
	groups := make(map[time.Time][]Overtime)
	for _, e := range entries {
		day := StartOfDay(e.Date)
		groups[day] = append(groups[day], e)
	}
	return groups
}

// DaysNewestFirst returns the bucket keys of GroupByDay in descending
// order, the order list views render day sections in.
func DaysNewestFirst(groups map[time.Time][]Overtime) []time.Time {
	days := make([]time.Time, 0, len(groups))
	for day := range groups {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	return days
}

// SortNewestFirst returns a copy of entries ordered by date descending,
// the order used for on-device lists.
func SortNewestFirst(entries []Overtime) []Overtime {
	out := append([]Overtime(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// SortChronological returns a copy of entries ordered by date
// ascending, the order used for emailed reports.
func SortChronological(entries []Overtime) []Overtime {
	out := append([]Overtime(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
