/*
aggregate.go - Pure aggregation functions over attendance records

PURPOSE:
  The computational heart of the core. Turns a set of records into
  per-date groups, month/range subsets, and per-customer monthly stats.
  Every function here is a pure transform: no I/O, no shared state, and
  empty input yields empty aggregates rather than errors.

BUCKETING RULE:
  All month and range matching compares calendar dates only (year,
  month, day). Comparing instants with a timezone offset would shift
  records across month boundaries; Date makes that unrepresentable.

ORDERING:
  Display order is date descending (most recent first). Sorting is
  stable, so records sharing a date keep their insertion order.
*/
package clinic

import (
	"sort"
	"time"
)

// =============================================================================
// GROUPING
// =============================================================================

// GroupByDate partitions records into per-date groups. Groups are
// ordered date descending; within a group, insertion order is kept.
// Every record lands in exactly one group.
func GroupByDate(records []AttendanceRecord) []DateGroup {
	byDate := make(map[Date][]AttendanceRecord)
	var order []Date
	for _, rec := range records {
		if _, seen := byDate[rec.Date]; !seen {
			order = append(order, rec.Date)
		}
		byDate[rec.Date] = append(byDate[rec.Date], rec)
	}

	sort.Slice(order, func(i, j int) bool { return order[i].After(order[j]) })

	groups := make([]DateGroup, 0, len(order))
	for _, d := range order {
		groups = append(groups, DateGroup{Date: d, Records: byDate[d]})
	}
	return groups
}

// =============================================================================
// FILTERING
// =============================================================================

// FilterByMonth returns the subsequence of records whose calendar date
// falls in the given month. Idempotent: filtering an already-filtered
// set by the same month returns the same set.
func FilterByMonth(records []AttendanceRecord, month time.Month, year int) []AttendanceRecord {
	var out []AttendanceRecord
	for _, rec := range records {
		if rec.Date.In(month, year) {
			out = append(out, rec)
		}
	}
	return out
}

// FilterByRange returns records with dates in [from, to], inclusive on
// both ends.
func FilterByRange(records []AttendanceRecord, from, to Date) []AttendanceRecord {
	var out []AttendanceRecord
	for _, rec := range records {
		if rec.Date.Between(from, to) {
			out = append(out, rec)
		}
	}
	return out
}

// FilterByDate returns records on exactly the given date.
func FilterByDate(records []AttendanceRecord, d Date) []AttendanceRecord {
	return FilterByRange(records, d, d)
}

// =============================================================================
// ORDERING
// =============================================================================

// SortByDateDesc returns a copy sorted by date descending. The sort is
// stable: records sharing a date keep their original order.
func SortByDateDesc(records []AttendanceRecord) []AttendanceRecord {
	out := make([]AttendanceRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// =============================================================================
// STATS
// =============================================================================

// ComputeStats summarizes one customer's records for a reference month.
// TotalSessions and TotalCost cover only the month; LastVisit is the
// maximum date across ALL the customer's records - "last visit" is a
// lifetime property, not a monthly one.
func ComputeStats(records []AttendanceRecord, month time.Month, year int) MonthlyStat {
	stat := MonthlyStat{TotalCost: Rupees(0)}

	for _, rec := range FilterByMonth(records, month, year) {
		stat.TotalSessions++
		stat.TotalCost = stat.TotalCost.Add(rec.Price)
	}

	for _, rec := range records {
		if stat.LastVisit == nil || rec.Date.After(*stat.LastVisit) {
			d := rec.Date
			stat.LastVisit = &d
		}
	}
	return stat
}
