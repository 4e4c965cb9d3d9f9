// Package types holds small shared helpers: a pluggable Clock, calendar
// day bounds and stable ordering by comparator.
//
//	clock := types.FixedClock(time.Date(2024, 1, 21, 12, 0, 0, 0, time.UTC))
//	types.SortStable(items, types.Descending, byName)
package types
