package types

import (
	"sort"
	"strings"
	"time"
)

// Order represents sorting direction.
type Order string

const (
	Ascending  Order = "asc"  // Ascending order
	Descending Order = "desc" // Descending order
)

// ParseOrder reads "asc"/"ascending" or "desc"/"descending", case-insensitively.
func ParseOrder(s string) (Order, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending, true
	case "desc", "descending":
		return Descending, true
	}
	return "", false
}

// Apply orients a comparison result for this direction.
func (o Order) Apply(cmp int) int {
	if o == Descending {
		return -cmp
	}
	return cmp
}

// Comparator returns -1, 0 or 1 for a < b, a == b, a > b.
type Comparator[T any] func(a, b T) int

// SortStable orders items in place by cmp in the given direction.
// Equal items keep their relative order in both directions.
func SortStable[T any](items []T, cmp Comparator[T], order Order) {
	sort.SliceStable(items, func(i, j int) bool {
		return order.Apply(cmp(items[i], items[j])) < 0
	})
}

// CompareInt compares two integers.
func CompareInt(a, b int) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

// CompareString compares two strings byte-wise, so upper case sorts before
// lower case.
func CompareString(a, b string) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

// CompareTime compares two instants.
func CompareTime(a, b time.Time) int {
	if a.Before(b) {
		return -1
	} else if a.After(b) {
		return 1
	}
	return 0
}
