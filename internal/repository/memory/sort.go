package memory

import (
	"cmp"
	"slices"
)

// sortByCreated orders records by creation time, breaking ties by id.
func sortByCreated[T any](items []T, key func(T) (int64, string)) {
	slices.SortStableFunc(items, func(a, b T) int {
		ta, ia := key(a)
		tb, ib := key(b)
		if c := cmp.Compare(ta, tb); c != 0 {
			return c
		}
		return cmp.Compare(ia, ib)
	})
}
