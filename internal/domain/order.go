package domain

import "cmp"

// NewestFirst orders records by date descending, then CreatedAt descending,
// then id ascending, for use with slices.SortFunc. Records with unparseable
// dates sort after all others.
func NewestFirst(a, b TourRecord) int {
	da, aok := a.Day()
	db, bok := b.Day()
	switch {
	case aok && !bok:
		return -1
	case !aok && bok:
		return 1
	case aok && bok:
		if c := db.Compare(da); c != 0 {
			return c
		}
	}
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
