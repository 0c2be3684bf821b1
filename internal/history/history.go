// Package history partitions records into calendar-month buckets for the
// history view.
package history

import (
	"cmp"
	"slices"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
)

// MonthBucket is one calendar month of records.
type MonthBucket struct {
	// YearMonth is the canonical "YYYY-MM" key.
	YearMonth    string              `json:"year_month"`
	TotalRevenue int64               `json:"total_revenue"`
	TotalGuests  int                 `json:"total_guests"`
	Items        []domain.TourRecord `json:"items"`
}

// GroupByMonth buckets records by YYYY-MM, most recent month first.
// Within a bucket items are ordered by date descending, then CreatedAt
// descending, then id, so the output is fully determined by the input set.
// Records with an unparseable date are left out.
func GroupByMonth(records []domain.TourRecord) []MonthBucket {
	byKey := map[string]*MonthBucket{}
	for _, r := range records {
		key, ok := r.YearMonth()
		if !ok {
			continue
		}
		b, exists := byKey[key]
		if !exists {
			b = &MonthBucket{YearMonth: key}
			byKey[key] = b
		}
		b.TotalRevenue += r.Revenue
		b.TotalGuests += r.Guests
		b.Items = append(b.Items, r)
	}

	out := make([]MonthBucket, 0, len(byKey))
	for _, b := range byKey {
		slices.SortStableFunc(b.Items, domain.NewestFirst)
		out = append(out, *b)
	}
	slices.SortFunc(out, func(a, b MonthBucket) int {
		return cmp.Compare(b.YearMonth, a.YearMonth)
	})
	return out
}
