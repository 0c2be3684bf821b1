// Package stats computes the dashboard numbers from a record collection.
// Every function is pure: the same input always yields the same output.
// Money is accumulated as int64; floats appear only in ratios and hours.
package stats

import (
	"fmt"
	"time"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
)

// AllMonths selects the whole year in a Period.
const AllMonths = 0

// Period is a calendar year, optionally narrowed to one month (1-12).
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"` // AllMonths for the whole year
}

// Contains reports whether day falls within p.
func (p Period) Contains(day time.Time) bool {
	if day.Year() != p.Year {
		return false
	}
	return p.Month == AllMonths || int(day.Month()) == p.Month
}

// Label renders p for display, e.g. "2025年10月" or "October 2025".
func (p Period) Label(lang domain.Language) string {
	if lang == domain.English {
		if p.Month == AllMonths {
			return fmt.Sprintf("%d (all months)", p.Year)
		}
		return fmt.Sprintf("%s %d", time.Month(p.Month), p.Year)
	}
	if p.Month == AllMonths {
		return fmt.Sprintf("%d年 (通年)", p.Year)
	}
	return fmt.Sprintf("%d年%d月", p.Year, p.Month)
}

// MonthTotal is the aggregate of one calendar month.
type MonthTotal struct {
	Month   int   `json:"month"`
	Revenue int64 `json:"revenue"`
	Guests  int   `json:"guests"`
	Count   int   `json:"count"`
}

// MonthGrowth is a MonthTotal with the derived dashboard metrics.
type MonthGrowth struct {
	MonthTotal

	// GrowthPct is nil for January, which has no prior month in the series.
	GrowthPct *float64 `json:"growth_pct"`
	IsPeak    bool     `json:"is_peak"`
	// HeightPct is the revenue relative to the year's best month, 0-100.
	HeightPct float64 `json:"height_pct"`
}

// Summary totals a Period.
type Summary struct {
	Period  Period  `json:"period"`
	Revenue int64   `json:"revenue"`
	Guests  int     `json:"guests"`
	Count   int     `json:"count"`
	Hours   float64 `json:"hours"`
}

// TypeTotal totals one tour type within a Period.
type TypeTotal struct {
	Type    domain.TourType `json:"type"`
	Revenue int64           `json:"revenue"`
	Guests  int             `json:"guests"`
	Count   int             `json:"count"`
}

// MonthlyTotals sums revenue, guests and count per month of year.
// Months without records report zeros.
func MonthlyTotals(records []domain.TourRecord, year int) [12]MonthTotal {
	var out [12]MonthTotal
	for i := range out {
		out[i].Month = i + 1
	}
	for _, r := range records {
		day, ok := r.Day()
		if !ok || day.Year() != year {
			continue
		}
		m := &out[day.Month()-1]
		m.Revenue += r.Revenue
		m.Guests += r.Guests
		m.Count++
	}
	return out
}

// Growth derives month-over-month growth and the peak month.
// A zero prior month yields 0% growth rather than an infinite ratio.
// The peak is the first month holding the maximum, and only when that
// maximum is positive.
func Growth(totals [12]MonthTotal) [12]MonthGrowth {
	var out [12]MonthGrowth

	peak, maxRev := -1, int64(0)
	for i, t := range totals {
		if t.Revenue > maxRev {
			peak, maxRev = i, t.Revenue
		}
	}

	for i, t := range totals {
		g := MonthGrowth{MonthTotal: t, IsPeak: i == peak}
		if i > 0 {
			pct := 0.0
			if prev := totals[i-1].Revenue; prev != 0 {
				pct = float64(t.Revenue-prev) / float64(prev) * 100
			}
			g.GrowthPct = &pct
		}
		if maxRev > 0 {
			g.HeightPct = float64(t.Revenue) / float64(maxRev) * 100
		}
		out[i] = g
	}
	return out
}

// Filter returns the records whose date falls within p, in input order.
func Filter(records []domain.TourRecord, p Period) []domain.TourRecord {
	out := []domain.TourRecord{}
	for _, r := range records {
		if day, ok := r.Day(); ok && p.Contains(day) {
			out = append(out, r)
		}
	}
	return out
}

// YearSummary totals the records of year, or of one month when month is
// between 1 and 12. Pass AllMonths for the whole year.
func YearSummary(records []domain.TourRecord, year, month int) Summary {
	p := Period{Year: year, Month: month}
	s := Summary{Period: p}
	for _, r := range Filter(records, p) {
		s.Revenue += r.Revenue
		s.Guests += r.Guests
		s.Count++
		s.Hours += r.Duration
	}
	return s
}

// ByTourType totals the Period per tour type, in declaration order.
// Every type is present, including those without records.
func ByTourType(records []domain.TourRecord, p Period) []TypeTotal {
	types := domain.TourTypes()
	out := make([]TypeTotal, len(types))
	index := make(map[domain.TourType]int, len(types))
	for i, t := range types {
		out[i].Type = t
		index[t] = i
	}
	for _, r := range Filter(records, p) {
		i, ok := index[r.Type]
		if !ok {
			continue
		}
		out[i].Revenue += r.Revenue
		out[i].Guests += r.Guests
		out[i].Count++
	}
	return out
}

// RevenuePerGuest returns the average revenue per guest of s, or 0 without guests.
func (s Summary) RevenuePerGuest() float64 {
	if s.Guests == 0 {
		return 0
	}
	return float64(s.Revenue) / float64(s.Guests)
}
