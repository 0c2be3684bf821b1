package service

import (
	"slices"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/history"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/stats"
)

// SummaryReport is a period summary with its per-type breakdown.
type SummaryReport struct {
	stats.Summary
	RevenuePerGuest float64           `json:"revenue_per_guest"`
	ByType          []stats.TypeTotal `json:"by_type"`
}

// ReportService derives dashboard and history views from the current records.
// Nothing it returns is stored.
type ReportService struct {
	records RecordReader
}

// NewReportService constructs a ReportService.
func NewReportService(records RecordReader) *ReportService {
	return &ReportService{records: records}
}

// Monthly returns the twelve months of year with growth and peak flags.
func (s *ReportService) Monthly(year int) ([12]stats.MonthGrowth, error) {
	if err := checkPeriod(year, stats.AllMonths); err != nil {
		return [12]stats.MonthGrowth{}, err
	}
	return stats.Growth(stats.MonthlyTotals(s.records.Records(), year)), nil
}

// Summary totals year, or one month of it when month is 1-12.
func (s *ReportService) Summary(year, month int) (SummaryReport, error) {
	if err := checkPeriod(year, month); err != nil {
		return SummaryReport{}, err
	}
	records := s.records.Records()
	sum := stats.YearSummary(records, year, month)
	return SummaryReport{
		Summary:         sum,
		RevenuePerGuest: sum.RevenuePerGuest(),
		ByType:          stats.ByTourType(records, sum.Period),
	}, nil
}

// History groups every record by month, newest month first.
func (s *ReportService) History() []history.MonthBucket {
	return history.GroupByMonth(s.records.Records())
}

// PeriodRecords returns the records within the period, newest first.
func (s *ReportService) PeriodRecords(year, month int) ([]domain.TourRecord, error) {
	if err := checkPeriod(year, month); err != nil {
		return nil, err
	}
	out := stats.Filter(s.records.Records(), stats.Period{Year: year, Month: month})
	slices.SortStableFunc(out, domain.NewestFirst)
	return out, nil
}

func checkPeriod(year, month int) error {
	if year < 1 || year > 9999 {
		return &domain.ValidationError{Field: "year", Reason: "must be between 1 and 9999"}
	}
	if month < stats.AllMonths || month > 12 {
		return &domain.ValidationError{Field: "month", Reason: "must be between 0 and 12"}
	}
	return nil
}
