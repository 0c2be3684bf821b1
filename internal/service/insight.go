package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/insight"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/metrics"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/stats"
)

// Analyzer produces a written analysis. *insight.Client satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, records []domain.TourRecord, lang domain.Language) (string, error)
}

var _ Analyzer = (*insight.Client)(nil)

// InsightFailure carries the localized message shown in place of an insight.
type InsightFailure struct {
	Kind    domain.InsightKind
	Message string
	Err     error
}

func (e *InsightFailure) Error() string { return e.Err.Error() }
func (e *InsightFailure) Unwrap() error { return e.Err }

// InsightService asks the analyzer about one period of records.
// Identical concurrent requests share one upstream call.
type InsightService struct {
	reports  *ReportService
	analyzer Analyzer
	log      *slog.Logger
	group    singleflight.Group
}

// NewInsightService constructs an InsightService.
func NewInsightService(records RecordReader, analyzer Analyzer, log *slog.Logger) *InsightService {
	if log == nil {
		log = slog.Default()
	}
	return &InsightService{reports: NewReportService(records), analyzer: analyzer, log: log}
}

// Generate returns the analysis of the period, prefixed with the period
// label. Every failure is an *InsightFailure with a message in lang.
func (s *InsightService) Generate(ctx context.Context, year, month int, lang domain.Language) (string, error) {
	records, err := s.reports.PeriodRecords(year, month)
	if err != nil {
		return "", err
	}
	period := stats.Period{Year: year, Month: month}

	// Callers of the same period share one request, so it must not end
	// when the first caller goes away. The analyzer bounds it with its own
	// timeout.
	key := fmt.Sprintf("%d-%d-%s", year, month, lang)
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.analyzer.Analyze(context.WithoutCancel(ctx), records, lang)
	})
	if err != nil {
		kind := domain.InsightTransient
		var ie *domain.InsightError
		if errors.As(err, &ie) {
			kind = ie.Kind
		}
		metrics.InsightRequests.WithLabelValues(string(kind)).Inc()
		return "", &InsightFailure{Kind: kind, Message: insight.UserMessage(err, lang), Err: err}
	}

	metrics.InsightRequests.WithLabelValues("ok").Inc()
	return fmt.Sprintf("【%s】\n\n%s", period.Label(lang), v.(string)), nil
}
