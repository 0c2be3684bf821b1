package service

import (
	"fmt"
	"time"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/export"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/stats"
)

// exportPrefix names downloaded files.
const exportPrefix = "wonderland_records"

// Format selects a tabular export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// File is a rendered export ready for download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// EmailDraft is a composed report for a mail client.
type EmailDraft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Mailto  string `json:"mailto"`
}

// ExportService renders the record set for spreadsheets and e-mail.
type ExportService struct {
	reports *ReportService
	records RecordReader
	now     func() time.Time
}

// NewExportService constructs an ExportService. now may be nil.
func NewExportService(records RecordReader, now func() time.Time) *ExportService {
	if now == nil {
		now = time.Now
	}
	return &ExportService{reports: NewReportService(records), records: records, now: now}
}

// Export renders every record in format.
func (s *ExportService) Export(format Format) (File, error) {
	records := s.records.Records()
	now := s.now()
	switch format {
	case FormatCSV, "":
		return File{
			Name:        export.FileName(exportPrefix, "csv", now),
			ContentType: "text/csv; charset=utf-8",
			Data:        export.ToCSV(records),
		}, nil
	case FormatXLSX:
		data, err := export.ToXLSX(records)
		if err != nil {
			return File{}, fmt.Errorf("service.ExportService.Export: %w", err)
		}
		return File{
			Name:        export.FileName(exportPrefix, "xlsx", now),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	default:
		return File{}, &domain.ValidationError{Field: "format", Reason: "must be csv or xlsx"}
	}
}

// Email composes the report of one period addressed to to.
func (s *ExportService) Email(year, month int, to string, lang domain.Language) (EmailDraft, error) {
	records, err := s.reports.PeriodRecords(year, month)
	if err != nil {
		return EmailDraft{}, err
	}
	summary := stats.YearSummary(records, year, month)
	subject := export.Subject(summary, lang)
	body := export.ToEmailBody(records, summary, lang)
	return EmailDraft{
		Subject: subject,
		Body:    body,
		Mailto:  export.MailtoURL(to, subject, body),
	}, nil
}
