package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/handler"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/service"
)

// ---- GET /export -----------------------------------------------------------

func TestExport_csvDownload(t *testing.T) {
	var got service.Format
	exports := &mockExportServicer{
		export: func(f service.Format) (service.File, error) {
			got = f
			return service.File{
				Name:        "wonderland_records_2025-10-14.csv",
				ContentType: "text/csv; charset=utf-8",
				Data:        []byte("\ufeffDate,Type\n"),
			}, nil
		},
	}
	h := newHTTPHandler(handler.Deps{Exports: exports})

	rec := do(h, httptest.NewRequest(http.MethodGet, "/export?format=csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.FormatCSV, got)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="wonderland_records_2025-10-14.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "\ufeffDate,Type\n", rec.Body.String())
}

func TestExport_422_onUnknownFormat(t *testing.T) {
	exports := &mockExportServicer{
		export: func(service.Format) (service.File, error) {
			return service.File{}, &domain.ValidationError{Field: "format", Reason: "must be csv or xlsx"}
		},
	}
	h := newHTTPHandler(handler.Deps{Exports: exports})

	rec := do(h, httptest.NewRequest(http.MethodGet, "/export?format=pdf", nil))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "validation_error", errorCode(t, rec))
}

func TestExport_500_onRenderFailure(t *testing.T) {
	exports := &mockExportServicer{
		export: func(service.Format) (service.File, error) {
			return service.File{}, fmt.Errorf("service.ExportService.Export: %w", fmt.Errorf("zip"))
		},
	}
	h := newHTTPHandler(handler.Deps{Exports: exports})

	rec := do(h, httptest.NewRequest(http.MethodGet, "/export?format=xlsx", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// ---- GET /export/email -----------------------------------------------------

func TestEmail_200(t *testing.T) {
	var gotYear, gotMonth int
	var gotTo string
	var gotLang domain.Language
	exports := &mockExportServicer{
		email: func(year, month int, to string, lang domain.Language) (service.EmailDraft, error) {
			gotYear, gotMonth, gotTo, gotLang = year, month, to, lang
			return service.EmailDraft{Subject: "subject", Body: "body", Mailto: "mailto:boss@example.com"}, nil
		},
	}
	h := newHTTPHandler(handler.Deps{Exports: exports})

	rec := do(h, httptest.NewRequest(http.MethodGet, "/export/email?year=2025&month=9&to=boss@example.com&lang=en", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2025, gotYear)
	assert.Equal(t, 9, gotMonth)
	assert.Equal(t, "boss@example.com", gotTo)
	assert.Equal(t, domain.English, gotLang)
	body := decode[service.EmailDraft](t, rec)
	assert.Equal(t, "mailto:boss@example.com", body.Mailto)
}

func TestEmail_defaultsToJapanese(t *testing.T) {
	var gotLang domain.Language
	exports := &mockExportServicer{
		email: func(_, _ int, _ string, lang domain.Language) (service.EmailDraft, error) {
			gotLang = lang
			return service.EmailDraft{}, nil
		},
	}
	h := newHTTPHandler(handler.Deps{Exports: exports})

	rec := do(h, httptest.NewRequest(http.MethodGet, "/export/email", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.Japanese, gotLang)
}
