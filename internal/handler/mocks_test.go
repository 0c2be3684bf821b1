package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/handler"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/history"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/service"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/stats"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/syncer"
)

// Each mock is a test double for one handler servicer interface.
// Set only the method fields your test needs.

type mockRecordServicer struct {
	create func(ctx context.Context, record domain.TourRecord) (domain.TourRecord, error)
	list   func(ctx context.Context, page domain.PaginationParams) ([]domain.TourRecord, int)
	delete func(ctx context.Context, id, pin string) error
}

func (m *mockRecordServicer) Create(ctx context.Context, r domain.TourRecord) (domain.TourRecord, error) {
	return m.create(ctx, r)
}
func (m *mockRecordServicer) List(ctx context.Context, p domain.PaginationParams) ([]domain.TourRecord, int) {
	return m.list(ctx, p)
}
func (m *mockRecordServicer) Delete(ctx context.Context, id, pin string) error {
	return m.delete(ctx, id, pin)
}

type mockAdminServicer struct {
	login         func(ctx context.Context, password string) error
	logout        func(ctx context.Context) error
	authenticated func(ctx context.Context) (bool, error)
}

func (m *mockAdminServicer) Login(ctx context.Context, password string) error {
	return m.login(ctx, password)
}
func (m *mockAdminServicer) Logout(ctx context.Context) error { return m.logout(ctx) }
func (m *mockAdminServicer) Authenticated(ctx context.Context) (bool, error) {
	return m.authenticated(ctx)
}

type mockReportServicer struct {
	monthly func(year int) ([12]stats.MonthGrowth, error)
	summary func(year, month int) (service.SummaryReport, error)
	history func() []history.MonthBucket
}

func (m *mockReportServicer) Monthly(year int) ([12]stats.MonthGrowth, error) {
	return m.monthly(year)
}
func (m *mockReportServicer) Summary(year, month int) (service.SummaryReport, error) {
	return m.summary(year, month)
}
func (m *mockReportServicer) History() []history.MonthBucket { return m.history() }

type mockExportServicer struct {
	export func(format service.Format) (service.File, error)
	email  func(year, month int, to string, lang domain.Language) (service.EmailDraft, error)
}

func (m *mockExportServicer) Export(f service.Format) (service.File, error) { return m.export(f) }
func (m *mockExportServicer) Email(year, month int, to string, lang domain.Language) (service.EmailDraft, error) {
	return m.email(year, month, to, lang)
}

type mockSyncServicer struct {
	settings       func(ctx context.Context) (domain.Settings, error)
	updateSettings func(ctx context.Context, syncURL string, autoSync bool) (domain.Settings, error)
	sync           func(ctx context.Context) (syncer.Result, error)
}

func (m *mockSyncServicer) Settings(ctx context.Context) (domain.Settings, error) {
	return m.settings(ctx)
}
func (m *mockSyncServicer) UpdateSettings(ctx context.Context, u string, a bool) (domain.Settings, error) {
	return m.updateSettings(ctx, u, a)
}
func (m *mockSyncServicer) Sync(ctx context.Context) (syncer.Result, error) { return m.sync(ctx) }

type mockInsightServicer struct {
	generate func(ctx context.Context, year, month int, lang domain.Language) (string, error)
}

func (m *mockInsightServicer) Generate(ctx context.Context, year, month int, lang domain.Language) (string, error) {
	return m.generate(ctx, year, month, lang)
}

// compile-time checks: every mock must satisfy its interface.
var (
	_ handler.RecordServicer  = (*mockRecordServicer)(nil)
	_ handler.AdminServicer   = (*mockAdminServicer)(nil)
	_ handler.ReportServicer  = (*mockReportServicer)(nil)
	_ handler.ExportServicer  = (*mockExportServicer)(nil)
	_ handler.SyncServicer    = (*mockSyncServicer)(nil)
	_ handler.InsightServicer = (*mockInsightServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

var fixedNow = time.Date(2025, 10, 14, 9, 30, 0, 0, time.UTC)

// loggedIn is an admin gate that has already been passed.
func loggedIn() *mockAdminServicer {
	return &mockAdminServicer{
		authenticated: func(context.Context) (bool, error) { return true, nil },
	}
}

// loggedOut is an admin gate that has not been passed.
func loggedOut() *mockAdminServicer {
	return &mockAdminServicer{
		authenticated: func(context.Context) (bool, error) { return false, nil },
	}
}

// newHTTPHandler wires a Server with the given deps into its router, with
// an authenticated admin unless deps sets one. This mirrors how the serve
// command wires it in production, minus the outer middleware.
func newHTTPHandler(d handler.Deps) http.Handler {
	if d.Admin == nil {
		d.Admin = loggedIn()
	}
	if d.Now == nil {
		d.Now = func() time.Time { return fixedNow }
	}
	return handler.NewServer(d).Routes()
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func recordFixture(id, date string, revenue int64) domain.TourRecord {
	return domain.TourRecord{
		ID:        id,
		Date:      date,
		Type:      domain.GionWalk,
		Guide:     "Nana",
		Revenue:   revenue,
		Guests:    4,
		Duration:  2.5,
		CreatedAt: fixedNow,
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

// errorCode returns error.code of an error response.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[handler.ErrorResponse](t, rec).Error.Code
}
