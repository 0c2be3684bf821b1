// Package handler implements the HTTP API of the tour log: the device API
// served by Server and the shared snapshot endpoint served by Hub.
// Methods are split into feature files (records.go, reports.go, etc.) but
// all share the same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/history"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/service"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/stats"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/syncer"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/spec"
)

// RecordServicer defines the record operations the handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the store or service layer.
type RecordServicer interface {
	Create(ctx context.Context, record domain.TourRecord) (domain.TourRecord, error)
	List(ctx context.Context, page domain.PaginationParams) ([]domain.TourRecord, int)
	Delete(ctx context.Context, id, pin string) error
}

// AdminServicer is the admin gate.
type AdminServicer interface {
	Login(ctx context.Context, password string) error
	Logout(ctx context.Context) error
	Authenticated(ctx context.Context) (bool, error)
}

// ReportServicer serves the dashboard and history views.
type ReportServicer interface {
	Monthly(year int) ([12]stats.MonthGrowth, error)
	Summary(year, month int) (service.SummaryReport, error)
	History() []history.MonthBucket
}

// ExportServicer renders downloads and e-mail drafts.
type ExportServicer interface {
	Export(format service.Format) (service.File, error)
	Email(year, month int, to string, lang domain.Language) (service.EmailDraft, error)
}

// SyncServicer manages sync settings and on-demand syncs.
type SyncServicer interface {
	Settings(ctx context.Context) (domain.Settings, error)
	UpdateSettings(ctx context.Context, syncURL string, autoSync bool) (domain.Settings, error)
	Sync(ctx context.Context) (syncer.Result, error)
}

// InsightServicer produces written analyses.
type InsightServicer interface {
	Generate(ctx context.Context, year, month int, lang domain.Language) (string, error)
}

var (
	_ RecordServicer  = (*service.RecordService)(nil)
	_ AdminServicer   = (*service.AdminService)(nil)
	_ ReportServicer  = (*service.ReportService)(nil)
	_ ExportServicer  = (*service.ExportService)(nil)
	_ SyncServicer    = (*service.SyncService)(nil)
	_ InsightServicer = (*service.InsightService)(nil)
)

// Deps are the collaborators of a Server.
type Deps struct {
	Records RecordServicer
	Admin   AdminServicer
	Reports ReportServicer
	Exports ExportServicer
	Sync    SyncServicer
	Insight InsightServicer
	Logger  *slog.Logger

	// InsightRatePerMinute limits insight requests per client IP. Zero disables it.
	InsightRatePerMinute int
	// Now defaults to time.Now. It picks the default year of reports.
	Now func() time.Time
}

// Server serves the device API.
type Server struct {
	records RecordServicer
	admin   AdminServicer
	reports ReportServicer
	exports ExportServicer
	sync    SyncServicer
	insight InsightServicer
	log     *slog.Logger
	rate    int
	now     func() time.Time
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Server{
		records: d.Records,
		admin:   d.Admin,
		reports: d.Reports,
		exports: d.Exports,
		sync:    d.Sync,
		insight: d.Insight,
		log:     d.Logger,
		rate:    d.InsightRatePerMinute,
		now:     d.Now,
	}
}

// Routes returns the device API router. Cross-cutting middleware (request
// ids, logging, CORS, body limits) is applied by the caller.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.getHealth)
	r.Get("/openapi.yaml", serveSpec)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/options", s.getOptions)

	r.Post("/admin/login", s.login)
	r.Post("/admin/logout", s.logout)
	r.Get("/admin/status", s.adminStatus)

	r.Post("/records", s.createRecord)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAdmin)

		r.Get("/records", s.listRecords)
		r.Delete("/records/{id}", s.deleteRecord)

		r.Get("/stats/monthly", s.getMonthly)
		r.Get("/stats/summary", s.getSummary)
		r.Get("/history", s.getHistory)

		r.Get("/export", s.getExport)
		r.Get("/export/email", s.getEmail)

		r.Get("/settings", s.getSettings)
		r.Put("/settings", s.putSettings)
		r.Post("/sync", s.postSync)

		r.Group(func(r chi.Router) {
			if s.rate > 0 {
				r.Use(httprate.Limit(s.rate, time.Minute,
					httprate.WithKeyFuncs(httprate.KeyByIP),
					httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
						writeJSON(w, http.StatusTooManyRequests, errorBody("rate_limited", "too many insight requests, try again later"))
					}),
				))
			}
			r.Post("/insight", s.postInsight)
		})
	})

	return r
}

func serveSpec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(spec.OpenAPI)
}
