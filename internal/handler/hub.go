package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/metrics"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/repo"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/syncer"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/validation"
)

// Hub serves the shared snapshot that devices push to and pull from.
// It speaks the same action-based protocol as the device sync client:
// GET ?action=get returns every record, POST {"action":"sync","data":[...]}
// overwrites them.
type Hub struct {
	snapshots repo.SnapshotRepo
	loc       *time.Location
	log       *slog.Logger
}

type hubPushResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
	Dropped int    `json:"dropped"`
}

// NewHub constructs a Hub over the given snapshot repository. Pushed
// timestamp dates are reduced to a calendar day in loc.
func NewHub(snapshots repo.SnapshotRepo, loc *time.Location, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{snapshots: snapshots, loc: loc, log: log}
}

// Routes returns the hub router.
func (h *Hub) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	})
	r.Get("/", h.get)
	r.Post("/", h.push)
	return r
}

func (h *Hub) get(w http.ResponseWriter, r *http.Request) {
	if action := r.URL.Query().Get("action"); action != "get" {
		writeJSON(w, http.StatusBadRequest, requestBody("unknown action "+strconv.Quote(action)))
		return
	}

	records, err := h.snapshots.List(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "hub list failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
		return
	}
	body, err := syncer.MarshalSnapshot(records)
	if err != nil {
		h.log.ErrorContext(r.Context(), "hub encode failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// push accepts any content type because devices send text/plain.
func (h *Hub) push(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("could not read body"))
		return
	}
	action, records, skipped, err := syncer.UnmarshalPush(raw, h.loc)
	if err != nil {
		metrics.HubSnapshots.WithLabelValues("invalid").Inc()
		writeJSON(w, http.StatusBadRequest, requestBody("invalid push body: "+err.Error()))
		return
	}
	if action != "sync" {
		metrics.HubSnapshots.WithLabelValues("invalid").Inc()
		writeJSON(w, http.StatusBadRequest, requestBody("unknown action "+strconv.Quote(action)))
		return
	}

	kept, dropped := validation.Sanitize(records)
	dropped += skipped
	if err := h.snapshots.Replace(r.Context(), kept); err != nil {
		metrics.HubSnapshots.WithLabelValues("error").Inc()
		h.log.ErrorContext(r.Context(), "hub replace failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
		return
	}
	metrics.HubSnapshots.WithLabelValues("ok").Inc()
	if dropped > 0 {
		h.log.InfoContext(r.Context(), "hub dropped invalid records", "dropped", dropped)
	}
	writeJSON(w, http.StatusOK, hubPushResponse{Status: "ok", Records: len(kept), Dropped: dropped})
}
