package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
)

// RecordRequest is the body of POST /records.
type RecordRequest struct {
	Date     openapi_types.Date `json:"date"`
	Type     domain.TourType    `json:"type"`
	Guide    string             `json:"guide"`
	Revenue  int64              `json:"revenue"`
	Guests   int                `json:"guests"`
	Duration float64            `json:"duration"`
	Notes    string             `json:"notes,omitempty"`
}

// RecordResponse is one record as returned by the API.
type RecordResponse struct {
	ID        string             `json:"id"`
	Date      openapi_types.Date `json:"date"`
	Type      domain.TourType    `json:"type"`
	Guide     string             `json:"guide"`
	Revenue   int64              `json:"revenue"`
	Guests    int                `json:"guests"`
	Duration  float64            `json:"duration"`
	Notes     string             `json:"notes,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// PaginationMeta describes the page returned by a list endpoint.
type PaginationMeta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// RecordPage is the body of GET /records.
type RecordPage struct {
	Data       []RecordResponse `json:"data"`
	Pagination PaginationMeta   `json:"pagination"`
}

// createRecord handles POST /records.
func (s *Server) createRecord(w http.ResponseWriter, r *http.Request) {
	var body RecordRequest
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid record body: "+err.Error()))
		return
	}

	created, err := s.records.Create(r.Context(), requestToDomain(body))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, domainToResponse(created))
}

// listRecords handles GET /records?page=&limit=.
func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	page := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))
	records, total := s.records.List(r.Context(), page)

	out := make([]RecordResponse, len(records))
	for i, rec := range records {
		out[i] = domainToResponse(rec)
	}
	writeJSON(w, http.StatusOK, RecordPage{
		Data:       out,
		Pagination: PaginationMeta{Page: page.Page, Limit: page.Limit, Total: total},
	})
}

// deleteRecord handles DELETE /records/{id}. The PIN travels in the
// X-Delete-Pin header.
func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.records.Delete(r.Context(), id, r.Header.Get("X-Delete-Pin")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- mapping helpers -------------------------------------------------------

func requestToDomain(b RecordRequest) domain.TourRecord {
	rec := domain.TourRecord{
		Type:     b.Type,
		Guide:    b.Guide,
		Revenue:  b.Revenue,
		Guests:   b.Guests,
		Duration: b.Duration,
		Notes:    b.Notes,
	}
	if !b.Date.IsZero() {
		rec.Date = b.Date.Format(domain.DateLayout)
	}
	return rec
}

func domainToResponse(rec domain.TourRecord) RecordResponse {
	out := RecordResponse{
		ID:        rec.ID,
		Type:      rec.Type,
		Guide:     rec.Guide,
		Revenue:   rec.Revenue,
		Guests:    rec.Guests,
		Duration:  rec.Duration,
		Notes:     rec.Notes,
		CreatedAt: rec.CreatedAt,
	}
	if d, ok := rec.Day(); ok {
		out.Date = openapi_types.Date{Time: d}
	}
	return out
}

// queryInt returns the named query parameter as an int, or nil when it is
// absent or not a number.
func queryInt(r *http.Request, name string) *int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}
