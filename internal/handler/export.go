package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/service"
)

// getExport handles GET /export?format=csv|xlsx.
// The records are returned as a file download with a dated file name.
func (s *Server) getExport(w http.ResponseWriter, r *http.Request) {
	file, err := s.exports.Export(service.Format(r.URL.Query().Get("format")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

// getEmail handles GET /export/email?year=&month=&to=&lang=.
func (s *Server) getEmail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	draft, err := s.exports.Email(s.queryYear(r), queryMonth(r), q.Get("to"), queryLang(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}
