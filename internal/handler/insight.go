package handler

import (
	"net/http"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
)

type insightRequest struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Lang  string `json:"lang"`
}

type insightResponse struct {
	Text string `json:"text"`
}

// postInsight handles POST /insight. A zero year selects the current one
// and a zero month selects the whole year.
func (s *Server) postInsight(w http.ResponseWriter, r *http.Request) {
	var body insightRequest
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid insight body: "+err.Error()))
		return
	}
	if body.Year == 0 {
		body.Year = s.now().Year()
	}

	text, err := s.insight.Generate(r.Context(), body.Year, body.Month, domain.ParseLanguage(body.Lang))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, insightResponse{Text: text})
}
