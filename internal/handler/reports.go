package handler

import (
	"net/http"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/history"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/stats"
)

type monthlyResponse struct {
	Year   int                 `json:"year"`
	Months []stats.MonthGrowth `json:"months"`
}

type historyResponse struct {
	Months []history.MonthBucket `json:"months"`
}

type tourTypeOption struct {
	Code    domain.TourType `json:"code"`
	LabelJA string          `json:"label_ja"`
	LabelEN string          `json:"label_en"`
}

type optionsResponse struct {
	TourTypes []tourTypeOption `json:"tour_types"`
	Guides    []string         `json:"guides"`
	Languages []string         `json:"languages"`
}

// getOptions handles GET /options: the choices offered by the entry form.
func (s *Server) getOptions(w http.ResponseWriter, _ *http.Request) {
	types := domain.TourTypes()
	out := optionsResponse{
		TourTypes: make([]tourTypeOption, len(types)),
		Guides:    domain.DefaultGuides,
		Languages: []string{string(domain.Japanese), string(domain.English)},
	}
	for i, t := range types {
		out.TourTypes[i] = tourTypeOption{
			Code:    t,
			LabelJA: t.Label(domain.Japanese),
			LabelEN: t.Label(domain.English),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// getMonthly handles GET /stats/monthly?year=. The year defaults to the
// current one.
func (s *Server) getMonthly(w http.ResponseWriter, r *http.Request) {
	year := s.queryYear(r)
	months, err := s.reports.Monthly(year)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, monthlyResponse{Year: year, Months: months[:]})
}

// getSummary handles GET /stats/summary?year=&month=. A missing month
// selects the whole year.
func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.reports.Summary(s.queryYear(r), queryMonth(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// getHistory handles GET /history.
func (s *Server) getHistory(w http.ResponseWriter, _ *http.Request) {
	months := s.reports.History()
	if months == nil {
		months = []history.MonthBucket{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Months: months})
}

func (s *Server) queryYear(r *http.Request) int {
	if y := queryInt(r, "year"); y != nil {
		return *y
	}
	return s.now().Year()
}

func queryMonth(r *http.Request) int {
	if m := queryInt(r, "month"); m != nil {
		return *m
	}
	return stats.AllMonths
}

func queryLang(r *http.Request) domain.Language {
	return domain.ParseLanguage(r.URL.Query().Get("lang"))
}
