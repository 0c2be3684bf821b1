package handler

import (
	"net/http"
	"time"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
)

type settingsRequest struct {
	SyncURL  string `json:"sync_url"`
	AutoSync bool   `json:"auto_sync"`
}

type settingsResponse struct {
	SyncURL    string     `json:"sync_url"`
	AutoSync   bool       `json:"auto_sync"`
	LastSyncAt *time.Time `json:"last_sync_at"`
}

type syncResponse struct {
	Records int        `json:"records"`
	Dropped int        `json:"dropped"`
	Stale   bool       `json:"stale"`
	At      *time.Time `json:"at,omitempty"`
}

func toSettingsResponse(s domain.Settings) settingsResponse {
	return settingsResponse{SyncURL: s.SyncURL, AutoSync: s.AutoSync, LastSyncAt: s.LastSyncAt}
}

// getSettings handles GET /settings.
func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.sync.Settings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(settings))
}

// putSettings handles PUT /settings.
func (s *Server) putSettings(w http.ResponseWriter, r *http.Request) {
	var body settingsRequest
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid settings body: "+err.Error()))
		return
	}
	settings, err := s.sync.UpdateSettings(r.Context(), body.SyncURL, body.AutoSync)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(settings))
}

// postSync handles POST /sync: one push-then-pull round, run to completion
// before the response is written.
func (s *Server) postSync(w http.ResponseWriter, r *http.Request) {
	res, err := s.sync.Sync(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := syncResponse{Records: len(res.Records), Dropped: res.Dropped, Stale: res.Stale}
	if !res.At.IsZero() {
		at := res.At
		out.At = &at
	}
	writeJSON(w, http.StatusOK, out)
}
