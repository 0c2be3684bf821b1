package handler

import (
	"net/http"
)

type loginRequest struct {
	Password string `json:"password"`
}

type adminStatusResponse struct {
	Authenticated bool `json:"authenticated"`
}

// login handles POST /admin/login.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid login body: "+err.Error()))
		return
	}
	if err := s.admin.Login(r.Context(), body.Password); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// logout handles POST /admin/logout.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.Logout(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// adminStatus handles GET /admin/status.
func (s *Server) adminStatus(w http.ResponseWriter, r *http.Request) {
	ok, err := s.admin.Authenticated(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, adminStatusResponse{Authenticated: ok})
}

// requireAdmin rejects requests until the admin gate has been passed.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, err := s.admin.Authenticated(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized", "admin login required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
