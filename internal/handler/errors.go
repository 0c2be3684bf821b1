package handler

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/service"
)

// ErrorDetail is the body of every error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Kind is set for insight failures only.
	Kind string `json:"kind,omitempty"`
}

// ErrorResponse wraps ErrorDetail as {"error":{...}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

func errorBody(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// notFoundBody returns an ErrorResponse for a missing resource.
// The caller supplies the human-readable message (e.g. "record not found")
// because the handler is the layer that knows what was being looked up.
func notFoundBody(message string) ErrorResponse {
	return errorBody("not_found", message)
}

// validationBody returns an ErrorResponse for a domain validation failure.
func validationBody(err error) ErrorResponse {
	return errorBody("validation_error", unwrapMessage(err))
}

// requestBody returns an ErrorResponse for a bad request rejected before
// reaching the service layer (e.g. missing or malformed body).
func requestBody(message string) ErrorResponse {
	return errorBody("validation_error", message)
}

// unwrapMessage extracts the human-readable part of a validation failure.
// e.g. "service.RecordService.Create: validation error: guests: must be at least 1"
// becomes "guests: must be at least 1".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Field + ": " + ve.Reason
	}
	return err.Error()
}

// insightStatus maps an insight failure kind to its HTTP status.
var insightStatus = map[domain.InsightKind]int{
	domain.InsightNoData:             http.StatusUnprocessableEntity,
	domain.InsightMissingCredentials: http.StatusServiceUnavailable,
	domain.InsightInvalidCredentials: http.StatusBadGateway,
	domain.InsightQuotaExceeded:      http.StatusTooManyRequests,
	domain.InsightTransient:          http.StatusBadGateway,
}

// writeError translates a service error into a status code and error body.
// Unknown errors are logged and reported as 500 without their message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var failure *service.InsightFailure
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, notFoundBody("record not found"))
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized", "admin login required"))
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody("forbidden", "delete PIN does not match"))
	case errors.Is(err, domain.ErrSync):
		s.log.WarnContext(r.Context(), "sync failed", "error", err)
		writeJSON(w, http.StatusBadGateway, errorBody("sync_failed", err.Error()))
	case errors.As(err, &failure):
		status, ok := insightStatus[failure.Kind]
		if !ok {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, ErrorResponse{Error: ErrorDetail{
			Code:    "insight_failed",
			Message: failure.Message,
			Kind:    string(failure.Kind),
		}})
	default:
		s.log.ErrorContext(r.Context(), "request failed", "error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a JSON request body into v. Unknown fields are ignored.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	return json.NewDecoder(r.Body).Decode(v)
}
