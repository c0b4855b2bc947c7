package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/taxfolio/backend/internal/domain"
	"github.com/taxfolio/backend/internal/errs"
)

// toJSON writes a JSON response with status code.
func toJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON decodes the request body, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) { writeErr(w, http.StatusBadRequest, msg, "") }
func notFound(w http.ResponseWriter)               { writeErr(w, http.StatusNotFound, "not_found", "not_found") }
func conflict(w http.ResponseWriter, msg string)   { writeErr(w, http.StatusConflict, msg, "conflict") }
func unprocessable(w http.ResponseWriter, msg string) {
	writeErr(w, http.StatusUnprocessableEntity, msg, "validation_error")
}
func internalError(w http.ResponseWriter) {
	writeErr(w, http.StatusInternalServerError, "internal error", "")
}

// writeDomainErr maps sentinel errors to HTTP statuses.
func writeDomainErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		notFound(w)
	case errors.Is(err, errs.ErrConflict):
		conflict(w, err.Error())
	case errors.Is(err, domain.ErrDuplicateYearRecord):
		conflict(w, err.Error())
	case errors.Is(err, errs.ErrInvalid):
		unprocessable(w, err.Error())
	case errors.Is(err, errs.ErrConfigNotFound):
		unprocessable(w, err.Error())
	default:
		internalError(w)
	}
}
