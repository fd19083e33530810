// Package httputil centralizes JSON encoding and the error envelope so
// handlers stay thin.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "riskboard/pkg/domain-errors"
)

type errorBody struct {
	Error       dErrors.Code `json:"error"`
	Description string       `json:"error_description,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error to the error envelope. Internal errors keep
// their detail out of the response body.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := errorBody{Error: code}
	if code != dErrors.CodeInternal {
		body.Description = dErrors.MessageOf(err)
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), body)
}

// Decode parses the request body into T. On failure it writes a bad_request
// envelope and returns false.
func Decode[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (T, bool) {
	var payload T
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.WarnContext(r.Context(), "malformed request body", "error", err)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed JSON body"))
		return payload, false
	}
	return payload, true
}
