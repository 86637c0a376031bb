package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-api-registration/internal/pkg/validate"
)

// Error codes returned in ErrorEnvelope.Code.
const (
	codeInvalidRequestData = "invalid_request_data"
	codeMalformedRequest   = "malformed_request"
	codeServerError        = "server_error"
	codeTokenNotFound      = "token_not_found"
	codeTokenExpired       = "token_expired"
)

// MessageEnvelope is the generic success wrapper.
type MessageEnvelope struct {
	Message string `json:"message"`
}

// ErrorEnvelope is returned for every failed request. Detail is only set for
// invalid_request_data and maps each field to its failures.
type ErrorEnvelope struct {
	Code   string                `json:"code"`
	Detail validate.FieldErrors `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, ErrorEnvelope{Code: code})
}

func writeFieldErrors(w http.ResponseWriter, errs validate.FieldErrors) {
	writeJSON(w, http.StatusBadRequest, ErrorEnvelope{Code: codeInvalidRequestData, Detail: errs})
}
