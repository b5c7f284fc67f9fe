// Package httputil writes JSON responses and maps coded errors to HTTP
// status codes.
package httputil

import (
	"encoding/json"
	"net/http"

	"Fastener/internal/calc/calcerr"
)

type ErrorBody struct {
	Code    calcerr.Code `json:"code"`
	Message string       `json:"message,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Status maps an error code to the HTTP status returned for it.
func Status(code calcerr.Code) int {
	switch code {
	case calcerr.CodeInvalidThreadDesignation,
		calcerr.CodeUnsupportedThreadSize,
		calcerr.CodeUnknownMaterial,
		calcerr.CodeInconsistentUnits,
		calcerr.CodeMalformedLoadCase,
		calcerr.CodeConfiguration,
		calcerr.CodeUndefinedResult:
		return http.StatusUnprocessableEntity
	case calcerr.CodeNotFound:
		return http.StatusNotFound
	case calcerr.CodeCanceled:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// WriteError writes {code, message}. Internal errors omit the message.
func WriteError(w http.ResponseWriter, err error) {
	code := calcerr.CodeOf(err)
	body := ErrorBody{Code: code}
	if code != calcerr.CodeInternal {
		body.Message = calcerr.MessageOf(err)
	}
	WriteJSON(w, Status(code), body)
}

// DecodeJSON decodes a request body, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
