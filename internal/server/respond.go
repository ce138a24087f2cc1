package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// Error codes returned in APIError.Code.
const (
	codeUnknownTranslation = "unknown_translation"
	codeNotFound           = "not_found"
	codeBadRequest         = "bad_request"
	codeLoadFailed         = "load_failed"
	codeRateLimited        = "rate_limited"
)

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

func newMeta() *APIMeta {
	return &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)}
}

func respond(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, APIResponse{Success: true, Data: data, Meta: newMeta()})
}

// respondList is respond with meta.total set.
func respondList(w http.ResponseWriter, data any, total int) {
	meta := newMeta()
	meta.Total = total
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data, Meta: meta})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIResponse{
		Error: &APIError{Code: code, Message: message},
		Meta:  newMeta(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
