package fakebackend

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the backend's error envelope.
type ErrorResponse struct {
	Error errorDetail `json:"error"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteError writes a coded error response
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: errorDetail{Code: code, Message: message}})
}
