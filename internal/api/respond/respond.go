// Package respond writes the JSON envelopes shared by every endpoint and maps
// errors to responses in one place.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/isdelr/tasktrack-be/internal/apperror"
	"github.com/rs/zerolog/hlog"
)

// Envelope is the body of every successful response.
type Envelope struct {
	Success bool   `json:"success"`
	Count   *int   `json:"count,omitempty"`
	Token   string `json:"token,omitempty"`
	Data    any    `json:"data"`
}

// ErrorEnvelope is the body of every failed response.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Success writes {success: true, data}.
func Success(w http.ResponseWriter, status int, data any) {
	JSON(w, status, Envelope{Success: true, Data: data})
}

// List writes {success: true, count, data}.
func List(w http.ResponseWriter, data any, count int) {
	JSON(w, http.StatusOK, Envelope{Success: true, Count: &count, Data: data})
}

// Token writes {success: true, token, data}.
func Token(w http.ResponseWriter, status int, token string, data any) {
	JSON(w, status, Envelope{Success: true, Token: token, Data: data})
}

// Error maps err to its status and writes the error envelope.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := apperror.StatusOf(err)
	logger := hlog.FromRequest(r)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("Request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Str("kind", apperror.KindOf(err).String()).Msg("Request rejected")
	}
	JSON(w, status, ErrorEnvelope{Success: false, Error: apperror.MessageOf(err)})
}
