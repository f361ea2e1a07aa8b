// Package httpx carries the HTTP plumbing shared by every handler: the
// response envelope, middleware chaining, per-key rate limiting, and access
// token authentication.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Envelope is the uniform response body. Every response, including errors,
// carries this shape.
type Envelope struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
	StatusCode int    `json:"statusCode"`
}

// Send writes a success envelope with the given status code.
func Send(w http.ResponseWriter, code int, message string, data any) {
	writeEnvelope(w, Envelope{
		Status:     StatusSuccess,
		Message:    message,
		Data:       data,
		StatusCode: code,
	})
}

// Fail writes a failed envelope with the given status code and no data.
func Fail(w http.ResponseWriter, code int, message string) {
	writeEnvelope(w, Envelope{
		Status:     StatusFailed,
		Message:    message,
		Data:       nil,
		StatusCode: code,
	})
}

func writeEnvelope(w http.ResponseWriter, env Envelope) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.StatusCode)
	_ = json.NewEncoder(w).Encode(env)
}

// NoCache prevents intermediaries from caching token-bearing responses.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
