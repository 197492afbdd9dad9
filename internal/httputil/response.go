// Package httputil holds the JSON response helpers shared by every
// handler package. Error bodies carry a human message plus an optional
// machine-readable code from codes.go.
package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the wire shape of every error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// RespondJSON writes data as a JSON body with the given status.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// The status line is already out, so all we can do is log.
		log.Printf("ERROR: encoding response body: %v", err)
	}
}

// RespondError writes an error body without a machine-readable code.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, ErrorResponse{Error: message}, statusCode)
}

// RespondErrorWithCode writes an error body clients can dispatch on.
func RespondErrorWithCode(w http.ResponseWriter, message string, code string, statusCode int) {
	RespondJSON(w, ErrorResponse{Error: message, Code: code}, statusCode)
}
