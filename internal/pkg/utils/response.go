package utils

import (
	"encoding/json"
	"net/http"

	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/errors"
)

// Envelope is the body of every API response. Success responses carry
// Data and an optional Message; failures carry Error.
type Envelope struct {
	Success bool         `json:"success"`
	Data    interface{}  `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail contains error details
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(env)
}

// WriteSuccess writes data in a success envelope
func WriteSuccess(w http.ResponseWriter, status int, data interface{}) error {
	return writeEnvelope(w, status, Envelope{Success: true, Data: data})
}

// WriteSuccessWithMessage writes data and a message in a success envelope
func WriteSuccessWithMessage(w http.ResponseWriter, status int, message string, data interface{}) error {
	return writeEnvelope(w, status, Envelope{Success: true, Message: message, Data: data})
}

// WriteError writes an AppError with its status code. The wrapped internal
// error is never exposed.
func WriteError(w http.ResponseWriter, err *errors.AppError) error {
	return writeEnvelope(w, err.StatusCode, Envelope{
		Error: &ErrorDetail{Code: err.Code, Message: err.Message, Details: err.Details},
	})
}
