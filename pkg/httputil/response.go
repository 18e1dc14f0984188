// Package httputil provides HTTP handler utilities for consistent error handling,
// JSON encoding/decoding, and request parsing.
package httputil

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the uniform failure envelope returned for every error
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes the uniform failure envelope with the given status code
func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Success: false,
		Error:   status,
		Message: message,
	})
}

// WriteBadRequest writes a validation failure (400)
func WriteBadRequest(w http.ResponseWriter, message string) {
	if message == "" {
		message = "bad request"
	}
	WriteError(w, http.StatusBadRequest, message)
}

// WriteUnauthorized writes an authentication failure (401)
func WriteUnauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "authentication required"
	}
	WriteError(w, http.StatusUnauthorized, message)
}

// WriteForbidden writes an authorization failure (403)
func WriteForbidden(w http.ResponseWriter, message string) {
	if message == "" {
		message = "permission denied"
	}
	WriteError(w, http.StatusForbidden, message)
}

// WriteNotFound writes a not found failure (404)
func WriteNotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "resource not found"
	}
	WriteError(w, http.StatusNotFound, message)
}

// WriteMethodNotAllowed writes a method mismatch failure (405)
func WriteMethodNotAllowed(w http.ResponseWriter, message string) {
	if message == "" {
		message = "method not allowed"
	}
	WriteError(w, http.StatusMethodNotAllowed, message)
}

// WriteUnprocessable writes an unprocessable operation failure (422)
func WriteUnprocessable(w http.ResponseWriter, message string) {
	if message == "" {
		message = "unprocessable"
	}
	WriteError(w, http.StatusUnprocessableEntity, message)
}

// WriteInternalError writes a server failure (500)
func WriteInternalError(w http.ResponseWriter, message string) {
	if message == "" {
		message = "internal server error"
	}
	WriteError(w, http.StatusInternalServerError, message)
}

// WriteSuccess writes a success envelope (200 OK) with the given payload fields
func WriteSuccess(w http.ResponseWriter, fields map[string]interface{}) error {
	return writeSuccessEnvelope(w, http.StatusOK, fields)
}

// WriteCreated writes a success envelope (201 Created) with the given payload fields
func WriteCreated(w http.ResponseWriter, fields map[string]interface{}) error {
	return writeSuccessEnvelope(w, http.StatusCreated, fields)
}

// writeSuccessEnvelope merges verb-specific fields into {success: true, ...}
func writeSuccessEnvelope(w http.ResponseWriter, status int, fields map[string]interface{}) error {
	body := make(map[string]interface{}, len(fields)+1)
	body["success"] = true
	for k, v := range fields {
		body[k] = v
	}
	return WriteJSON(w, status, body)
}
