// Пакет errors — единый формат JSON-ошибок API.
// Каждая ошибка — объект {"error": {"code": ..., "message": ...}}.
package errors

import (
	"encoding/json"
	"net/http"
)

// ErrorBody — тело JSON-ошибки API.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail — код и сообщение ошибки.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError записывает JSON-ошибку с указанным статусом.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorBody{
		Error: ErrorDetail{Code: code, Message: message},
	})
}

// ValidationError — 400 Bad Request.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", message)
}

// NotFound — 404 Not Found.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "NOT_FOUND", message)
}

// Gone — 410 Gone: запись существовала, но истекла и удалена.
func Gone(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusGone, "GONE", message)
}

// ServiceUnavailable — 503 Service Unavailable.
func ServiceUnavailable(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", message)
}

// InternalError — 500 Internal Server Error.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}
