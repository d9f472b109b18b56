package httpx

import (
	"encoding/json"
	"net/http"

	"imagerecog/models"
)

// WriteJSON writes a JSON response with the given HTTP status code.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteStatus writes an API-level status envelope on HTTP 200. The numeric
// code in the body (200/301/302/303) is the contract clients dispatch on.
func WriteStatus(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, http.StatusOK, models.StatusResponse{Status: status, Message: message})
}

// WriteError sends a transport-level error message.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}
