package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the JSON object every API response is wrapped in.
type Envelope map[string]any

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteMessage writes {"success": ..., "message": ...} with success derived from status.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{
		"success": status < http.StatusBadRequest,
		"message": message,
	})
}

// WriteServerError writes a 500 carrying err's text under "error".
func WriteServerError(w http.ResponseWriter, err error) {
	WriteJSON(w, http.StatusInternalServerError, Envelope{
		"success": false,
		"message": "Internal server error",
		"error":   err.Error(),
	})
}

func MethodNotAllowed(w http.ResponseWriter) {
	WriteMessage(w, http.StatusMethodNotAllowed, "method not allowed")
}
