// Package respond centralizes JSON response writing for all route handlers.
package respond

import (
	"encoding/json"
	"log"
	"net/http"
)

// JSON writes a payload verbatim with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("respond: encode payload failed: %v", err)
	}
}

// Error writes the uniform {"error": message} body every route boundary uses.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
