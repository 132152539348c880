package middleware

import (
	"encoding/json"
	"net/http"
)

const (
	msgNotAuthenticated = "authentication credentials were not provided"
	msgNoPermission     = "you do not have permission to perform this action"
	msgTooManyRequests  = "too many requests"
)

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
