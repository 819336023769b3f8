package handlers

import (
	"net/http"
	"time"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"version":   Version,
	})
}
