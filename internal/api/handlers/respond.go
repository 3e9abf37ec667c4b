package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/wonny/streakboard/internal/contracts"
)

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// parseDateParam reads ?date=YYYY-MM-DD, defaulting to today's exchange date
func parseDateParam(r *http.Request, now func() time.Time) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return contracts.MarketDate(now()), nil
	}
	return contracts.ParseDate(raw)
}

// parseBoolParam reads an optional boolean query flag
func parseBoolParam(r *http.Request, key string) (bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}
