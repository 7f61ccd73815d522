package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/courtsight/flashcourt/internal/pkg/models"
)

// GetMatchesFunc is a function type for getting the day's records
type GetMatchesFunc func() []models.MatchRecord

var getMatchesFunc GetMatchesFunc

// SetGetMatchesFunc sets the function to get the day's records
func SetGetMatchesFunc(fn GetMatchesFunc) {
	getMatchesFunc = fn
}

// HandleMatches handles the /matches endpoint. Returns the day's records
// from the in-memory store; ?status=complete or ?status=incomplete
// restricts the list.
func HandleMatches(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	var records []models.MatchRecord
	if getMatchesFunc != nil {
		records = getMatchesFunc()
	}

	if status := r.URL.Query().Get("status"); status != "" {
		if status != models.StatusComplete && status != models.StatusIncomplete {
			http.Error(w, fmt.Sprintf("unknown status %q", status), http.StatusBadRequest)
			return
		}
		filtered := make([]models.MatchRecord, 0, len(records))
		for _, rec := range records {
			if rec.Status == status {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	duration := time.Since(startTime)
	w.Header().Set("X-Query-Duration", duration.String())
	w.Header().Set("X-Matches-Count", fmt.Sprintf("%d", len(records)))

	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"matches": records,
		"meta": map[string]interface{}{
			"count":    len(records),
			"duration": duration.String(),
			"source":   "memory",
		},
	}); err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode matches: %v", err), http.StatusInternalServerError)
		return
	}
}
