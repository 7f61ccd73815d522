package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/courtsight/flashcourt/internal/pkg/models"
)

// GetMatchesByNameFunc returns records matching the given team name.
type GetMatchesByNameFunc func(name string) []models.MatchRecord

var getMatchesByNameFunc GetMatchesByNameFunc

// SetGetMatchesByNameFunc sets the function used by HandleMatchByName (e.g. health.GetMatchesByName).
func SetGetMatchesByNameFunc(fn GetMatchesByNameFunc) {
	getMatchesByNameFunc = fn
}

// HandleMatchByName returns records whose team names contain the query,
// e.g. GET /match-by-name?name=Lakers returns all records mentioning "Lakers".
func HandleMatchByName(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		http.Error(w, `missing query parameter "name"`, http.StatusBadRequest)
		return
	}

	var records []models.MatchRecord
	if getMatchesByNameFunc != nil {
		records = getMatchesByNameFunc(name)
	} else if getMatchesFunc != nil {
		all := getMatchesFunc()
		q := strings.ToLower(name)
		for i := range all {
			rec := &all[i]
			home := strings.ToLower(rec.HomeTeam)
			away := strings.ToLower(rec.AwayTeam)
			if strings.Contains(home, q) || strings.Contains(away, q) ||
				strings.Contains(home+" vs "+away, q) || strings.Contains(home+" - "+away, q) {
				records = append(records, *rec)
			}
		}
	}

	duration := time.Since(startTime)
	w.Header().Set("X-Query-Duration", duration.String())
	w.Header().Set("X-Matches-Count", fmt.Sprintf("%d", len(records)))

	slog.Info("Match-by-name query", "name", name, "count", len(records), "duration", duration)

	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"matches": records,
		"meta": map[string]interface{}{
			"query":    name,
			"count":    len(records),
			"duration": duration.String(),
		},
	}); err != nil {
		slog.Error("Failed to encode match-by-name response", "error", err)
		http.Error(w, fmt.Sprintf("Failed to encode: %v", err), http.StatusInternalServerError)
		return
	}
}
