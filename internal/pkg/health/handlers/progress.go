package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/courtsight/flashcourt/internal/pkg/models"
)

// GetProgressFunc is a function type for reading the run progress snapshot
type GetProgressFunc func() models.RunProgress

var getProgressFunc GetProgressFunc

// SetGetProgressFunc sets the function to read run progress
func SetGetProgressFunc(fn GetProgressFunc) {
	getProgressFunc = fn
}

// HandleProgress handles the /progress endpoint
func HandleProgress(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	var progress models.RunProgress
	if getProgressFunc != nil {
		progress = getProgressFunc()
	} else {
		progress.Phase = "idle"
	}

	if err := json.NewEncoder(w).Encode(progress); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode progress: %v", err), http.StatusInternalServerError)
		return
	}
}
