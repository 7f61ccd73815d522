package storage

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/courtsight/flashcourt/internal/pkg/models"
)

func newTestStore(t *testing.T) *JSONStore {
	t.Helper()
	store, err := NewJSONStore(t.TempDir(), "20260825", nil)
	if err != nil {
		t.Fatalf("NewJSONStore() error: %v", err)
	}
	return store
}

func completeRecord(id string) models.MatchRecord {
	rec := models.NewMatchRecord(id)
	rec.HomeTeam = "Lakers"
	rec.AwayTeam = "Celtics"
	rec.Odds = &models.OddsRecord{
		HomeOdds:   models.Float(1.72),
		AwayOdds:   models.Float(2.10),
		OverOdds:   models.Float(1.85),
		UnderOdds:  models.Float(1.95),
		MatchTotal: models.Float(215.5),
	}
	return rec
}

func incompleteRecord(id, reason string) models.MatchRecord {
	rec := models.NewMatchRecord(id)
	rec.Status = models.StatusIncomplete
	rec.SkipReason = reason
	return rec
}

func TestSaveIdempotent(t *testing.T) {
	store := newTestStore(t)

	rec := completeRecord("m1")
	for i := 0; i < 2; i++ {
		if err := store.Save([]models.MatchRecord{rec}); err != nil {
			t.Fatalf("Save() #%d error: %v", i+1, err)
		}
	}

	matches, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("after saving the same record twice: %d matches, want 1", len(matches))
	}

	processed, err := store.ProcessedIDs()
	if err != nil {
		t.Fatalf("ProcessedIDs() error: %v", err)
	}
	if len(processed) != 1 {
		t.Errorf("ProcessedIDs() returned %d entries, want 1", len(processed))
	}
}

func TestSavePromotesSkippedToComplete(t *testing.T) {
	store := newTestStore(t)

	reason := "insufficient H2H matches (2 found, 6 required)"
	if err := store.Save([]models.MatchRecord{incompleteRecord("m1", reason)}); err != nil {
		t.Fatalf("Save() incomplete error: %v", err)
	}

	processed, err := store.ProcessedIDs()
	if err != nil {
		t.Fatalf("ProcessedIDs() error: %v", err)
	}
	if len(processed) != 1 || processed[0].Reason != reason {
		t.Fatalf("skipped entry = %+v, want reason %q", processed, reason)
	}

	// A later run collects the match fully.
	if err := store.Save([]models.MatchRecord{completeRecord("m1")}); err != nil {
		t.Fatalf("Save() complete error: %v", err)
	}

	matches, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(matches) != 1 || matches[0].MatchID != "m1" {
		t.Fatalf("matches after promotion = %d, want exactly m1", len(matches))
	}

	processed, err = store.ProcessedIDs()
	if err != nil {
		t.Fatalf("ProcessedIDs() error: %v", err)
	}
	if len(processed) != 1 {
		t.Fatalf("ProcessedIDs() after promotion = %d entries, want 1", len(processed))
	}
	if processed[0].Reason != "processed successfully" {
		t.Errorf("promoted reason = %q, want %q", processed[0].Reason, "processed successfully")
	}
}

func TestSaveNeverDemotesComplete(t *testing.T) {
	store := newTestStore(t)

	orig := completeRecord("m1")
	if err := store.Save([]models.MatchRecord{orig}); err != nil {
		t.Fatalf("Save() complete error: %v", err)
	}
	if err := store.Save([]models.MatchRecord{incompleteRecord("m1", "missing or invalid odds fields: over_odds")}); err != nil {
		t.Fatalf("Save() incomplete error: %v", err)
	}

	matches, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(matches))
	}
	if matches[0].Status != models.StatusComplete {
		t.Errorf("status = %q, complete record was demoted", matches[0].Status)
	}
	if matches[0].Odds == nil || matches[0].Odds.MatchTotal == nil || *matches[0].Odds.MatchTotal != 215.5 {
		t.Error("complete record's odds were overwritten by the incomplete save")
	}

	processed, err := store.ProcessedIDs()
	if err != nil {
		t.Fatalf("ProcessedIDs() error: %v", err)
	}
	if len(processed) != 1 {
		t.Errorf("incomplete save of a complete id should not add a skipped entry, got %d entries", len(processed))
	}
}

func TestProcessedIDsCoversBothKinds(t *testing.T) {
	store := newTestStore(t)

	records := []models.MatchRecord{
		completeRecord("c1"),
		completeRecord("c2"),
		incompleteRecord("s1", "insufficient H2H matches (4 found, 6 required)"),
		incompleteRecord("s2", "missing or invalid odds fields: match_total, over_odds"),
		incompleteRecord("s3", "missing or invalid odds fields: under_odds"),
	}
	if err := store.Save(records); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	processed, err := store.ProcessedIDs()
	if err != nil {
		t.Fatalf("ProcessedIDs() error: %v", err)
	}
	if len(processed) != 5 {
		t.Fatalf("ProcessedIDs() = %d entries, want 5", len(processed))
	}

	byID := make(map[string]string, len(processed))
	for _, p := range processed {
		byID[p.MatchID] = p.Reason
	}
	if len(byID) != 5 {
		t.Fatalf("ids are not distinct: %v", byID)
	}
	if byID["c1"] != "processed successfully" {
		t.Errorf("complete reason = %q, want %q", byID["c1"], "processed successfully")
	}
	if byID["s1"] != "insufficient H2H matches (4 found, 6 required)" {
		t.Errorf("skipped reason = %q", byID["s1"])
	}
}

func TestProcessedIDsEmptyForMissingFile(t *testing.T) {
	store := newTestStore(t)

	processed, err := store.ProcessedIDs()
	if err != nil {
		t.Fatalf("ProcessedIDs() on a fresh day error: %v", err)
	}
	if len(processed) != 0 {
		t.Errorf("ProcessedIDs() = %d entries, want none", len(processed))
	}
}

func TestSaveDocumentShape(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save([]models.MatchRecord{
		completeRecord("c1"),
		incompleteRecord("s1", "insufficient H2H matches (0 found, 6 required)"),
	}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read day file: %v", err)
	}

	var doc struct {
		Metadata struct {
			TotalMatches   int    `json:"total_matches"`
			LastUpdate     string `json:"last_update"`
			SkippedMatches struct {
				Total   int `json:"total"`
				Details []struct {
					MatchID string `json:"match_id"`
					Reason  string `json:"reason"`
				} `json:"details"`
			} `json:"skipped_matches"`
			FileInfo struct {
				Filename  string `json:"filename"`
				SizeBytes int64  `json:"size_bytes"`
			} `json:"file_info"`
		} `json:"metadata"`
		Matches []json.RawMessage `json:"matches"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("day file is not valid JSON: %v", err)
	}

	if doc.Metadata.TotalMatches != 1 || len(doc.Matches) != 1 {
		t.Errorf("total_matches = %d with %d matches, want 1/1", doc.Metadata.TotalMatches, len(doc.Matches))
	}
	if doc.Metadata.SkippedMatches.Total != 1 || len(doc.Metadata.SkippedMatches.Details) != 1 {
		t.Errorf("skipped block = %+v, want one entry", doc.Metadata.SkippedMatches)
	}
	if doc.Metadata.FileInfo.Filename != "matches_20260825.json" {
		t.Errorf("file_info.filename = %q", doc.Metadata.FileInfo.Filename)
	}
	// size_bytes is measured before it is embedded, so it can lag the
	// final file length by a few digits; it just has to be plausible.
	if doc.Metadata.FileInfo.SizeBytes <= 0 {
		t.Errorf("file_info.size_bytes = %d, want positive", doc.Metadata.FileInfo.SizeBytes)
	}
	if doc.Metadata.LastUpdate == "" {
		t.Error("last_update not set")
	}
}

func TestUpdateResult(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save([]models.MatchRecord{completeRecord("m1")}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if err := store.UpdateResult("m1", 102, 97, "Finished"); err != nil {
		t.Fatalf("UpdateResult() error: %v", err)
	}

	matches, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	rec := matches[0]
	if rec.HomeScore == nil || *rec.HomeScore != 102 || rec.AwayScore == nil || *rec.AwayScore != 97 {
		t.Errorf("scores = %v/%v, want 102/97", rec.HomeScore, rec.AwayScore)
	}
	if rec.FinalStatus != "Finished" {
		t.Errorf("final status = %q, want Finished", rec.FinalStatus)
	}

	if err := store.UpdateResult("absent", 1, 2, "Finished"); err == nil {
		t.Error("UpdateResult() for an unknown id should fail")
	}
}
