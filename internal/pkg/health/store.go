package health

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/courtsight/flashcourt/internal/pkg/interfaces"
	"github.com/courtsight/flashcourt/internal/pkg/models"
)

type progressStore struct {
	mu    sync.RWMutex
	state models.RunProgress
}

var globalProgress *progressStore

// InMemoryRecordStore keeps the current day's records for fast API access
type InMemoryRecordStore struct {
	mu      sync.RWMutex
	records map[string]*models.MatchRecord // key: match_id
}

var globalRecordStore *InMemoryRecordStore

func init() {
	globalProgress = &progressStore{state: models.RunProgress{Phase: "idle"}}
	globalRecordStore = &InMemoryRecordStore{
		records: make(map[string]*models.MatchRecord),
	}
}

// StartRun resets the progress snapshot for a new run.
func StartRun(phase string) {
	if globalProgress == nil {
		return
	}
	globalProgress.mu.Lock()
	defer globalProgress.mu.Unlock()
	now := time.Now()
	globalProgress.state = models.RunProgress{
		Phase:     phase,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// SetPhase records which stage of the run is active.
func SetPhase(phase string) {
	if globalProgress == nil {
		return
	}
	globalProgress.mu.Lock()
	defer globalProgress.mu.Unlock()
	globalProgress.state.Phase = phase
	globalProgress.state.UpdatedAt = time.Now()
}

// SetStatus records the latest status message.
func SetStatus(message string) {
	if globalProgress == nil {
		return
	}
	globalProgress.mu.Lock()
	defer globalProgress.mu.Unlock()
	globalProgress.state.Message = message
	globalProgress.state.UpdatedAt = time.Now()
}

// SetProgress records the current/total position inside the active phase.
func SetProgress(current, total int, message string) {
	if globalProgress == nil {
		return
	}
	globalProgress.mu.Lock()
	defer globalProgress.mu.Unlock()
	globalProgress.state.Current = current
	globalProgress.state.Total = total
	if message != "" {
		globalProgress.state.Message = message
	}
	globalProgress.state.UpdatedAt = time.Now()
}

// RecordFinalized bumps the complete/incomplete counters for a saved match.
func RecordFinalized(matchID, status string) {
	if globalProgress == nil {
		return
	}
	globalProgress.mu.Lock()
	defer globalProgress.mu.Unlock()
	if status == models.StatusComplete {
		globalProgress.state.Complete++
	} else {
		globalProgress.state.Incomplete++
	}
	globalProgress.state.UpdatedAt = time.Now()
	if slog.Default().Enabled(nil, slog.LevelDebug) {
		slog.Debug("Progress finalized", "match_id", matchID, "status", status)
	}
}

// GetProgress returns a copy of the current run snapshot.
func GetProgress() models.RunProgress {
	if globalProgress == nil {
		return models.RunProgress{Phase: "idle"}
	}
	globalProgress.mu.RLock()
	defer globalProgress.mu.RUnlock()
	return globalProgress.state
}

// PublishMatches adds or replaces records in the in-memory store.
func PublishMatches(records []models.MatchRecord) {
	if globalRecordStore == nil {
		return
	}
	globalRecordStore.mu.Lock()
	defer globalRecordStore.mu.Unlock()

	for i := range records {
		rec := records[i]
		h2hCopy := make([]models.H2HMatchRecord, len(rec.H2HMatches))
		copy(h2hCopy, rec.H2HMatches)
		rec.H2HMatches = h2hCopy
		globalRecordStore.records[rec.MatchID] = &rec
	}
	if slog.Default().Enabled(nil, slog.LevelDebug) {
		slog.Debug("Published records", "added", len(records), "total_in_store", len(globalRecordStore.records))
	}
}

// GetMatches returns all records from the in-memory store
func GetMatches() []models.MatchRecord {
	if globalRecordStore == nil {
		return []models.MatchRecord{}
	}

	globalRecordStore.mu.RLock()
	defer globalRecordStore.mu.RUnlock()

	records := make([]models.MatchRecord, 0, len(globalRecordStore.records))
	for _, rec := range globalRecordStore.records {
		// Create copy to avoid race conditions
		recCopy := *rec
		h2hCopy := make([]models.H2HMatchRecord, len(rec.H2HMatches))
		copy(h2hCopy, rec.H2HMatches)
		recCopy.H2HMatches = h2hCopy
		records = append(records, recCopy)
	}

	// Sort by scheduled time, then by id for a stable order
	sort.Slice(records, func(i, j int) bool {
		if records[i].Time != records[j].Time {
			return records[i].Time < records[j].Time
		}
		return records[i].MatchID < records[j].MatchID
	})

	return records
}

// GetMatchesByName returns records whose team names contain the given
// substring (case-insensitive). Matched against home, away and the
// combined "Home vs Away" form.
func GetMatchesByName(nameQuery string) []models.MatchRecord {
	if globalRecordStore == nil || strings.TrimSpace(nameQuery) == "" {
		return []models.MatchRecord{}
	}

	globalRecordStore.mu.RLock()
	defer globalRecordStore.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(nameQuery))
	out := make([]models.MatchRecord, 0)

	for _, rec := range globalRecordStore.records {
		home := strings.ToLower(rec.HomeTeam)
		away := strings.ToLower(rec.AwayTeam)
		if strings.Contains(home, q) || strings.Contains(away, q) ||
			strings.Contains(home+" vs "+away, q) || strings.Contains(home+" - "+away, q) {
			recCopy := *rec
			h2hCopy := make([]models.H2HMatchRecord, len(rec.H2HMatches))
			copy(h2hCopy, rec.H2HMatches)
			recCopy.H2HMatches = h2hCopy
			out = append(out, recCopy)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].MatchID < out[j].MatchID
	})

	return out
}

// ClearMatches clears all records from the in-memory store.
// Called at the start of a run before the day file is reloaded.
func ClearMatches() {
	if globalRecordStore == nil {
		return
	}
	globalRecordStore.mu.Lock()
	defer globalRecordStore.mu.Unlock()

	clearedCount := len(globalRecordStore.records)
	globalRecordStore.records = make(map[string]*models.MatchRecord)
	slog.Info("Cleared records from in-memory store", "cleared_count", clearedCount)
}

var _ interfaces.Reporter = ProgressReporter{}

// ProgressReporter feeds reporter events into the progress store so the
// /progress endpoint reflects the live run. Plug it into the scraper's
// reporter chain alongside the log reporter.
type ProgressReporter struct{}

func (ProgressReporter) Status(message string) {
	SetStatus(message)
}

func (ProgressReporter) Progress(current, total int, message string) {
	SetProgress(current, total, message)
}

func (ProgressReporter) MatchFinalized(matchID string, status string) {
	RecordFinalized(matchID, status)
}
