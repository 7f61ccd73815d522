package storage

import (
	"context"
	"time"

	"github.com/courtsight/flashcourt/internal/pkg/models"
)

// MatchStore persists the per-day match document with idempotent merge
// semantics. A store instance is bound to one day's file.
type MatchStore interface {
	// Save merges records into the day's document. Complete records
	// upsert into the match list and clear any skipped entry for the
	// same id; incomplete records only register a skipped entry, and
	// never displace an already-complete record
	Save(records []models.MatchRecord) error

	// ProcessedIDs returns every (match_id, reason) pair already in the
	// document, complete and skipped alike. This is the dedup source of
	// truth for subsequent runs
	ProcessedIDs() ([]models.ProcessedMatch, error)

	// Load returns the complete records currently in the document
	Load() ([]models.MatchRecord, error)

	// UpdateResult writes the final score onto an existing record
	UpdateResult(matchID string, homeScore, awayScore int, finalStatus string) error
}

// ResultsMirror is the optional relational copy of collected matches,
// kept for downstream statistics queries.
type ResultsMirror interface {
	MirrorMatches(ctx context.Context, records []models.MatchRecord) error
	MirrorResult(ctx context.Context, matchID string, homeScore, awayScore int) error
	Close() error
}

// DateKey renders t the way day files are named: matches_<DateKey>.json.
func DateKey(t time.Time) string {
	return t.Format("20060102")
}

// DayFilename returns the document filename for a date key.
func DayFilename(dateKey string) string {
	return "matches_" + dateKey + ".json"
}
