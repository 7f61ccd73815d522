package interfaces

import (
	"github.com/courtsight/flashcourt/internal/pkg/models"
)

// RecordValidator checks a persisted match record for structural problems.
type RecordValidator interface {
	ValidateRecord(rec *models.MatchRecord) error
}

// RecordSanitizer normalizes scraped text fields in place before a record
// is validated or persisted.
type RecordSanitizer interface {
	SanitizeRecord(rec *models.MatchRecord) error
}
