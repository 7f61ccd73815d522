package validation

import (
	"regexp"
	"strings"

	"github.com/courtsight/flashcourt/internal/pkg/interfaces"
	"github.com/courtsight/flashcourt/internal/pkg/models"
)

var (
	controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]`)
	multiSpace   = regexp.MustCompile(`\s+`)
	nonIDChars   = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// Sanitizer implements record sanitization
type Sanitizer struct{}

// NewSanitizer creates a new sanitizer
func NewSanitizer() interfaces.RecordSanitizer {
	return &Sanitizer{}
}

// SanitizeRecord normalizes scraped text fields in place
func (s *Sanitizer) SanitizeRecord(rec *models.MatchRecord) error {
	if rec == nil {
		return nil
	}

	rec.MatchID = s.sanitizeID(rec.MatchID)
	rec.Country = s.sanitizeName(rec.Country)
	rec.League = s.sanitizeName(rec.League)
	rec.HomeTeam = s.sanitizeName(rec.HomeTeam)
	rec.AwayTeam = s.sanitizeName(rec.AwayTeam)
	rec.Date = strings.TrimSpace(rec.Date)
	rec.Time = strings.TrimSpace(rec.Time)
	rec.Status = strings.ToLower(strings.TrimSpace(rec.Status))

	for i := range rec.H2HMatches {
		s.sanitizeH2H(&rec.H2HMatches[i])
	}

	return nil
}

func (s *Sanitizer) sanitizeH2H(h2h *models.H2HMatchRecord) {
	h2h.Date = strings.TrimSpace(h2h.Date)
	h2h.HomeTeam = s.sanitizeName(h2h.HomeTeam)
	h2h.AwayTeam = s.sanitizeName(h2h.AwayTeam)
	h2h.Competition = s.sanitizeName(h2h.Competition)
	if h2h.HomeScore < 0 {
		h2h.HomeScore = 0
	}
	if h2h.AwayScore < 0 {
		h2h.AwayScore = 0
	}
}

// Helper methods for sanitization

func (s *Sanitizer) sanitizeID(id string) string {
	sanitized := nonIDChars.ReplaceAllString(id, "")

	if len(sanitized) > 100 {
		sanitized = sanitized[:100]
	}

	return sanitized
}

func (s *Sanitizer) sanitizeName(name string) string {
	// Trim, strip control characters, collapse runs of whitespace
	sanitized := strings.TrimSpace(name)
	sanitized = controlChars.ReplaceAllString(sanitized, "")
	sanitized = multiSpace.ReplaceAllString(sanitized, " ")

	if len(sanitized) > 100 {
		sanitized = sanitized[:100]
	}

	return sanitized
}
