package validation

import (
	"fmt"
	"regexp"

	"github.com/courtsight/flashcourt/internal/pkg/interfaces"
	"github.com/courtsight/flashcourt/internal/pkg/models"
)

var (
	idPattern      = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	datePattern    = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)
	timePattern    = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
	h2hDatePattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
)

// Validator implements match record validation
type Validator struct {
	minH2H int
}

// NewValidator creates a new validator. minH2H is the number of H2H rows
// a complete record must carry.
func NewValidator(minH2H int) interfaces.RecordValidator {
	return &Validator{minH2H: minH2H}
}

// ValidateRecord validates a persisted match record
func (v *Validator) ValidateRecord(rec *models.MatchRecord) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil")
	}

	if rec.MatchID == "" {
		return fmt.Errorf("match ID cannot be empty")
	}
	if !v.isValidID(rec.MatchID) {
		return fmt.Errorf("invalid match ID format: %s", rec.MatchID)
	}

	if rec.Status != models.StatusComplete && rec.Status != models.StatusIncomplete {
		return fmt.Errorf("unknown status: %s", rec.Status)
	}

	if rec.Date != "" && !datePattern.MatchString(rec.Date) {
		return fmt.Errorf("invalid date format: %s", rec.Date)
	}
	if rec.Time != "" && !timePattern.MatchString(rec.Time) {
		return fmt.Errorf("invalid time format: %s", rec.Time)
	}

	if rec.Status == models.StatusComplete {
		if rec.HomeTeam == "" {
			return fmt.Errorf("home team cannot be empty")
		}
		if rec.AwayTeam == "" {
			return fmt.Errorf("away team cannot be empty")
		}
		if rec.Country == "" {
			return fmt.Errorf("country cannot be empty")
		}
		if rec.League == "" {
			return fmt.Errorf("league cannot be empty")
		}
		if rec.Odds == nil {
			return fmt.Errorf("complete record has no odds")
		}
		if err := v.ValidateOdds(rec.Odds); err != nil {
			return err
		}
		if len(rec.H2HMatches) < v.minH2H {
			return fmt.Errorf("complete record has %d h2h matches, need %d", len(rec.H2HMatches), v.minH2H)
		}
	} else if rec.SkipReason == "" {
		return fmt.Errorf("incomplete record has no skip reason")
	}

	for i := range rec.H2HMatches {
		if err := v.ValidateH2H(&rec.H2HMatches[i]); err != nil {
			return fmt.Errorf("h2h %d validation failed: %w", i, err)
		}
	}

	return nil
}

// ValidateOdds checks that every odds field of a complete record is
// present and in a plausible range.
func (v *Validator) ValidateOdds(odds *models.OddsRecord) error {
	if odds == nil {
		return fmt.Errorf("odds cannot be nil")
	}

	fields := []struct {
		name  string
		value *float64
	}{
		{"home_odds", odds.HomeOdds},
		{"away_odds", odds.AwayOdds},
		{"over_odds", odds.OverOdds},
		{"under_odds", odds.UnderOdds},
	}
	for _, f := range fields {
		if f.value == nil {
			return fmt.Errorf("%s is missing", f.name)
		}
		if *f.value <= 1.0 {
			return fmt.Errorf("%s must be greater than 1.0: %f", f.name, *f.value)
		}
		if *f.value > 1000 {
			return fmt.Errorf("%s too high (suspicious): %f", f.name, *f.value)
		}
	}

	if odds.MatchTotal == nil {
		return fmt.Errorf("match_total is missing")
	}
	if *odds.MatchTotal <= 0 {
		return fmt.Errorf("match_total must be positive: %f", *odds.MatchTotal)
	}
	if *odds.MatchTotal > 500 {
		return fmt.Errorf("match_total too high (suspicious): %f", *odds.MatchTotal)
	}

	return nil
}

// ValidateH2H checks one prior meeting row.
func (v *Validator) ValidateH2H(h2h *models.H2HMatchRecord) error {
	if h2h == nil {
		return fmt.Errorf("h2h row cannot be nil")
	}

	if h2h.HomeTeam == "" {
		return fmt.Errorf("h2h home team cannot be empty")
	}
	if h2h.AwayTeam == "" {
		return fmt.Errorf("h2h away team cannot be empty")
	}
	if h2h.Date != "" && !h2hDatePattern.MatchString(h2h.Date) {
		return fmt.Errorf("invalid h2h date format: %s", h2h.Date)
	}
	if h2h.HomeScore < 0 || h2h.AwayScore < 0 {
		return fmt.Errorf("h2h scores cannot be negative: %d:%d", h2h.HomeScore, h2h.AwayScore)
	}

	return nil
}

func (v *Validator) isValidID(id string) bool {
	return idPattern.MatchString(id) && len(id) <= 100
}
