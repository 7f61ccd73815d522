package flashscore

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Final-status values the site renders in the scoreboard header.
var validFinalStatuses = map[string]bool{
	"scheduled": true,
	"live":      true,
	"finished":  true,
	"cancelled": true,
	"postponed": true,
}

var combinedScorePattern = regexp.MustCompile(`^\s*(\d+)\s*[-:]\s*(\d+)\s*$`)

// matchResult is the final outcome read from a match's summary page.
// Scores are only populated for finished games.
type matchResult struct {
	HomeScore int
	AwayScore int
	Status    string // lowercase, one of validFinalStatuses
}

// Finished reports whether the game has been played to the end.
func (r *matchResult) Finished() bool { return r.Status == "finished" }

// extractResult reads the final status, and for finished games the final
// score, from a captured summary page. The status must be one of the
// known scoreboard states; scores must sit in the plausible basketball
// range, and a finished game cannot be 0-0.
func (s *Scraper) extractResult(doc *goquery.Document, matchID string) (*matchResult, error) {
	sel := s.cfg.Selectors.Results

	status := strings.ToLower(strings.TrimSpace(doc.Find(sel.MatchStatus).First().Text()))
	if status == "" {
		return nil, fmt.Errorf("%w: match status", ErrNotFound)
	}
	if !validFinalStatuses[status] {
		return nil, fmt.Errorf("%w: unknown match status %q", ErrValidation, status)
	}

	result := &matchResult{Status: status}
	if !result.Finished() {
		return result, nil
	}

	home, herr := scoreOf(doc, sel.HomeScore, "home score")
	away, aerr := scoreOf(doc, sel.AwayScore, "away score")
	if herr != nil || aerr != nil {
		// Some markups render the score as one combined cell; the
		// parent of the home-score span holds the whole "84-117" text.
		combined := strings.TrimSpace(doc.Find(sel.HomeScore).First().Parent().Text())
		var cerr error
		home, away, cerr = parseCombinedScore(combined)
		if cerr != nil {
			if herr != nil {
				return nil, herr
			}
			return nil, aerr
		}
		s.logger.Debug("scores read from combined cell", "match_id", matchID, "text", combined)
	}
	if err := verifyScores(home, away); err != nil {
		return nil, err
	}

	result.HomeScore = home
	result.AwayScore = away
	return result, nil
}

func scoreOf(doc *goquery.Document, selector, name string) (int, error) {
	text := strings.TrimSpace(doc.Find(selector).First().Text())
	if text == "" {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrParse, name, text)
	}
	return v, nil
}

// verifyScores applies the basketball plausibility rules shared by both
// score extraction paths.
func verifyScores(home, away int) error {
	for _, c := range []struct {
		name  string
		value int
	}{
		{"home score", home},
		{"away score", away},
	} {
		if c.value < 0 {
			return fmt.Errorf("%w: %s cannot be negative", ErrValidation, c.name)
		}
		if c.value > 200 {
			return fmt.Errorf("%w: %s %d is unreasonably high for basketball", ErrValidation, c.name, c.value)
		}
	}
	if home == 0 && away == 0 {
		return fmt.Errorf("%w: both teams cannot have 0 points in a finished game", ErrValidation)
	}
	return nil
}

// parseCombinedScore splits a combined score text like "84-117" or
// "84 : 117" into its two sides.
func parseCombinedScore(text string) (home, away int, err error) {
	m := combinedScorePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: score text %q", ErrParse, text)
	}
	home, _ = strconv.Atoi(m[1])
	away, _ = strconv.Atoi(m[2])
	return home, away, nil
}
