package flashscore

import (
	"math"
	"strconv"
	"strings"

	"github.com/courtsight/flashcourt/internal/pkg/models"
)

// DefaultTargetOverOdds is the over-odds value the line selection aims
// for when the config does not override it.
const DefaultTargetOverOdds = 1.85

// SelectAlternative picks the over/under line whose over odds sit closest
// to the target. Lines with an exact half-point value (e.g. 152.5) are
// preferred as a group: if any exists, the best of them wins even when a
// whole-number line is closer overall. Ties go to the earliest row. The
// only nil result is an empty input.
func SelectAlternative(lines []models.AlternativeLine, target float64) *models.AlternativeLine {
	if len(lines) == 0 {
		return nil
	}

	bestOverall := -1
	bestHalf := -1
	minDiffOverall := math.Inf(1)
	minDiffHalf := math.Inf(1)

	for i, line := range lines {
		// An over value that is missing or does not parse counts as
		// 0.0 here, so the row competes with diff == target instead
		// of being excluded. Kept on purpose: rows with removed or
		// suspended odds stay selectable when everything else is
		// even further from the target.
		overVal := 0.0
		if v, ok := parseOddsValue(line.Over); ok {
			overVal = v
		}
		diff := math.Abs(overVal - target)

		if diff < minDiffOverall {
			minDiffOverall = diff
			bestOverall = i
		}
		if hasHalfPoint(line.Value) && diff < minDiffHalf {
			minDiffHalf = diff
			bestHalf = i
		}
	}

	selected := bestOverall
	if bestHalf >= 0 {
		selected = bestHalf
	}
	line := lines[selected]
	return &line
}

// applySelectedLine copies the chosen line onto the odds record. Each
// component is parsed independently: a value that does not parse leaves
// its field nil so the classifier sees exactly what was usable.
func applySelectedLine(odds *models.OddsRecord, line *models.AlternativeLine) {
	if line == nil {
		return
	}
	if v, ok := parseOddsValue(line.Value); ok {
		odds.MatchTotal = models.Float(v)
	}
	if v, ok := parseOddsValue(line.Over); ok {
		odds.OverOdds = models.Float(v)
	}
	if v, ok := parseOddsValue(line.Under); ok {
		odds.UnderOdds = models.Float(v)
	}
}

// parseOddsValue converts scraped odds text to a float. The site renders
// decimals with either dot or comma depending on locale.
func parseOddsValue(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// hasHalfPoint reports whether the line value has an exact .5 fraction.
func hasHalfPoint(value string) bool {
	v, ok := parseOddsValue(value)
	if !ok {
		return false
	}
	return math.Mod(v, 1) == 0.5
}
