package flashscore

import (
	"fmt"
	"strings"

	"github.com/courtsight/flashcourt/internal/pkg/models"
)

// Classification is the completeness verdict for one match.
type Classification struct {
	Status     string
	SkipReason string
}

// Classify decides complete/incomplete from the collected odds and the
// raw h2h row count (before truncation to minH2H). Every failing
// category lands in the skip reason so the day file explains itself.
func Classify(odds *models.OddsRecord, h2hCount, minH2H int) Classification {
	var reasons []string

	if missing := missingOddsFields(odds); len(missing) > 0 {
		reasons = append(reasons, fmt.Sprintf("missing or invalid odds fields: %s", strings.Join(missing, ", ")))
	}
	if h2hCount < minH2H {
		reasons = append(reasons, fmt.Sprintf("insufficient H2H matches (%d found, %d required)", h2hCount, minH2H))
	}

	if len(reasons) > 0 {
		return Classification{
			Status:     models.StatusIncomplete,
			SkipReason: strings.Join(reasons, "; "),
		}
	}
	return Classification{Status: models.StatusComplete}
}

// missingOddsFields lists the absent odds fields in their reporting order.
func missingOddsFields(odds *models.OddsRecord) []string {
	checks := []struct {
		name  string
		value *float64
	}{
		{"home_odds", nil},
		{"away_odds", nil},
		{"match_total", nil},
		{"over_odds", nil},
		{"under_odds", nil},
	}
	if odds != nil {
		checks[0].value = odds.HomeOdds
		checks[1].value = odds.AwayOdds
		checks[2].value = odds.MatchTotal
		checks[3].value = odds.OverOdds
		checks[4].value = odds.UnderOdds
	}

	var missing []string
	for _, c := range checks {
		if c.value == nil {
			missing = append(missing, c.name)
		}
	}
	return missing
}
