package flashscore

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// matchFields holds the summary page fields. A field that is missing or
// failed verification stays empty; extraction never aborts over one field.
type matchFields struct {
	Country  string
	League   string
	HomeTeam string
	AwayTeam string
	Date     string // dd.mm.yyyy, as rendered
	Time     string // HH:MM
}

// extractMatchFields reads country, league, teams and start time from a
// captured summary page. Country and league come from the breadcrumb
// above the scoreboard, which renders sport, country and league as
// repeated spans picked by index.
func (s *Scraper) extractMatchFields(doc *goquery.Document, matchID string) matchFields {
	sel := s.cfg.Selectors.Match
	var fields matchFields

	nav := doc.Find(sel.NavigationText)
	fields.Country = s.textAt(nav, sel.CountryIndex, "country", matchID)
	fields.League = s.textAt(nav, sel.LeagueIndex, "league", matchID)

	fields.HomeTeam = s.textOf(doc, sel.HomeTeam, "home_team", matchID)
	fields.AwayTeam = s.textOf(doc, sel.AwayTeam, "away_team", matchID)

	startTime := s.textOf(doc, sel.StartTime, "start_time", matchID)
	fields.Date, fields.Time = splitDateTime(startTime)
	if startTime != "" && fields.Time == "" {
		s.logger.Warn("start time field did not split into date and time", "match_id", matchID, "text", startTime)
	}

	return fields
}

// textOf returns the trimmed text of the first selector match, logging a
// warning when nothing matches.
func (s *Scraper) textOf(doc *goquery.Document, selector, field, matchID string) string {
	text := strings.TrimSpace(doc.Find(selector).First().Text())
	if text == "" {
		s.logger.Warn("match field missing", "match_id", matchID, "field", field)
	}
	return text
}

// textAt returns the trimmed text of the i-th element in the selection.
func (s *Scraper) textAt(sel *goquery.Selection, i int, field, matchID string) string {
	if sel.Length() <= i {
		s.logger.Warn("match field missing", "match_id", matchID, "field", field, "index", i, "found", sel.Length())
		return ""
	}
	return strings.TrimSpace(sel.Eq(i).Text())
}

// splitDateTime splits "19.06.2025 20:30" into its date and time parts.
// Anything that does not split in two comes back whole as the date.
func splitDateTime(s string) (date, clock string) {
	parts := strings.Fields(s)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return strings.TrimSpace(s), ""
}
