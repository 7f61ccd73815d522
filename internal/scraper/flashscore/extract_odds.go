package flashscore

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/courtsight/flashcourt/internal/pkg/models"
)

// extractHomeAwayOdds reads the moneyline pair from the first bookmaker
// row of a captured home/away odds page. Both values are optional: a
// missing or unparseable cell becomes nil, logged at warn level, because
// 1X2 markets are frequently absent for scheduled basketball games.
func (s *Scraper) extractHomeAwayOdds(doc *goquery.Document, matchID string) (home, away *float64) {
	sel := s.cfg.Selectors.Odds

	home = s.oddsCell(doc, sel.HomeCell, "home_odds", matchID)
	away = s.oddsCell(doc, sel.AwayCell, "away_odds", matchID)
	return home, away
}

func (s *Scraper) oddsCell(doc *goquery.Document, selector, field, matchID string) *float64 {
	text := strings.TrimSpace(doc.Find(selector).First().Text())
	if text == "" {
		s.logger.Warn("odds cell missing, 1X2 odds unavailable", "match_id", matchID, "field", field)
		return nil
	}
	v, ok := parseOddsValue(text)
	if !ok {
		s.logger.Warn("odds cell did not parse", "match_id", matchID, "field", field, "text", text)
		return nil
	}
	return models.Float(v)
}

// extractAlternatives collects every over/under line from a captured
// over/under odds page. The three cell selectors each match once per
// bookmaker row in document order; rows are zipped positionally. Rows
// whose line value is blank are dropped, but blank over/under odds are
// kept raw for the selection algorithm to weigh.
func (s *Scraper) extractAlternatives(doc *goquery.Document) []models.AlternativeLine {
	sel := s.cfg.Selectors.Odds

	totals := doc.Find(sel.TotalCell)
	overs := doc.Find(sel.OverCell)
	unders := doc.Find(sel.UnderCell)

	n := totals.Length()
	if overs.Length() < n {
		n = overs.Length()
	}
	if unders.Length() < n {
		n = unders.Length()
	}

	var lines []models.AlternativeLine
	for i := 0; i < n; i++ {
		value := strings.TrimSpace(totals.Eq(i).Text())
		if value == "" {
			continue
		}
		lines = append(lines, models.AlternativeLine{
			Value: value,
			Over:  strings.TrimSpace(overs.Eq(i).Text()),
			Under: strings.TrimSpace(unders.Eq(i).Text()),
		})
	}
	return lines
}
