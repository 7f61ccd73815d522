package flashscore

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/courtsight/flashcourt/internal/pkg/models"
)

var h2hDatePattern = regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{2,4})`)

// extractH2H reads the mutual-meetings rows from a captured h2h page.
// It returns the stored records (at most minH2H of them), the raw row
// count for the completeness classifier, and an error only when the
// section itself cannot be located. A page carrying the explicit
// no-data marker is a valid empty history, not a failure.
func (s *Scraper) extractH2H(doc *goquery.Document, matchID string) ([]models.H2HMatchRecord, int, error) {
	sel := s.cfg.Selectors.H2H

	section, err := s.h2hSection(doc)
	if err != nil {
		if doc.Find(sel.NoData).Length() > 0 {
			s.logger.Info("no h2h history for this pairing", "match_id", matchID)
			return []models.H2HMatchRecord{}, 0, nil
		}
		return nil, 0, err
	}

	rows := section.Find(sel.Row)
	rawCount := rows.Length()
	if rawCount == 0 {
		if section.Find(sel.NoData).Length() > 0 || doc.Find(sel.NoData).Length() > 0 {
			s.logger.Info("no h2h history for this pairing", "match_id", matchID)
		}
		return []models.H2HMatchRecord{}, 0, nil
	}

	limit := s.cfg.Scraper.MinH2HMatches
	if limit > rawCount {
		limit = rawCount
	}

	records := make([]models.H2HMatchRecord, 0, limit)
	for i := 0; i < limit; i++ {
		row := rows.Eq(i)
		records = append(records, models.H2HMatchRecord{
			Date:        formatH2HDate(strings.TrimSpace(row.Find(sel.Date).First().Text())),
			HomeTeam:    strings.TrimSpace(row.Find(sel.HomeParticipant).First().Text()),
			AwayTeam:    strings.TrimSpace(row.Find(sel.AwayParticipant).First().Text()),
			HomeScore:   safeScore(row.Find(sel.HomeScore).First().Text()),
			AwayScore:   safeScore(row.Find(sel.AwayScore).First().Text()),
			Competition: strings.TrimSpace(row.Find(sel.Competition).First().Text()),
		})
	}
	return records, rawCount, nil
}

// h2hSection picks the mutual-meetings section. The overall tab renders
// home form, away form and mutual meetings as repeated sections; when
// fewer sections render it is the form blocks that are missing, so the
// mutual-meetings one is the last.
func (s *Scraper) h2hSection(doc *goquery.Document) (*goquery.Selection, error) {
	sel := s.cfg.Selectors.H2H
	sections := doc.Find(sel.Section)
	switch {
	case sections.Length() == 0:
		return nil, fmt.Errorf("%w: h2h section %q", ErrNotFound, sel.Section)
	case sections.Length() > sel.SectionIndex:
		return sections.Eq(sel.SectionIndex), nil
	default:
		return sections.Eq(sections.Length() - 1), nil
	}
}

// hasShowMore reports whether the captured page still offers a
// show-more control for the h2h list.
func (s *Scraper) hasShowMore(doc *goquery.Document) bool {
	return doc.Find(s.cfg.Selectors.H2H.ShowMore).Length() > 0
}

// formatH2HDate converts "14.03.25" or "14.03.2025" to "14/03/2025".
// Text that does not look like a date passes through unchanged.
func formatH2HDate(text string) string {
	m := h2hDatePattern.FindStringSubmatch(text)
	if m == nil {
		return text
	}
	year := m[3]
	if len(year) == 2 {
		year = "20" + year
	}
	return fmt.Sprintf("%s/%s/%s", m[1], m[2], year)
}

// safeScore parses a score cell, treating anything non-numeric as zero.
// Dash placeholders show up for walkovers and abandoned games.
func safeScore(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	v, err := strconv.Atoi(text)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
