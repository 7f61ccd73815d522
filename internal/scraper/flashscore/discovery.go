package flashscore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/courtsight/flashcourt/internal/pkg/storage"
	"github.com/courtsight/flashcourt/internal/pkg/urls"
)

// Day selects which schedule listing a run collects.
type Day string

const (
	Today    Day = "Today"
	Tomorrow Day = "Tomorrow"
)

// DateKey returns the day-file key the run writes to.
func (d Day) DateKey(now time.Time) string {
	if d == Tomorrow {
		return storage.DateKey(now.AddDate(0, 0, 1))
	}
	return storage.DateKey(now)
}

// Listing rows carry their match id as an element id with this prefix.
const scheduledRowIDPrefix = "g_3_"

// rowAnchor finds the canonical match link inside a listing row.
const rowAnchor = `a[href*="/match/"]`

// discovered is one schedule listing row resolved to its canonical URLs.
// URLs are captured up front from the row's own link; a row whose link
// cannot be captured or parsed is dropped rather than guessed at.
type discovered struct {
	ref  urls.MatchRef
	urls urls.MatchURLs
}

// discoverMatches loads the basketball listing and collects the
// scheduled rows for the requested day. An empty Today listing falls
// back to Tomorrow, since late in the evening the site often shows no
// remaining games for the current day.
func (s *Scraper) discoverMatches(ctx context.Context, day Day) ([]discovered, error) {
	doc, err := s.loadPage(ctx, s.cfg.Scraper.BaseURL, "", "schedule", "")
	if err != nil {
		return nil, fmt.Errorf("load schedule listing: %w", err)
	}

	if day == Tomorrow {
		doc, err = s.advanceToTomorrow(ctx)
		if err != nil {
			return nil, err
		}
		return s.scheduledRows(doc), nil
	}

	rows := s.scheduledRows(doc)
	if len(rows) == 0 {
		s.reporter.Status("No matches found for today. Checking tomorrow's schedule.")
		s.logger.Info("no matches for today, checking tomorrow")
		doc, err = s.advanceToTomorrow(ctx)
		if err != nil {
			return nil, err
		}
		rows = s.scheduledRows(doc)
	}
	return rows, nil
}

// advanceToTomorrow clicks the calendar's next-day control and captures
// the re-rendered listing.
func (s *Scraper) advanceToTomorrow(ctx context.Context) (*goquery.Document, error) {
	tab := s.cfg.Selectors.Match.TomorrowTab
	if err := s.page.WaitVisible(ctx, tab, s.cfg.Timeouts.Element()); err != nil {
		return nil, fmt.Errorf("tomorrow control not visible: %w", err)
	}
	if err := s.page.Click(ctx, tab); err != nil {
		return nil, fmt.Errorf("click tomorrow control: %w", err)
	}
	if err := s.page.WaitReady(ctx, s.cfg.Timeouts.DynamicContent()); err != nil {
		s.logger.Warn("dynamic content wait timed out after calendar click", "error", err)
	}
	return s.capture(ctx)
}

// scheduledRows extracts every scheduled row the captured listing has,
// in document order. Each row must yield both its id and a parseable
// match link; rows missing either are logged and skipped.
func (s *Scraper) scheduledRows(doc *goquery.Document) []discovered {
	var found []discovered
	doc.Find(s.cfg.Selectors.Match.ScheduledRow).Each(func(_ int, row *goquery.Selection) {
		elementID := row.AttrOr("id", "")
		mid, ok := strings.CutPrefix(elementID, scheduledRowIDPrefix)
		if !ok || mid == "" {
			return
		}

		href := row.Find(rowAnchor).First().AttrOr("href", "")
		if href == "" {
			s.logger.Warn("skipping match: no captured URL found", "match_id", mid)
			return
		}
		ref, err := urls.Parse(href)
		if err != nil {
			s.logger.Warn("skipping match: row link did not parse", "match_id", mid, "href", href, "error", err)
			return
		}
		if ref.MatchID != mid {
			s.logger.Warn("skipping match: row link is for a different id", "match_id", mid, "link_id", ref.MatchID)
			return
		}
		pageURLs, err := ref.URLs()
		if err != nil {
			s.logger.Warn("skipping match: could not build page URLs", "match_id", mid, "error", err)
			return
		}
		found = append(found, discovered{ref: ref, urls: pageURLs})
	})
	return found
}
