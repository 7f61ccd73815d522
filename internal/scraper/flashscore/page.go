package flashscore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// loadPage navigates to url, waits for the dynamically rendered content
// to settle, verifies the resulting location and returns the captured
// document. The whole sequence runs under the retry executor so a flaky
// navigation gets re-attempted as one unit. pageKind names the page for
// the performance tracker ("summary", "home-away", "over-under", "h2h",
// "schedule").
func (s *Scraper) loadPage(ctx context.Context, url, wantSegment, pageKind, matchID string) (*goquery.Document, error) {
	var doc *goquery.Document
	start := time.Now()

	op := func(ctx context.Context) error {
		if err := s.page.Navigate(ctx, url); err != nil {
			return fmt.Errorf("navigate to %s: %w", url, err)
		}
		if err := s.page.WaitReady(ctx, s.cfg.Timeouts.DynamicContent()); err != nil {
			s.logger.Warn("dynamic content wait timed out, capturing anyway", "url", url, "error", err)
		}
		if wantSegment != "" {
			location, err := s.page.Location(ctx)
			if err != nil {
				return fmt.Errorf("read location: %w", err)
			}
			if err := verifyLocation(location, wantSegment); err != nil {
				return err
			}
		}
		var err error
		doc, err = s.capture(ctx)
		return err
	}

	err := s.retrier.Do(ctx, pageKind, op)
	s.tracker.RecordPageLoad(pageKind, matchID, time.Since(start), err == nil, err)
	if err != nil {
		if errors.Is(err, ErrPageLoad) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrPageLoad, pageKind, err)
	}
	return doc, nil
}

// capture serializes the current page and parses it. Extraction always
// works on this snapshot, never on the live DOM.
func (s *Scraper) capture(ctx context.Context) (*goquery.Document, error) {
	html, err := s.page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}
