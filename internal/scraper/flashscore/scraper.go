// Package flashscore implements the per-match collection pipeline for
// flashscore.co.ke basketball: schedule discovery, per-match odds and
// head-to-head collection, completeness classification and idempotent
// persistence into per-day documents.
package flashscore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/courtsight/flashcourt/internal/pkg/config"
	"github.com/courtsight/flashcourt/internal/pkg/interfaces"
	"github.com/courtsight/flashcourt/internal/pkg/models"
	"github.com/courtsight/flashcourt/internal/pkg/performance"
	"github.com/courtsight/flashcourt/internal/pkg/retry"
	"github.com/courtsight/flashcourt/internal/pkg/storage"
	"github.com/courtsight/flashcourt/internal/pkg/urls"
)

// Deps collects everything a Scraper needs. Page, Store and Config are
// required; the rest default to working no-ops so tests and minimal
// setups stay small.
type Deps struct {
	Page     interfaces.Page
	Store    storage.MatchStore
	Config   *config.Config
	Reporter interfaces.Reporter   // nil: feedback is discarded
	Tracker  *performance.Tracker  // nil: the process-wide tracker
	Mirror   storage.ResultsMirror // nil: no relational mirror
	Logger   *slog.Logger          // nil: slog.Default()
	Stop     func() bool           // nil: run until done or ctx cancelled
}

// Scraper drives one browser page through the per-match pipeline.
// It owns no goroutines: every operation runs on the caller's goroutine
// and stops cooperatively between matches.
type Scraper struct {
	page     interfaces.Page
	store    storage.MatchStore
	cfg      *config.Config
	reporter interfaces.Reporter
	retrier  *retry.Executor
	tracker  *performance.Tracker
	mirror   storage.ResultsMirror
	logger   *slog.Logger
	stop     func() bool

	// Stage totals for the run report. The pipeline is strictly
	// sequential, so plain accumulation is safe.
	timings runTimings
}

type runTimings struct {
	schedule time.Duration
	pageLoad time.Duration
	extract  time.Duration
	store    time.Duration
}

// New validates the dependencies and builds a Scraper.
func New(deps Deps) (*Scraper, error) {
	if deps.Page == nil {
		return nil, errors.New("page capability is required")
	}
	if deps.Store == nil {
		return nil, errors.New("match store is required")
	}
	if deps.Config == nil {
		return nil, errors.New("config is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reporter := deps.Reporter
	if reporter == nil {
		reporter = interfaces.NopReporter{}
	}
	tracker := deps.Tracker
	if tracker == nil {
		tracker = performance.GetTracker()
	}

	s := &Scraper{
		page:     deps.Page,
		store:    deps.Store,
		cfg:      deps.Config,
		reporter: reporter,
		tracker:  tracker,
		mirror:   deps.Mirror,
		logger:   logger,
		stop:     deps.Stop,
	}
	s.retrier = retry.New(deps.Config.Retry.MaxRetries, deps.Config.Retry.BaseDelay(), logger).
		WithClassifier(func(err error) bool {
			if retry.IsNetworkError(err) {
				tracker.RecordRetry()
				return true
			}
			return false
		})
	return s, nil
}

// ScrapeDay collects every scheduled match of the requested day's
// listing: discovery, dedup against the day file, then the per-match
// pipeline. Individual match failures never abort the run; only context
// cancellation, the stop predicate or a discovery failure end it early.
func (s *Scraper) ScrapeDay(ctx context.Context, day Day) (models.RunSummary, error) {
	var summary models.RunSummary
	runStart := time.Now()
	s.timings = runTimings{}

	s.logger.Info("starting scraping run", "day", string(day))
	s.reporter.Status(fmt.Sprintf("=== Starting scraping for %s ===", day))

	scheduleStart := time.Now()
	found, err := s.discoverMatches(ctx, day)
	s.timings.schedule = time.Since(scheduleStart)
	if err != nil {
		return summary, fmt.Errorf("discover matches: %w", err)
	}
	summary.Scheduled = len(found)

	if len(found) == 0 {
		s.logger.Info("no matches found for scraping", "day", string(day))
		s.reporter.Status("No matches found for scraping.")
		return summary, nil
	}
	s.reporter.Status(fmt.Sprintf("Found %d matches for %s.", len(found), strings.ToLower(string(day))))

	processed, err := s.store.ProcessedIDs()
	if err != nil {
		return summary, fmt.Errorf("read processed ids: %w", err)
	}
	processedReasons := make(map[string]string, len(processed))
	for _, p := range processed {
		processedReasons[p.MatchID] = p.Reason
	}

	total := len(found)
	for i, d := range found {
		if s.stopRequested(ctx) {
			s.logger.Info("stop signal received, stopping run", "handled", i, "total", total)
			s.reporter.Status("Stop signal received, stopping scraper...")
			break
		}

		mid := d.ref.MatchID
		s.reporter.Progress(i+1, total, "Loading match data")
		s.logger.Info("processing match", "match_id", mid, "position", i+1, "total", total)

		if reason, ok := processedReasons[mid]; ok {
			summary.PreviouslyProcessed++
			msg := fmt.Sprintf("Skipping already processed match %s (reason: %s)", mid, reason)
			s.logger.Info("skipping already processed match", "match_id", mid, "reason", reason)
			s.reporter.Status(msg)
			continue
		}

		rec, ok := s.processMatch(ctx, i+1, total, d)
		if !ok {
			summary.Skipped++
			continue
		}
		summary.New++
		if rec.IsComplete() {
			summary.Complete++
		} else {
			summary.Incomplete++
		}
	}

	s.tracker.RecordRun(
		s.timings.schedule, s.timings.pageLoad, s.timings.extract, s.timings.store,
		time.Since(runStart), summary.New, summary.Complete, summary.Incomplete)

	s.logger.Info("scraping run finished", "day", string(day), "summary", summary.String())
	s.reporter.Status(fmt.Sprintf("--- Summary: collected %d matches for %s ---", summary.New, strings.ToLower(string(day))))
	return summary, nil
}

// processMatch drives a single match through summary, odds and h2h
// collection, classifies it and saves the record. Only the summary page
// is load-critical; odds and h2h failures degrade the record instead of
// dropping it. Returns false when no record could be persisted.
func (s *Scraper) processMatch(ctx context.Context, pos, total int, d discovered) (models.MatchRecord, bool) {
	mid := d.ref.MatchID
	matchStart := time.Now()
	var loadSpent time.Duration

	s.reporter.Status(fmt.Sprintf("Processing match %s...", mid))

	doc, dur, err := s.timedLoad(ctx, d.urls.Summary, urls.SummaryPath, "summary", mid)
	loadSpent += dur
	if err != nil {
		s.logger.Warn("failed to load match page", "match_id", mid, "error", err)
		s.reporter.Status(fmt.Sprintf("Failed to load match page for %s", mid))
		s.tracker.RecordMatch(mid, "failed", 0, loadSpent, 0, time.Since(matchStart), false)
		return models.MatchRecord{}, false
	}

	extractStart := time.Now()
	fields := s.extractMatchFields(doc, mid)
	s.timings.extract += time.Since(extractStart)

	rec := models.NewMatchRecord(mid)
	rec.Country = fields.Country
	rec.League = fields.League
	rec.HomeTeam = fields.HomeTeam
	rec.AwayTeam = fields.AwayTeam
	rec.Date = fields.Date
	rec.Time = fields.Time

	odds := &models.OddsRecord{}

	s.reporter.Progress(pos, total, "Extracting odds data")
	doc, dur, err = s.timedLoad(ctx, d.urls.HomeAway, urls.HomeAwayPath, "home-away", mid)
	loadSpent += dur
	if err != nil {
		s.logger.Warn("failed to load home/away odds", "match_id", mid, "error", err)
		s.reporter.Status(fmt.Sprintf("Failed to load home/away odds for %s", rec.Display()))
	} else {
		extractStart = time.Now()
		odds.HomeOdds, odds.AwayOdds = s.extractHomeAwayOdds(doc, mid)
		s.timings.extract += time.Since(extractStart)
	}

	doc, dur, err = s.timedLoad(ctx, d.urls.OverUnder, urls.OverUnderPath, "over-under", mid)
	loadSpent += dur
	if err != nil {
		s.logger.Warn("failed to load over/under odds", "match_id", mid, "error", err)
		s.reporter.Status(fmt.Sprintf("Failed to load over/under odds for %s", rec.Display()))
	} else {
		extractStart = time.Now()
		lines := s.extractAlternatives(doc)
		if selected := SelectAlternative(lines, s.targetOverOdds()); selected != nil {
			applySelectedLine(odds, selected)
			s.logger.Debug("selected over/under line", "match_id", mid,
				"line", selected.Value, "over", selected.Over, "under", selected.Under)
		} else {
			s.logger.Warn("no over/under alternative available", "match_id", mid)
			s.reporter.Status(fmt.Sprintf("No selected over/under alternative available for %s", rec.Display()))
		}
		s.timings.extract += time.Since(extractStart)
	}

	s.reporter.Progress(pos, total, "Loading H2H data")
	h2h, rawCount, dur := s.collectH2H(ctx, d.urls.H2H, mid)
	loadSpent += dur

	cls := Classify(odds, rawCount, s.cfg.Scraper.MinH2HMatches)
	rec.Odds = odds
	rec.H2HMatches = h2h
	rec.Status = cls.Status
	rec.SkipReason = cls.SkipReason
	if cls.SkipReason != "" {
		s.logger.Warn("match classified incomplete", "match_id", mid, "skip_reason", cls.SkipReason)
	}

	s.reporter.Progress(pos, total, "Saving match data")
	storeStart := time.Now()
	err = s.store.Save([]models.MatchRecord{rec})
	storeDur := time.Since(storeStart)
	s.timings.store += storeDur
	if err != nil {
		s.logger.Error("failed to save match", "match_id", mid, "error", err)
		s.reporter.Status(fmt.Sprintf("Failed to save match %s", rec.Display()))
		s.tracker.RecordMatch(mid, rec.Status, rawCount, loadSpent, storeDur, time.Since(matchStart), false)
		return models.MatchRecord{}, false
	}

	if s.mirror != nil {
		if err := s.mirror.MirrorMatches(ctx, []models.MatchRecord{rec}); err != nil {
			s.logger.Warn("relational mirror write failed", "match_id", mid, "error", err)
		}
	}

	s.tracker.RecordMatch(mid, rec.Status, rawCount, loadSpent, storeDur, time.Since(matchStart), true)
	s.reporter.MatchFinalized(mid, rec.Status)
	s.logMatchRecord(&rec)
	return rec, true
}

// collectH2H loads the h2h page, expands the list via the show-more
// control when present, and extracts the mutual-meetings rows. Failures
// here never abort the match: they come back as an empty history with a
// raw count of zero.
func (s *Scraper) collectH2H(ctx context.Context, url, mid string) ([]models.H2HMatchRecord, int, time.Duration) {
	doc, dur, err := s.timedLoad(ctx, url, urls.H2HPath, "h2h", mid)
	if err != nil {
		s.logger.Warn("failed to load h2h page", "match_id", mid, "error", err)
		s.reporter.Status(fmt.Sprintf("Failed to load H2H data for match %s", mid))
		return []models.H2HMatchRecord{}, 0, dur
	}

	if s.hasShowMore(doc) {
		if err := s.page.Click(ctx, s.cfg.Selectors.H2H.ShowMore); err != nil {
			s.logger.Warn("show more click failed", "match_id", mid, "error", err)
		} else {
			if err := s.page.WaitReady(ctx, s.cfg.Timeouts.DynamicContent()); err != nil {
				s.logger.Warn("dynamic content wait timed out after show more", "match_id", mid, "error", err)
			}
			if expanded, err := s.capture(ctx); err != nil {
				s.logger.Warn("re-capture after show more failed", "match_id", mid, "error", err)
			} else {
				doc = expanded
			}
		}
	} else {
		s.logger.Warn("show more control absent, h2h list may be short", "match_id", mid)
	}

	extractStart := time.Now()
	records, rawCount, err := s.extractH2H(doc, mid)
	s.timings.extract += time.Since(extractStart)
	if err != nil {
		s.logger.Warn("failed to extract h2h data", "match_id", mid, "error", err)
		s.reporter.Status(fmt.Sprintf("Skipping H2H data for match %s due to extraction error", mid))
		return []models.H2HMatchRecord{}, 0, dur
	}

	s.logger.Info("h2h matches found", "match_id", mid, "count", rawCount, "required", s.cfg.Scraper.MinH2HMatches)
	s.reporter.Status(fmt.Sprintf("H2H matches found: %d (required: %d)", rawCount, s.cfg.Scraper.MinH2HMatches))
	return records, rawCount, dur
}

// timedLoad wraps loadPage and feeds the run's page-load total.
func (s *Scraper) timedLoad(ctx context.Context, url, wantSegment, pageKind, matchID string) (*goquery.Document, time.Duration, error) {
	start := time.Now()
	doc, err := s.loadPage(ctx, url, wantSegment, pageKind, matchID)
	dur := time.Since(start)
	s.timings.pageLoad += dur
	return doc, dur, err
}

func (s *Scraper) targetOverOdds() float64 {
	if s.cfg.Scraper.TargetOverOdds > 0 {
		return s.cfg.Scraper.TargetOverOdds
	}
	return DefaultTargetOverOdds
}

// stopRequested folds the context and the cooperative stop predicate.
func (s *Scraper) stopRequested(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return s.stop != nil && s.stop()
}

func (s *Scraper) logMatchRecord(rec *models.MatchRecord) {
	attrs := []any{
		"match_id", rec.MatchID,
		"country", rec.Country,
		"league", rec.League,
		"home_team", rec.HomeTeam,
		"away_team", rec.AwayTeam,
		"date", rec.Date,
		"time", rec.Time,
		"status", rec.Status,
		"h2h_count", len(rec.H2HMatches),
	}
	if rec.SkipReason != "" {
		attrs = append(attrs, "skip_reason", rec.SkipReason)
	}
	if rec.Odds != nil && rec.Odds.MatchTotal != nil {
		attrs = append(attrs, "match_total", *rec.Odds.MatchTotal)
	}
	s.logger.Info("match collected", attrs...)
}
