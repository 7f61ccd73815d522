package flashscore

import (
	"context"
	"fmt"
	"time"

	"github.com/courtsight/flashcourt/internal/pkg/urls"
)

// ResultsSummary accumulates the counters of one results pass.
type ResultsSummary struct {
	Candidates int // complete records loaded from the day file
	Updated    int // final scores written
	Unfinished int // matches not yet finished, left untouched
	Failed     int // load, extraction or store failures
}

func (s ResultsSummary) String() string {
	return fmt.Sprintf("candidates=%d updated=%d unfinished=%d failed=%d",
		s.Candidates, s.Updated, s.Unfinished, s.Failed)
}

// CollectResults revisits every complete record of the store's day file
// and fills in the final score where the match has finished. dateKey only
// labels reporting; the records come from the store the Scraper was built
// with. Matches that are not finished yet (or fail to load) are left for a
// later pass, so running this repeatedly is safe.
func (s *Scraper) CollectResults(ctx context.Context, dateKey string) (ResultsSummary, error) {
	var summary ResultsSummary
	runStart := time.Now()

	s.logger.Info("starting results run", "date", dateKey)
	s.reporter.Status(fmt.Sprintf("=== Starting results scraping for %s ===", dateKey))

	records, err := s.store.Load()
	if err != nil {
		return summary, fmt.Errorf("load day file: %w", err)
	}
	summary.Candidates = len(records)

	if len(records) == 0 {
		s.logger.Info("no matches found for results scraping", "date", dateKey)
		s.reporter.Status("No matches found for results scraping.")
		return summary, nil
	}
	s.reporter.Status(fmt.Sprintf("Found %d matches for results scraping.", len(records)))

	total := len(records)
	for i, rec := range records {
		if s.stopRequested(ctx) {
			s.logger.Info("stop signal received, stopping results run", "handled", i, "total", total)
			s.reporter.Status("Stop signal received, stopping scraper...")
			break
		}

		mid := rec.MatchID
		s.reporter.Progress(i+1, total, "Loading match results")

		url, err := urls.SummaryByMid(mid)
		if err != nil {
			s.logger.Warn("could not build summary url", "match_id", mid, "error", err)
			summary.Failed++
			continue
		}

		doc, _, err := s.timedLoad(ctx, url, urls.SummaryPath, "summary", mid)
		if err != nil {
			s.logger.Warn("failed to load match summary", "match_id", mid, "error", err)
			s.reporter.Status(fmt.Sprintf("Failed to load results for %s", rec.Display()))
			summary.Failed++
			continue
		}

		extractStart := time.Now()
		result, err := s.extractResult(doc, mid)
		s.timings.extract += time.Since(extractStart)
		if err != nil {
			s.logger.Warn("failed to extract result", "match_id", mid, "error", err)
			s.reporter.Status(fmt.Sprintf("Failed to extract result for %s", rec.Display()))
			summary.Failed++
			continue
		}

		if !result.Finished() {
			s.logger.Info("match not finished yet", "match_id", mid, "status", result.Status)
			summary.Unfinished++
			continue
		}

		storeStart := time.Now()
		err = s.store.UpdateResult(mid, result.HomeScore, result.AwayScore, result.Status)
		s.timings.store += time.Since(storeStart)
		if err != nil {
			s.logger.Warn("failed to store result", "match_id", mid, "error", err)
			summary.Failed++
			continue
		}

		if s.mirror != nil {
			if err := s.mirror.MirrorResult(ctx, mid, result.HomeScore, result.AwayScore); err != nil {
				s.logger.Warn("relational mirror result write failed", "match_id", mid, "error", err)
			}
		}

		summary.Updated++
		s.logger.Info("final result stored", "match_id", mid,
			"home_score", result.HomeScore, "away_score", result.AwayScore, "status", result.Status)
		s.reporter.Status(fmt.Sprintf("Result for %s: %d-%d", rec.Display(), result.HomeScore, result.AwayScore))
	}

	s.logger.Info("results run finished", "date", dateKey,
		"summary", summary.String(), "elapsed", time.Since(runStart))
	s.reporter.Status(fmt.Sprintf("--- Results for %s: %s ---", dateKey, summary.String()))
	return summary, nil
}
