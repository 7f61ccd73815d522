package performance

import (
	"log/slog"
	"sync"
	"time"
)

// Tracker tracks performance metrics for scrape operations
type Tracker struct {
	mu sync.RWMutex

	// Overall metrics
	TotalRuns       int
	TotalMatches    int
	TotalComplete   int
	TotalIncomplete int
	TotalRetries    int

	// Timing metrics
	TotalDuration    time.Duration
	ScheduleDuration time.Duration
	PageLoadDuration time.Duration
	ExtractDuration  time.Duration
	StoreDuration    time.Duration

	// Per-match metrics
	MatchTimings []MatchTiming

	// Page load metrics
	PageLoads []PageLoad
}

// MatchTiming tracks timing for a single match
type MatchTiming struct {
	MatchID   string
	Status    string
	H2HCount  int
	LoadTime  time.Duration
	StoreTime time.Duration
	TotalTime time.Duration
	Success   bool
}

// PageLoad tracks a single match page navigation
type PageLoad struct {
	Page      string // "summary", "home-away", "over-under", "h2h", "schedule"
	MatchID   string
	Duration  time.Duration
	Success   bool
	Error     string
	Timestamp time.Time
}

var globalTracker = &Tracker{
	MatchTimings: make([]MatchTiming, 0, 200),
	PageLoads:    make([]PageLoad, 0, 1000),
}

// GetTracker returns the global performance tracker
func GetTracker() *Tracker {
	return globalTracker
}

// Reset resets all metrics
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.TotalRuns = 0
	t.TotalMatches = 0
	t.TotalComplete = 0
	t.TotalIncomplete = 0
	t.TotalRetries = 0
	t.TotalDuration = 0
	t.ScheduleDuration = 0
	t.PageLoadDuration = 0
	t.ExtractDuration = 0
	t.StoreDuration = 0
	t.MatchTimings = t.MatchTimings[:0]
	t.PageLoads = t.PageLoads[:0]
}

// RecordRun records a complete scrape run
func (t *Tracker) RecordRun(
	schedule, pageLoad, extract, store, total time.Duration,
	matches, complete, incomplete int,
) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.TotalRuns++
	t.TotalMatches += matches
	t.TotalComplete += complete
	t.TotalIncomplete += incomplete
	t.TotalDuration += total
	t.ScheduleDuration += schedule
	t.PageLoadDuration += pageLoad
	t.ExtractDuration += extract
	t.StoreDuration += store
}

// RecordMatch records timing for a single match
func (t *Tracker) RecordMatch(matchID, status string, h2hCount int, loadTime, storeTime, totalTime time.Duration, success bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.MatchTimings = append(t.MatchTimings, MatchTiming{
		MatchID:   matchID,
		Status:    status,
		H2HCount:  h2hCount,
		LoadTime:  loadTime,
		StoreTime: storeTime,
		TotalTime: totalTime,
		Success:   success,
	})
}

// RecordPageLoad records a single page navigation
func (t *Tracker) RecordPageLoad(page, matchID string, duration time.Duration, success bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	errStr := ""
	if err != nil {
		errStr = err.Error()
	}

	t.PageLoads = append(t.PageLoads, PageLoad{
		Page:      page,
		MatchID:   matchID,
		Duration:  duration,
		Success:   success,
		Error:     errStr,
		Timestamp: time.Now(),
	})
}

// RecordRetry counts a retried operation
func (t *Tracker) RecordRetry() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.TotalRetries++
}

// PrintSummary prints a detailed performance summary
func (t *Tracker) PrintSummary() {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.TotalRuns == 0 {
		slog.Info("No performance data collected yet")
		return
	}

	slog.Info("PERFORMANCE SUMMARY")

	runs := float64(t.TotalRuns)
	slog.Info("Overall Statistics",
		"total_runs", t.TotalRuns,
		"total_matches", t.TotalMatches,
		"avg_matches_per_run", float64(t.TotalMatches)/runs,
		"complete", t.TotalComplete,
		"incomplete", t.TotalIncomplete,
		"retries", t.TotalRetries)

	avgTotal := t.TotalDuration / time.Duration(t.TotalRuns)
	avgSchedule := t.ScheduleDuration / time.Duration(t.TotalRuns)
	avgPageLoad := t.PageLoadDuration / time.Duration(t.TotalRuns)
	avgExtract := t.ExtractDuration / time.Duration(t.TotalRuns)
	avgStore := t.StoreDuration / time.Duration(t.TotalRuns)

	schedulePercent := 0.0
	pageLoadPercent := 0.0
	extractPercent := 0.0
	storePercent := 0.0
	if t.TotalDuration > 0 {
		schedulePercent = float64(t.ScheduleDuration) / float64(t.TotalDuration) * 100
		pageLoadPercent = float64(t.PageLoadDuration) / float64(t.TotalDuration) * 100
		extractPercent = float64(t.ExtractDuration) / float64(t.TotalDuration) * 100
		storePercent = float64(t.StoreDuration) / float64(t.TotalDuration) * 100
	}

	slog.Info("Timing Breakdown (average per run)",
		"schedule", avgSchedule, "schedule_percent", schedulePercent,
		"page_load", avgPageLoad, "page_load_percent", pageLoadPercent,
		"extract", avgExtract, "extract_percent", extractPercent,
		"store", avgStore, "store_percent", storePercent,
		"total", avgTotal)

	// Per-match statistics
	if len(t.MatchTimings) > 0 {
		var totalMatchTime, totalLoadTime, totalStoreTime time.Duration
		successCount := 0
		totalH2H := 0

		for _, mt := range t.MatchTimings {
			totalMatchTime += mt.TotalTime
			totalLoadTime += mt.LoadTime
			totalStoreTime += mt.StoreTime
			totalH2H += mt.H2HCount
			if mt.Success {
				successCount++
			}
		}

		matches := float64(len(t.MatchTimings))
		slog.Info("Per-Match Statistics",
			"processed_matches", len(t.MatchTimings),
			"success_rate", float64(successCount)/matches*100,
			"success_count", successCount,
			"avg_h2h_per_match", float64(totalH2H)/matches,
			"avg_load_time", totalLoadTime/time.Duration(len(t.MatchTimings)),
			"avg_store_time", totalStoreTime/time.Duration(len(t.MatchTimings)),
			"avg_total_time", totalMatchTime/time.Duration(len(t.MatchTimings)))
	}

	// Page load statistics
	if len(t.PageLoads) > 0 {
		loadsByPage := make(map[string]struct {
			count   int
			total   time.Duration
			success int
		})

		for _, pl := range t.PageLoads {
			stat := loadsByPage[pl.Page]
			stat.count++
			stat.total += pl.Duration
			if pl.Success {
				stat.success++
			}
			loadsByPage[pl.Page] = stat
		}

		slog.Info("Page Loads")
		for page, stat := range loadsByPage {
			avgTime := stat.total / time.Duration(stat.count)
			successRate := float64(stat.success) / float64(stat.count) * 100
			slog.Info("Page Load",
				"page", page,
				"count", stat.count,
				"avg_time", avgTime,
				"success_rate", successRate)
		}

		for _, pl := range slowestPageLoads(t.PageLoads) {
			slog.Info("Slowest Page Load",
				"page", pl.Page,
				"match_id", pl.MatchID[:min(8, len(pl.MatchID))],
				"duration", pl.Duration)
		}
	}
}

// slowestPageLoads keeps the five longest loads, longest first.
func slowestPageLoads(loads []PageLoad) []PageLoad {
	slowest := make([]PageLoad, 0, 5)
	for _, pl := range loads {
		if len(slowest) < 5 || pl.Duration > slowest[len(slowest)-1].Duration {
			slowest = append(slowest, pl)
			for i := len(slowest) - 1; i > 0 && slowest[i].Duration > slowest[i-1].Duration; i-- {
				slowest[i], slowest[i-1] = slowest[i-1], slowest[i]
			}
			if len(slowest) > 5 {
				slowest = slowest[:5]
			}
		}
	}
	return slowest
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// MetricsResponse represents the JSON response structure for /metrics endpoint
type MetricsResponse struct {
	Overall struct {
		TotalRuns       int `json:"total_runs"`
		TotalMatches    int `json:"total_matches"`
		TotalComplete   int `json:"total_complete"`
		TotalIncomplete int `json:"total_incomplete"`
		TotalRetries    int `json:"total_retries"`
	} `json:"overall"`

	Timing struct {
		TotalDuration    string `json:"total_duration"`
		ScheduleDuration string `json:"schedule_duration"`
		PageLoadDuration string `json:"page_load_duration"`
		ExtractDuration  string `json:"extract_duration"`
		StoreDuration    string `json:"store_duration"`

		SchedulePercent float64 `json:"schedule_percent"`
		PageLoadPercent float64 `json:"page_load_percent"`
		ExtractPercent  float64 `json:"extract_percent"`
		StorePercent    float64 `json:"store_percent"`
	} `json:"timing"`

	PerMatch struct {
		ProcessedMatches int     `json:"processed_matches"`
		SuccessRate      float64 `json:"success_rate"`
		AvgH2HPerMatch   float64 `json:"avg_h2h_per_match"`
		AvgLoadTime      string  `json:"avg_load_time"`
		AvgStoreTime     string  `json:"avg_store_time"`
		AvgTotalTime     string  `json:"avg_total_time"`
	} `json:"per_match"`

	PageLoads map[string]struct {
		Count       int     `json:"count"`
		AvgTime     string  `json:"avg_time"`
		SuccessRate float64 `json:"success_rate"`
	} `json:"page_loads"`

	SlowestPageLoads []struct {
		Page     string `json:"page"`
		MatchID  string `json:"match_id"`
		Duration string `json:"duration"`
	} `json:"slowest_page_loads"`
}

// GetMetrics returns structured metrics for JSON API
func (t *Tracker) GetMetrics() MetricsResponse {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var resp MetricsResponse

	resp.Overall.TotalRuns = t.TotalRuns
	resp.Overall.TotalMatches = t.TotalMatches
	resp.Overall.TotalComplete = t.TotalComplete
	resp.Overall.TotalIncomplete = t.TotalIncomplete
	resp.Overall.TotalRetries = t.TotalRetries

	if t.TotalRuns > 0 {
		resp.Timing.TotalDuration = (t.TotalDuration / time.Duration(t.TotalRuns)).String()
		resp.Timing.ScheduleDuration = (t.ScheduleDuration / time.Duration(t.TotalRuns)).String()
		resp.Timing.PageLoadDuration = (t.PageLoadDuration / time.Duration(t.TotalRuns)).String()
		resp.Timing.ExtractDuration = (t.ExtractDuration / time.Duration(t.TotalRuns)).String()
		resp.Timing.StoreDuration = (t.StoreDuration / time.Duration(t.TotalRuns)).String()

		if t.TotalDuration > 0 {
			resp.Timing.SchedulePercent = float64(t.ScheduleDuration) / float64(t.TotalDuration) * 100
			resp.Timing.PageLoadPercent = float64(t.PageLoadDuration) / float64(t.TotalDuration) * 100
			resp.Timing.ExtractPercent = float64(t.ExtractDuration) / float64(t.TotalDuration) * 100
			resp.Timing.StorePercent = float64(t.StoreDuration) / float64(t.TotalDuration) * 100
		}
	}

	if len(t.MatchTimings) > 0 {
		var totalMatchTime, totalLoadTime, totalStoreTime time.Duration
		successCount := 0
		totalH2H := 0

		for _, mt := range t.MatchTimings {
			totalMatchTime += mt.TotalTime
			totalLoadTime += mt.LoadTime
			totalStoreTime += mt.StoreTime
			totalH2H += mt.H2HCount
			if mt.Success {
				successCount++
			}
		}

		matches := float64(len(t.MatchTimings))
		resp.PerMatch.ProcessedMatches = len(t.MatchTimings)
		resp.PerMatch.SuccessRate = float64(successCount) / matches * 100
		resp.PerMatch.AvgH2HPerMatch = float64(totalH2H) / matches
		resp.PerMatch.AvgLoadTime = (totalLoadTime / time.Duration(len(t.MatchTimings))).String()
		resp.PerMatch.AvgStoreTime = (totalStoreTime / time.Duration(len(t.MatchTimings))).String()
		resp.PerMatch.AvgTotalTime = (totalMatchTime / time.Duration(len(t.MatchTimings))).String()
	}

	resp.PageLoads = make(map[string]struct {
		Count       int     `json:"count"`
		AvgTime     string  `json:"avg_time"`
		SuccessRate float64 `json:"success_rate"`
	})

	if len(t.PageLoads) > 0 {
		loadsByPage := make(map[string]struct {
			count   int
			total   time.Duration
			success int
		})

		for _, pl := range t.PageLoads {
			stat := loadsByPage[pl.Page]
			stat.count++
			stat.total += pl.Duration
			if pl.Success {
				stat.success++
			}
			loadsByPage[pl.Page] = stat
		}

		for page, stat := range loadsByPage {
			resp.PageLoads[page] = struct {
				Count       int     `json:"count"`
				AvgTime     string  `json:"avg_time"`
				SuccessRate float64 `json:"success_rate"`
			}{
				Count:       stat.count,
				AvgTime:     (stat.total / time.Duration(stat.count)).String(),
				SuccessRate: float64(stat.success) / float64(stat.count) * 100,
			}
		}

		slowest := slowestPageLoads(t.PageLoads)
		resp.SlowestPageLoads = make([]struct {
			Page     string `json:"page"`
			MatchID  string `json:"match_id"`
			Duration string `json:"duration"`
		}, 0, len(slowest))

		for _, pl := range slowest {
			matchID := pl.MatchID
			if len(matchID) > 16 {
				matchID = matchID[:16]
			}
			resp.SlowestPageLoads = append(resp.SlowestPageLoads, struct {
				Page     string `json:"page"`
				MatchID  string `json:"match_id"`
				Duration string `json:"duration"`
			}{
				Page:     pl.Page,
				MatchID:  matchID,
				Duration: pl.Duration.String(),
			})
		}
	}

	return resp
}
