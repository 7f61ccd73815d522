package models

import (
	"fmt"
	"time"
)

// Match status values as persisted in the day file.
const (
	StatusComplete   = "complete"
	StatusIncomplete = "incomplete"
)

// CreatedAtLayout is the timestamp format used for MatchRecord.CreatedAt
// and the store's last_update metadata field.
const CreatedAtLayout = "2006-01-02 15:04:05"

// MatchRecord is one scheduled basketball match with everything collected
// for it: schedule info, the selected odds line and the H2H history.
type MatchRecord struct {
	MatchID    string           `json:"match_id"`
	Country    string           `json:"country"`
	League     string           `json:"league"`
	HomeTeam   string           `json:"home_team"`
	AwayTeam   string           `json:"away_team"`
	Date       string           `json:"date"`
	Time       string           `json:"time"`
	CreatedAt  string           `json:"created_at"`
	Status     string           `json:"status"`
	SkipReason string           `json:"skip_reason"`
	Odds       *OddsRecord      `json:"odds,omitempty"`
	H2HMatches []H2HMatchRecord `json:"h2h_matches"`

	// Final result fields, filled in by the results pass after the
	// match has been played. Absent until then.
	HomeScore   *int   `json:"home_score,omitempty"`
	AwayScore   *int   `json:"away_score,omitempty"`
	FinalStatus string `json:"final_status,omitempty"` // normalized, e.g. "finished"
}

// NewMatchRecord builds a record with CreatedAt set to now and a non-nil
// H2H slice so the persisted document always carries a list.
func NewMatchRecord(matchID string) MatchRecord {
	return MatchRecord{
		MatchID:    matchID,
		CreatedAt:  time.Now().Format(CreatedAtLayout),
		Status:     StatusComplete,
		H2HMatches: []H2HMatchRecord{},
	}
}

// IsComplete reports whether the record passed the completeness classifier.
func (m *MatchRecord) IsComplete() bool {
	return m.Status == StatusComplete
}

// Display returns the record's human-readable identity for log lines.
func (m *MatchRecord) Display() string {
	if m.HomeTeam != "" || m.AwayTeam != "" {
		return fmt.Sprintf("%s (%s vs %s)", m.MatchID, m.HomeTeam, m.AwayTeam)
	}
	return m.MatchID
}

// OddsRecord holds the moneyline odds plus the selected over/under line.
// Every field is optional: a nil value means the site did not provide it
// or it failed validation.
type OddsRecord struct {
	HomeOdds   *float64 `json:"home_odds"`
	AwayOdds   *float64 `json:"away_odds"`
	OverOdds   *float64 `json:"over_odds"`
	UnderOdds  *float64 `json:"under_odds"`
	MatchTotal *float64 `json:"match_total"` // the selected line value, e.g. 152.5
}

// H2HMatchRecord is one prior meeting between the two teams.
type H2HMatchRecord struct {
	Date        string `json:"date"` // dd/mm/yyyy
	HomeTeam    string `json:"home_team"`
	AwayTeam    string `json:"away_team"`
	HomeScore   int    `json:"home_score"`
	AwayScore   int    `json:"away_score"`
	Competition string `json:"competition"`
}

// AlternativeLine is one row of the over/under market as scraped, before
// any numeric parsing. Values stay raw strings here because the site may
// render removed or suspended odds as "-" or empty text; the selection
// algorithm decides how to treat those.
type AlternativeLine struct {
	Value string // the line, e.g. "152.5"
	Over  string
	Under string
}

// ProcessedMatch is one (id, reason) pair from a previous run, used to
// skip matches that were already handled.
type ProcessedMatch struct {
	MatchID string
	Reason  string
}

// RunSummary accumulates per-run counters for the final report.
type RunSummary struct {
	Scheduled           int
	PreviouslyProcessed int
	Skipped             int
	New                 int
	Complete            int
	Incomplete          int
}

func (s RunSummary) String() string {
	return fmt.Sprintf("scheduled=%d previously_processed=%d skipped=%d new=%d (complete=%d, incomplete=%d)",
		s.Scheduled, s.PreviouslyProcessed, s.Skipped, s.New, s.Complete, s.Incomplete)
}

// RunProgress is a point-in-time snapshot of the active run, served by the
// /progress endpoint.
type RunProgress struct {
	Phase      string    `json:"phase"` // idle, schedule, matches, results, done
	Current    int       `json:"current"`
	Total      int       `json:"total"`
	Message    string    `json:"message"`
	Complete   int       `json:"complete"`
	Incomplete int       `json:"incomplete"`
	StartedAt  time.Time `json:"started_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Float is a convenience for building optional odds values in one line.
func Float(v float64) *float64 { return &v }

// Int is the *int counterpart of Float, used by the results pass.
func Int(v int) *int { return &v }
