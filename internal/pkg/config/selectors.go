package config

import "fmt"

// Selectors holds every CSS selector the scraper uses, grouped by page
// domain. All of them are overridable from the config file so a site
// markup change does not require a rebuild; Validate rejects a config
// that blanks out a required one.
type Selectors struct {
	Match   MatchSelectors   `yaml:"match"`
	Odds    OddsSelectors    `yaml:"odds"`
	H2H     H2HSelectors     `yaml:"h2h"`
	Results ResultsSelectors `yaml:"results"`
}

// MatchSelectors covers the schedule listing and the match summary page.
type MatchSelectors struct {
	ScheduledRow string `yaml:"scheduled_row"` // one listing row per scheduled match
	TomorrowTab  string `yaml:"tomorrow_tab"`  // calendar control switching the listing to the next day
	HomeTeam     string `yaml:"home_team"`
	AwayTeam     string `yaml:"away_team"`
	StartTime    string `yaml:"start_time"` // combined "dd.mm.yyyy hh:mm" field

	// The breadcrumb above the scoreboard renders sport, country and
	// league as repeated spans; country and league are picked by index.
	NavigationText string `yaml:"navigation_text"`
	CountryIndex   int    `yaml:"country_index"`
	LeagueIndex    int    `yaml:"league_index"`
}

// OddsSelectors covers both odds pages. Home/away and over/under cells
// repeat once per bookmaker row; the extractor reads them in document order.
type OddsSelectors struct {
	HomeCell  string `yaml:"home_cell"`
	AwayCell  string `yaml:"away_cell"`
	TotalCell string `yaml:"total_cell"`
	OverCell  string `yaml:"over_cell"`
	UnderCell string `yaml:"under_cell"`
}

// H2HSelectors covers the head-to-head page.
type H2HSelectors struct {
	Section         string `yaml:"section"`
	SectionIndex    int    `yaml:"section_index"` // the mutual-meetings section among repeated h2h sections
	Row             string `yaml:"row"`
	Date            string `yaml:"date"`
	HomeParticipant string `yaml:"home_participant"`
	AwayParticipant string `yaml:"away_participant"`
	HomeScore       string `yaml:"home_score"`
	AwayScore       string `yaml:"away_score"`
	Competition     string `yaml:"competition"`
	NoData          string `yaml:"no_data"` // explicit "no data" marker, distinct from a failed load
	ShowMore        string `yaml:"show_more"`
}

// ResultsSelectors covers the summary page of a finished match.
type ResultsSelectors struct {
	HomeScore   string `yaml:"home_score"`
	AwayScore   string `yaml:"away_score"`
	MatchStatus string `yaml:"match_status"`
}

func DefaultSelectors() Selectors {
	return Selectors{
		Match: MatchSelectors{
			ScheduledRow:   "div.event__match--scheduled",
			TomorrowTab:    "button.calendar__navigation--tomorrow",
			HomeTeam:       "div.duelParticipant__home .participant__participantName",
			AwayTeam:       "div.duelParticipant__away .participant__participantName",
			StartTime:      "div.duelParticipant__startTime",
			NavigationText: `span[data-testid="wcl-scores-overline-03"]`,
			CountryIndex:   1,
			LeagueIndex:    2,
		},
		Odds: OddsSelectors{
			HomeCell:  ".oddsTab__tableWrapper .ui-table__row a.oddsCell__odd:nth-of-type(1)",
			AwayCell:  ".oddsTab__tableWrapper .ui-table__row a.oddsCell__odd:nth-of-type(2)",
			TotalCell: `.oddsTab__tableWrapper .ui-table__row .wcl-oddsCell span[data-testid="wcl-oddsValue"]`,
			OverCell:  ".oddsTab__tableWrapper .ui-table__row a.oddsCell__odd:nth-of-type(1) span",
			UnderCell: ".oddsTab__tableWrapper .ui-table__row a.oddsCell__odd:nth-of-type(2) span",
		},
		H2H: H2HSelectors{
			Section:         "div.h2h__section",
			SectionIndex:    2,
			Row:             "a.h2h__row",
			Date:            "span.h2h__date",
			HomeParticipant: "span.h2h__participant.h2h__homeParticipant",
			AwayParticipant: "span.h2h__participant.h2h__awayParticipant",
			HomeScore:       "div.h2h__result span:nth-child(1)",
			AwayScore:       "div.h2h__result span:nth-child(2)",
			Competition:     "span.h2h__event",
			NoData:          "div.noData.noData--npb",
			ShowMore:        `button[data-testid="wcl-buttonLink"], button.wclButtonLink--h2h`,
		},
		Results: ResultsSelectors{
			HomeScore:   "div.detailScore__wrapper span:nth-child(1)",
			AwayScore:   "div.detailScore__wrapper span:nth-child(3)",
			MatchStatus: "span.fixedHeaderDuel__detailStatus",
		},
	}
}

// Validate fails fast on any required selector missing, so a bad config
// surfaces at startup rather than as empty fields mid-run.
func (s *Selectors) Validate() error {
	required := []struct {
		path  string
		value string
	}{
		{"match.scheduled_row", s.Match.ScheduledRow},
		{"match.home_team", s.Match.HomeTeam},
		{"match.away_team", s.Match.AwayTeam},
		{"match.start_time", s.Match.StartTime},
		{"match.navigation_text", s.Match.NavigationText},
		{"odds.home_cell", s.Odds.HomeCell},
		{"odds.away_cell", s.Odds.AwayCell},
		{"odds.total_cell", s.Odds.TotalCell},
		{"odds.over_cell", s.Odds.OverCell},
		{"odds.under_cell", s.Odds.UnderCell},
		{"h2h.section", s.H2H.Section},
		{"h2h.row", s.H2H.Row},
		{"h2h.date", s.H2H.Date},
		{"h2h.home_participant", s.H2H.HomeParticipant},
		{"h2h.away_participant", s.H2H.AwayParticipant},
		{"h2h.home_score", s.H2H.HomeScore},
		{"h2h.away_score", s.H2H.AwayScore},
		{"h2h.no_data", s.H2H.NoData},
		{"h2h.show_more", s.H2H.ShowMore},
		{"results.home_score", s.Results.HomeScore},
		{"results.away_score", s.Results.AwayScore},
		{"results.match_status", s.Results.MatchStatus},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("missing required selector %q", r.path)
		}
	}
	if s.Match.CountryIndex < 0 || s.Match.LeagueIndex < 0 {
		return fmt.Errorf("navigation indexes must not be negative")
	}
	if s.H2H.SectionIndex < 0 {
		return fmt.Errorf("h2h.section_index must not be negative")
	}
	return nil
}
