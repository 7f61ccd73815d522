package flashscore

import (
	"errors"
	"testing"
)

func TestExtractH2HTruncatesButCountsAll(t *testing.T) {
	s := newTestScraper(t)
	doc := docFromHTML(t, h2hPageHTML(9, false))

	records, rawCount, err := s.extractH2H(doc, "m1")
	if err != nil {
		t.Fatalf("extractH2H() error: %v", err)
	}
	if rawCount != 9 {
		t.Errorf("rawCount = %d, want 9", rawCount)
	}
	if len(records) != 6 {
		t.Fatalf("stored records = %d, want 6", len(records))
	}

	first := records[0]
	if first.Date != "12/03/2024" {
		t.Errorf("date = %q, want 12/03/2024", first.Date)
	}
	if first.HomeTeam != "Los Angeles Lakers" || first.AwayTeam != "Boston Celtics" {
		t.Errorf("teams = %q/%q", first.HomeTeam, first.AwayTeam)
	}
	if first.HomeScore != 100 || first.AwayScore != 95 {
		t.Errorf("scores = %d-%d, want 100-95", first.HomeScore, first.AwayScore)
	}
	if first.Competition != "NBA" {
		t.Errorf("competition = %q, want NBA", first.Competition)
	}
	if records[5].HomeScore != 105 {
		t.Errorf("sixth row score = %d, rows are out of document order", records[5].HomeScore)
	}
}

func TestExtractH2HKeepsShortHistory(t *testing.T) {
	s := newTestScraper(t)
	doc := docFromHTML(t, h2hPageHTML(2, false))

	records, rawCount, err := s.extractH2H(doc, "m1")
	if err != nil {
		t.Fatalf("extractH2H() error: %v", err)
	}
	if rawCount != 2 || len(records) != 2 {
		t.Errorf("got %d records with rawCount %d, want 2/2", len(records), rawCount)
	}
}

func TestExtractH2HFewerSectionsFallsBackToLast(t *testing.T) {
	s := newTestScraper(t)
	// Only the mutual-meetings section rendered, at index 0 instead of 2.
	doc := docFromHTML(t, h2hSectionHTML(4))

	records, rawCount, err := s.extractH2H(doc, "m1")
	if err != nil {
		t.Fatalf("extractH2H() error: %v", err)
	}
	if rawCount != 4 || len(records) != 4 {
		t.Errorf("got %d records with rawCount %d, want 4/4", len(records), rawCount)
	}
}

func TestExtractH2HNoDataMarker(t *testing.T) {
	s := newTestScraper(t)
	doc := docFromHTML(t, `<div class="noData noData--npb">No data available</div>`)

	records, rawCount, err := s.extractH2H(doc, "m1")
	if err != nil {
		t.Fatalf("extractH2H() with the no-data marker error: %v", err)
	}
	if rawCount != 0 || len(records) != 0 {
		t.Errorf("got %d records with rawCount %d, want an empty history", len(records), rawCount)
	}
}

func TestExtractH2HMissingSection(t *testing.T) {
	s := newTestScraper(t)
	doc := docFromHTML(t, `<div class="content">nothing here</div>`)

	_, _, err := s.extractH2H(doc, "m1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("extractH2H() error = %v, want ErrNotFound", err)
	}
}

func TestExtractH2HEmptySection(t *testing.T) {
	s := newTestScraper(t)
	doc := docFromHTML(t, h2hPageHTML(0, false))

	records, rawCount, err := s.extractH2H(doc, "m1")
	if err != nil {
		t.Fatalf("extractH2H() error: %v", err)
	}
	if rawCount != 0 || len(records) != 0 {
		t.Errorf("got %d records with rawCount %d, want empty", len(records), rawCount)
	}
}

func TestHasShowMore(t *testing.T) {
	s := newTestScraper(t)
	if !s.hasShowMore(docFromHTML(t, h2hPageHTML(3, true))) {
		t.Error("hasShowMore() = false with the control present")
	}
	if s.hasShowMore(docFromHTML(t, h2hPageHTML(3, false))) {
		t.Error("hasShowMore() = true with no control")
	}
}

func TestFormatH2HDate(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"14.03.25", "14/03/2025"},
		{"14.03.2025", "14/03/2025"},
		{"01.01.99", "01/01/2099"},
		{"14.03.25 (OT)", "14/03/2025"},
		{"Today", "Today"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := formatH2HDate(tt.text); got != tt.want {
			t.Errorf("formatH2HDate(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestSafeScore(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"112", 112},
		{" 98 ", 98},
		{"", 0},
		{"-", 0},
		{"-5", 0},
		{"abc", 0},
	}
	for _, tt := range tests {
		if got := safeScore(tt.text); got != tt.want {
			t.Errorf("safeScore(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
