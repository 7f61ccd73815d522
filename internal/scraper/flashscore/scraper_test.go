package flashscore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/courtsight/flashcourt/internal/pkg/config"
	"github.com/courtsight/flashcourt/internal/pkg/interfaces"
	"github.com/courtsight/flashcourt/internal/pkg/models"
	"github.com/courtsight/flashcourt/internal/pkg/performance"
	"github.com/courtsight/flashcourt/internal/pkg/reporting"
	"github.com/courtsight/flashcourt/internal/pkg/storage"
	"github.com/courtsight/flashcourt/internal/pkg/urls"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestScraper builds a Scraper with just enough wiring for the
// extractor methods, which only touch the config and the logger.
func newTestScraper(t *testing.T) *Scraper {
	t.Helper()
	return &Scraper{
		cfg:      config.Default(),
		logger:   discardLogger(),
		tracker:  &performance.Tracker{},
		reporter: interfaces.NopReporter{},
	}
}

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture HTML: %v", err)
	}
	return doc
}

// fakePage serves canned HTML keyed by the navigated URL, standing in
// for the chromedp session. Clicks on selectors registered in clickSwap
// move the page to another URL, which is how the calendar control is
// simulated.
type fakePage struct {
	pages     map[string]string
	clickSwap map[string]string
	current   string
	visits    []string
}

var _ interfaces.Page = (*fakePage)(nil)

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.current = url
	p.visits = append(p.visits, url)
	return nil
}

func (p *fakePage) WaitReady(context.Context, time.Duration) error { return nil }

func (p *fakePage) WaitVisible(context.Context, string, time.Duration) error { return nil }

func (p *fakePage) Click(_ context.Context, selector string) error {
	if url, ok := p.clickSwap[selector]; ok {
		p.current = url
		p.visits = append(p.visits, url)
	}
	return nil
}

func (p *fakePage) HTML(context.Context) (string, error) {
	html, ok := p.pages[p.current]
	if !ok {
		return "", fmt.Errorf("no fixture registered for %s", p.current)
	}
	return html, nil
}

func (p *fakePage) Location(context.Context) (string, error) { return p.current, nil }

func listingHTML(rows ...string) string {
	return `<div class="sportName basketball">` + strings.Join(rows, "") + `</div>`
}

func scheduledRowHTML(mid, href string) string {
	return fmt.Sprintf(`<div class="event__match event__match--scheduled" id="g_3_%s"><a class="eventRowLink" href="%s">link</a></div>`, mid, href)
}

func summaryHTML(country, league, home, away, start string) string {
	return fmt.Sprintf(`
<span data-testid="wcl-scores-overline-03">Basketball</span>
<span data-testid="wcl-scores-overline-03">%s</span>
<span data-testid="wcl-scores-overline-03">%s</span>
<div class="duelParticipant">
  <div class="duelParticipant__startTime"><div>%s</div></div>
  <div class="duelParticipant__home"><div class="participant__participantName"><a href="#">%s</a></div></div>
  <div class="duelParticipant__away"><div class="participant__participantName"><a href="#">%s</a></div></div>
</div>`, country, league, start, home, away)
}

func homeAwayHTML(rows ...[2]string) string {
	var b strings.Builder
	b.WriteString(`<div class="oddsTab__tableWrapper"><div class="ui-table__body">`)
	for _, r := range rows {
		fmt.Fprintf(&b, `<div class="ui-table__row"><a class="oddsCell__odd"><span>%s</span></a><a class="oddsCell__odd"><span>%s</span></a></div>`, r[0], r[1])
	}
	b.WriteString(`</div></div>`)
	return b.String()
}

func overUnderHTML(rows ...[3]string) string {
	var b strings.Builder
	b.WriteString(`<div class="oddsTab__tableWrapper"><div class="ui-table__body">`)
	for _, r := range rows {
		fmt.Fprintf(&b, `<div class="ui-table__row">`+
			`<div class="wcl-oddsCell"><span data-testid="wcl-oddsValue">%s</span></div>`+
			`<a class="oddsCell__odd"><span>%s</span></a>`+
			`<a class="oddsCell__odd"><span>%s</span></a>`+
			`</div>`, r[0], r[1], r[2])
	}
	b.WriteString(`</div></div>`)
	return b.String()
}

// h2hSectionHTML renders one h2h section; row scores run 100+i / 95+i so
// tests can tell rows apart.
func h2hSectionHTML(rows int) string {
	var b strings.Builder
	b.WriteString(`<div class="h2h__section">`)
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, `<a class="h2h__row" href="#">`+
			`<span class="h2h__date">12.03.24</span>`+
			`<span class="h2h__event">NBA</span>`+
			`<span class="h2h__participant h2h__homeParticipant">Los Angeles Lakers</span>`+
			`<span class="h2h__participant h2h__awayParticipant">Boston Celtics</span>`+
			`<div class="h2h__result"><span>%d</span><span>%d</span></div>`+
			`</a>`, 100+i, 95+i)
	}
	b.WriteString(`</div>`)
	return b.String()
}

// h2hPageHTML renders the overall tab: home form, away form, then the
// mutual-meetings section the extractor reads.
func h2hPageHTML(mutualRows int, showMore bool) string {
	var b strings.Builder
	b.WriteString(h2hSectionHTML(5))
	b.WriteString(h2hSectionHTML(5))
	b.WriteString(h2hSectionHTML(mutualRows))
	if showMore {
		b.WriteString(`<button data-testid="wcl-buttonLink">Show more matches</button>`)
	}
	return b.String()
}

func resultHTML(status, scoreboard string) string {
	return fmt.Sprintf(`
<div class="duelParticipant">
  <div class="detailScore__wrapper">%s</div>
</div>
<span class="fixedHeaderDuel__detailStatus">%s</span>`, scoreboard, status)
}

func mustURLs(t *testing.T, ref urls.MatchRef) urls.MatchURLs {
	t.Helper()
	pages, err := ref.URLs()
	if err != nil {
		t.Fatalf("build URLs for %s: %v", ref.MatchID, err)
	}
	return pages
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Retry = config.RetryConfig{MaxRetries: 1, BaseDelaySeconds: 0}
	return cfg
}

func TestNewRequiresCoreDeps(t *testing.T) {
	page := &fakePage{}
	store, err := storage.NewJSONStore(t.TempDir(), "20250619", nil)
	if err != nil {
		t.Fatalf("NewJSONStore() error: %v", err)
	}

	if _, err := New(Deps{Store: store, Config: testConfig()}); err == nil {
		t.Error("New() without a page should fail")
	}
	if _, err := New(Deps{Page: page, Config: testConfig()}); err == nil {
		t.Error("New() without a store should fail")
	}
	if _, err := New(Deps{Page: page, Store: store}); err == nil {
		t.Error("New() without a config should fail")
	}

	s, err := New(Deps{Page: page, Store: store, Config: testConfig()})
	if err != nil {
		t.Fatalf("New() with core deps error: %v", err)
	}
	if s.reporter == nil || s.tracker == nil || s.logger == nil || s.retrier == nil {
		t.Error("New() must default the optional dependencies")
	}
}

func TestScrapeDayTwoRuns(t *testing.T) {
	cfg := testConfig()

	refA := urls.MatchRef{MatchID: "AbC123xy", HomeSlug: "los-angeles-lakers", HomeID: "vJKml3Ch", AwaySlug: "boston-celtics", AwayID: "pT4uVbne"}
	refB := urls.MatchRef{MatchID: "XyZ789ab", HomeSlug: "denver-nuggets", HomeID: "aaBB11cc", AwaySlug: "miami-heat", AwayID: "ddEE22ff"}
	pagesA := mustURLs(t, refA)
	pagesB := mustURLs(t, refB)

	page := &fakePage{pages: map[string]string{
		cfg.Scraper.BaseURL: listingHTML(
			scheduledRowHTML(refA.MatchID, pagesA.Summary),
			scheduledRowHTML(refB.MatchID, pagesB.Summary),
		),
		pagesA.Summary: summaryHTML("USA", "NBA", "Los Angeles Lakers", "Boston Celtics", "19.06.2025 20:30"),
		pagesA.HomeAway: homeAwayHTML(
			[2]string{"1.72", "2.10"},
			[2]string{"1.75", "2.05"},
		),
		pagesA.OverUnder: overUnderHTML(
			[3]string{"152.0", "1.70", "2.10"},
			[3]string{"152.5", "1.82", "1.98"},
			[3]string{"153.0", "1.90", "1.88"},
		),
		pagesA.H2H:      h2hPageHTML(7, true),
		pagesB.Summary:  summaryHTML("USA", "NBA", "Denver Nuggets", "Miami Heat", "19.06.2025 22:00"),
		pagesB.HomeAway: homeAwayHTML([2]string{"1.90", "2.00"}),
		// no over/under market offered, and too little history
		pagesB.OverUnder: overUnderHTML(),
		pagesB.H2H:       h2hPageHTML(3, false),
	}}

	dir := t.TempDir()
	runOnce := func() (models.RunSummary, *reporting.CaptureReporter, storage.MatchStore) {
		store, err := storage.NewJSONStore(dir, "20250619", discardLogger())
		if err != nil {
			t.Fatalf("NewJSONStore() error: %v", err)
		}
		rep := &reporting.CaptureReporter{}
		s, err := New(Deps{
			Page: page, Store: store, Config: cfg,
			Reporter: rep, Tracker: &performance.Tracker{}, Logger: discardLogger(),
		})
		if err != nil {
			t.Fatalf("New() error: %v", err)
		}
		sum, err := s.ScrapeDay(context.Background(), Today)
		if err != nil {
			t.Fatalf("ScrapeDay() error: %v", err)
		}
		return sum, rep, store
	}

	first, rep, store := runOnce()
	want := models.RunSummary{Scheduled: 2, New: 2, Complete: 1, Incomplete: 1}
	if first != want {
		t.Fatalf("first run summary = %+v, want %+v", first, want)
	}

	matches, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("complete matches = %d, want 1", len(matches))
	}
	rec := matches[0]
	if rec.MatchID != refA.MatchID {
		t.Errorf("complete match = %q, want %q", rec.MatchID, refA.MatchID)
	}
	if rec.Country != "USA" || rec.League != "NBA" {
		t.Errorf("country/league = %q/%q", rec.Country, rec.League)
	}
	if rec.HomeTeam != "Los Angeles Lakers" || rec.AwayTeam != "Boston Celtics" {
		t.Errorf("teams = %q vs %q", rec.HomeTeam, rec.AwayTeam)
	}
	if rec.Date != "19.06.2025" || rec.Time != "20:30" {
		t.Errorf("start = %q %q, want 19.06.2025 20:30", rec.Date, rec.Time)
	}
	if rec.Odds == nil {
		t.Fatal("complete record has no odds")
	}
	odds := rec.Odds
	if odds.HomeOdds == nil || *odds.HomeOdds != 1.72 || odds.AwayOdds == nil || *odds.AwayOdds != 2.10 {
		t.Errorf("1X2 odds = %v/%v, want 1.72/2.10", odds.HomeOdds, odds.AwayOdds)
	}
	if odds.MatchTotal == nil || *odds.MatchTotal != 152.5 {
		t.Errorf("match total = %v, want 152.5", odds.MatchTotal)
	}
	if odds.OverOdds == nil || *odds.OverOdds != 1.82 || odds.UnderOdds == nil || *odds.UnderOdds != 1.98 {
		t.Errorf("over/under odds = %v/%v, want 1.82/1.98", odds.OverOdds, odds.UnderOdds)
	}
	if len(rec.H2HMatches) != 6 {
		t.Fatalf("stored h2h rows = %d, want 6 (truncated from 7)", len(rec.H2HMatches))
	}
	if rec.H2HMatches[0].Date != "12/03/2024" {
		t.Errorf("h2h date = %q, want 12/03/2024", rec.H2HMatches[0].Date)
	}
	if rec.H2HMatches[0].HomeScore != 100 || rec.H2HMatches[5].HomeScore != 105 {
		t.Errorf("h2h rows out of order: first=%d sixth=%d", rec.H2HMatches[0].HomeScore, rec.H2HMatches[5].HomeScore)
	}

	processed, err := store.ProcessedIDs()
	if err != nil {
		t.Fatalf("ProcessedIDs() error: %v", err)
	}
	reasons := make(map[string]string, len(processed))
	for _, p := range processed {
		reasons[p.MatchID] = p.Reason
	}
	if reasons[refA.MatchID] != "processed successfully" {
		t.Errorf("complete reason = %q", reasons[refA.MatchID])
	}
	wantReason := "missing or invalid odds fields: match_total, over_odds, under_odds; insufficient H2H matches (3 found, 6 required)"
	if reasons[refB.MatchID] != wantReason {
		t.Errorf("skip reason = %q, want %q", reasons[refB.MatchID], wantReason)
	}

	if len(rep.Finalized) != 2 {
		t.Fatalf("finalized events = %d, want 2", len(rep.Finalized))
	}
	byID := make(map[string]string, 2)
	for _, ev := range rep.Finalized {
		byID[ev.MatchID] = ev.Status
	}
	if byID[refA.MatchID] != models.StatusComplete || byID[refB.MatchID] != models.StatusIncomplete {
		t.Errorf("finalized statuses = %v", byID)
	}

	// The second run sees both ids in the day file and collects nothing.
	second, rep2, _ := runOnce()
	want = models.RunSummary{Scheduled: 2, PreviouslyProcessed: 2}
	if second != want {
		t.Fatalf("second run summary = %+v, want %+v", second, want)
	}
	if len(rep2.Finalized) != 0 {
		t.Errorf("second run finalized %d matches, want 0", len(rep2.Finalized))
	}
	var sawSkip bool
	for _, msg := range rep2.Statuses {
		if strings.Contains(msg, "Skipping already processed match") {
			sawSkip = true
			break
		}
	}
	if !sawSkip {
		t.Error("second run never reported the dedup skips")
	}
}

func TestScrapeDaySummaryLoadFailure(t *testing.T) {
	cfg := testConfig()

	ref := urls.MatchRef{MatchID: "FaIl0001", HomeSlug: "team-one", HomeID: "t1", AwaySlug: "team-two", AwayID: "t2"}
	pages := mustURLs(t, ref)

	// The listing knows the match but its summary page never loads.
	page := &fakePage{pages: map[string]string{
		cfg.Scraper.BaseURL: listingHTML(scheduledRowHTML(ref.MatchID, pages.Summary)),
	}}

	store, err := storage.NewJSONStore(t.TempDir(), "20250619", discardLogger())
	if err != nil {
		t.Fatalf("NewJSONStore() error: %v", err)
	}
	rep := &reporting.CaptureReporter{}
	s, err := New(Deps{Page: page, Store: store, Config: cfg, Reporter: rep, Tracker: &performance.Tracker{}, Logger: discardLogger()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	sum, err := s.ScrapeDay(context.Background(), Today)
	if err != nil {
		t.Fatalf("ScrapeDay() error: %v", err)
	}
	want := models.RunSummary{Scheduled: 1, Skipped: 1}
	if sum != want {
		t.Fatalf("summary = %+v, want %+v", sum, want)
	}

	// Nothing was persisted, so the next run will retry the match.
	processed, err := store.ProcessedIDs()
	if err != nil {
		t.Fatalf("ProcessedIDs() error: %v", err)
	}
	if len(processed) != 0 {
		t.Errorf("abandoned match was persisted: %+v", processed)
	}

	var sawFailure bool
	for _, msg := range rep.Statuses {
		if strings.Contains(msg, "Failed to load match page for "+ref.MatchID) {
			sawFailure = true
			break
		}
	}
	if !sawFailure {
		t.Error("load failure was never reported")
	}
}

func TestScrapeDayFallsBackToTomorrow(t *testing.T) {
	cfg := testConfig()

	ref := urls.MatchRef{MatchID: "AbC123xy", HomeSlug: "los-angeles-lakers", HomeID: "vJKml3Ch", AwaySlug: "boston-celtics", AwayID: "pT4uVbne"}
	pages := mustURLs(t, ref)

	const tomorrowListing = "https://www.flashscore.co.ke/basketball/#tomorrow"
	page := &fakePage{
		pages: map[string]string{
			cfg.Scraper.BaseURL: listingHTML(),
			tomorrowListing:     listingHTML(scheduledRowHTML(ref.MatchID, pages.Summary)),
			pages.Summary:       summaryHTML("USA", "NBA", "Los Angeles Lakers", "Boston Celtics", "20.06.2025 19:00"),
			pages.HomeAway:      homeAwayHTML([2]string{"1.72", "2.10"}),
			pages.OverUnder:     overUnderHTML([3]string{"152.5", "1.82", "1.98"}),
			pages.H2H:           h2hPageHTML(6, true),
		},
		clickSwap: map[string]string{cfg.Selectors.Match.TomorrowTab: tomorrowListing},
	}

	store, err := storage.NewJSONStore(t.TempDir(), "20250620", discardLogger())
	if err != nil {
		t.Fatalf("NewJSONStore() error: %v", err)
	}
	rep := &reporting.CaptureReporter{}
	s, err := New(Deps{Page: page, Store: store, Config: cfg, Reporter: rep, Tracker: &performance.Tracker{}, Logger: discardLogger()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	sum, err := s.ScrapeDay(context.Background(), Today)
	if err != nil {
		t.Fatalf("ScrapeDay() error: %v", err)
	}
	want := models.RunSummary{Scheduled: 1, New: 1, Complete: 1}
	if sum != want {
		t.Fatalf("summary = %+v, want %+v", sum, want)
	}

	var sawFallback bool
	for _, msg := range rep.Statuses {
		if strings.Contains(msg, "Checking tomorrow's schedule") {
			sawFallback = true
			break
		}
	}
	if !sawFallback {
		t.Error("the today-to-tomorrow fallback was never reported")
	}
}

func TestScrapeDayTomorrowUsesCalendar(t *testing.T) {
	cfg := testConfig()

	ref := urls.MatchRef{MatchID: "AbC123xy", HomeSlug: "los-angeles-lakers", HomeID: "vJKml3Ch", AwaySlug: "boston-celtics", AwayID: "pT4uVbne"}
	pages := mustURLs(t, ref)

	const tomorrowListing = "https://www.flashscore.co.ke/basketball/#tomorrow"
	page := &fakePage{
		pages: map[string]string{
			// today's listing has games, but a Tomorrow run must ignore them
			cfg.Scraper.BaseURL: listingHTML(scheduledRowHTML("IgNored1", pages.Summary)),
			tomorrowListing:     listingHTML(scheduledRowHTML(ref.MatchID, pages.Summary)),
			pages.Summary:       summaryHTML("USA", "NBA", "Los Angeles Lakers", "Boston Celtics", "20.06.2025 19:00"),
			pages.HomeAway:      homeAwayHTML([2]string{"1.72", "2.10"}),
			pages.OverUnder:     overUnderHTML([3]string{"152.5", "1.82", "1.98"}),
			pages.H2H:           h2hPageHTML(8, true),
		},
		clickSwap: map[string]string{cfg.Selectors.Match.TomorrowTab: tomorrowListing},
	}

	store, err := storage.NewJSONStore(t.TempDir(), "20250620", discardLogger())
	if err != nil {
		t.Fatalf("NewJSONStore() error: %v", err)
	}
	s, err := New(Deps{Page: page, Store: store, Config: cfg, Tracker: &performance.Tracker{}, Logger: discardLogger()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	sum, err := s.ScrapeDay(context.Background(), Tomorrow)
	if err != nil {
		t.Fatalf("ScrapeDay() error: %v", err)
	}
	if sum.Scheduled != 1 || sum.New != 1 {
		t.Fatalf("summary = %+v, want one collected match from tomorrow's listing", sum)
	}
	matches, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(matches) != 1 || matches[0].MatchID != ref.MatchID {
		t.Errorf("collected %v, want only %s", matches, ref.MatchID)
	}
}

func TestScrapeDayStopsOnRequest(t *testing.T) {
	cfg := testConfig()

	ref := urls.MatchRef{MatchID: "AbC123xy", HomeSlug: "los-angeles-lakers", HomeID: "vJKml3Ch", AwaySlug: "boston-celtics", AwayID: "pT4uVbne"}
	pages := mustURLs(t, ref)

	page := &fakePage{pages: map[string]string{
		cfg.Scraper.BaseURL: listingHTML(scheduledRowHTML(ref.MatchID, pages.Summary)),
	}}

	store, err := storage.NewJSONStore(t.TempDir(), "20250619", discardLogger())
	if err != nil {
		t.Fatalf("NewJSONStore() error: %v", err)
	}
	rep := &reporting.CaptureReporter{}
	s, err := New(Deps{
		Page: page, Store: store, Config: cfg, Reporter: rep,
		Tracker: &performance.Tracker{}, Logger: discardLogger(),
		Stop: func() bool { return true },
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	sum, err := s.ScrapeDay(context.Background(), Today)
	if err != nil {
		t.Fatalf("ScrapeDay() error: %v", err)
	}
	if sum.Scheduled != 1 || sum.New != 0 || sum.Skipped != 0 {
		t.Fatalf("summary = %+v, want discovery only", sum)
	}

	var sawStop bool
	for _, msg := range rep.Statuses {
		if strings.Contains(msg, "Stop signal received") {
			sawStop = true
			break
		}
	}
	if !sawStop {
		t.Error("stop was never reported")
	}
}
