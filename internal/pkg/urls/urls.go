// Package urls builds and parses the canonical flashscore match URLs.
//
// Every per-match page shares the structure
//
//	https://www.flashscore.co.ke/match/basketball/{home_slug}-{home_id}/{away_slug}-{away_id}/{path}/?mid={mid}
//
// where path selects the summary, one of the two odds pages, or the
// head-to-head page. SummaryByMid covers the one place a record's team
// slugs are unknown: revisiting a stored match for its final score.
package urls

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const baseDomain = "https://www.flashscore.co.ke/match"

// Path segments distinguishing the four per-match pages. The page
// verifiers match these against the browser's current location.
const (
	SummaryPath   = "summary"
	HomeAwayPath  = "odds/home-away/ft-including-ot"
	OverUnderPath = "odds/over-under/ft-including-ot"
	H2HPath       = "h2h/overall"
)

var (
	validID   = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	validSlug = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// MatchRef identifies one match: its id plus both team slug/id pairs.
type MatchRef struct {
	MatchID  string
	HomeSlug string
	HomeID   string
	AwaySlug string
	AwayID   string
}

// MatchURLs holds the four page URLs for one match.
type MatchURLs struct {
	Summary   string
	HomeAway  string
	OverUnder string
	H2H       string
}

// Validate checks the character classes: ids are alphanumeric, slugs are
// lowercase alphanumeric plus hyphens.
func (r MatchRef) Validate() error {
	if !validID.MatchString(r.MatchID) {
		return fmt.Errorf("invalid match id %q (must be alphanumeric)", r.MatchID)
	}
	for _, f := range []struct{ name, value string }{
		{"home slug", r.HomeSlug},
		{"away slug", r.AwaySlug},
	} {
		if !validSlug.MatchString(f.value) {
			return fmt.Errorf("invalid %s %q (must be lowercase letters, numbers, or hyphens)", f.name, f.value)
		}
	}
	for _, f := range []struct{ name, value string }{
		{"home id", r.HomeID},
		{"away id", r.AwayID},
	} {
		if !validID.MatchString(f.value) {
			return fmt.Errorf("invalid %s %q (must be alphanumeric)", f.name, f.value)
		}
	}
	return nil
}

// URLs validates the ref and builds all four page URLs.
func (r MatchRef) URLs() (MatchURLs, error) {
	if err := r.Validate(); err != nil {
		return MatchURLs{}, err
	}
	return MatchURLs{
		Summary:   r.build(SummaryPath),
		HomeAway:  r.build(HomeAwayPath),
		OverUnder: r.build(OverUnderPath),
		H2H:       r.build(H2HPath),
	}, nil
}

func (r MatchRef) build(path string) string {
	return fmt.Sprintf("%s/basketball/%s-%s/%s-%s/%s/?mid=%s",
		baseDomain, r.HomeSlug, r.HomeID, r.AwaySlug, r.AwayID, path, r.MatchID)
}

// SummaryByMid builds the mid-only summary URL. The results pass uses it
// because stored records carry the match id but not the team slugs.
func SummaryByMid(mid string) (string, error) {
	if !validID.MatchString(mid) {
		return "", fmt.Errorf("invalid match id %q (must be alphanumeric)", mid)
	}
	return fmt.Sprintf("%s/basketball/%s/#/match-summary/match-summary", baseDomain, mid), nil
}

// Parse extracts a MatchRef from any of the four page URLs.
func Parse(raw string) (MatchRef, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return MatchRef{}, fmt.Errorf("not a valid URL: %w", err)
	}
	if u.Host == "" || !strings.Contains(u.Host, "flashscore") {
		return MatchRef{}, fmt.Errorf("not a flashscore URL: %s", raw)
	}

	mid := u.Query().Get("mid")
	if mid == "" {
		return MatchRef{}, fmt.Errorf("missing match id in URL: %s", raw)
	}

	segments := splitPath(u.Path)
	if len(segments) < 5 || segments[0] != "match" || segments[1] != "basketball" {
		return MatchRef{}, fmt.Errorf("malformed flashscore match URL: %s", raw)
	}

	homeSlug, homeID, err := splitTeamSegment(segments[2])
	if err != nil {
		return MatchRef{}, fmt.Errorf("malformed home team segment in %s: %w", raw, err)
	}
	awaySlug, awayID, err := splitTeamSegment(segments[3])
	if err != nil {
		return MatchRef{}, fmt.Errorf("malformed away team segment in %s: %w", raw, err)
	}

	ref := MatchRef{
		MatchID:  mid,
		HomeSlug: homeSlug,
		HomeID:   homeID,
		AwaySlug: awaySlug,
		AwayID:   awayID,
	}
	if err := ref.Validate(); err != nil {
		return MatchRef{}, err
	}
	return ref, nil
}

func splitPath(p string) []string {
	var segments []string
	for _, s := range strings.Split(strings.Trim(p, "/"), "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// splitTeamSegment splits "los-angeles-lakers-vJKml3Ch" at the last
// hyphen into the slug and the team id.
func splitTeamSegment(segment string) (slug, id string, err error) {
	i := strings.LastIndex(segment, "-")
	if i <= 0 || i == len(segment)-1 {
		return "", "", fmt.Errorf("no slug-id separator in %q", segment)
	}
	return segment[:i], segment[i+1:], nil
}
