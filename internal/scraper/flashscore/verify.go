package flashscore

import (
	"fmt"
	"strings"
)

// verifyLocation checks the browser's post-navigation URL against the
// page kind we meant to load. The site redirects freely between path and
// fragment forms, so this is a substring check, not a full parse.
func verifyLocation(location, wantSegment string) error {
	if !strings.Contains(location, "/basketball/") {
		return fmt.Errorf("%w: %q is not a basketball match page", ErrPageLoad, location)
	}
	if !strings.Contains(location, wantSegment) {
		return fmt.Errorf("%w: %q is not a %s page", ErrPageLoad, location, wantSegment)
	}
	return nil
}
