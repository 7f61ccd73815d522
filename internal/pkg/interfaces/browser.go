package interfaces

import (
	"context"
	"time"
)

// Page is the browser capability the scraper consumes. The pipeline never
// owns the browser process; it drives one page of an injected session.
type Page interface {
	// Navigate loads the URL and waits for the document load event
	Navigate(ctx context.Context, url string) error

	// WaitReady waits for dynamically rendered content to settle,
	// up to the given timeout
	WaitReady(ctx context.Context, timeout time.Duration) error

	// WaitVisible waits until the selector matches a visible element
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error

	// Click clicks the first element matching the selector
	Click(ctx context.Context, selector string) error

	// HTML returns the current serialized document
	HTML(ctx context.Context) (string, error)

	// Location returns the page URL after any redirects
	Location(ctx context.Context) (string, error)
}
