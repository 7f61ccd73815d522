package flashscore

import "errors"

// Extraction and verification error kinds. Callers distinguish a selector
// that matched nothing from text that matched but would not parse, and
// both from a page that never loaded.
var (
	// ErrNotFound means the selector matched no element in the document
	ErrNotFound = errors.New("element not found")

	// ErrParse means the element text did not have the expected shape
	ErrParse = errors.New("malformed element text")

	// ErrValidation means the extracted value failed a business rule
	ErrValidation = errors.New("validation failed")

	// ErrPageLoad means navigation or page verification failed, so the
	// document was never captured
	ErrPageLoad = errors.New("page load failed")
)
