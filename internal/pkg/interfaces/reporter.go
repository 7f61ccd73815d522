package interfaces

// Reporter receives run feedback from the orchestrator. Implementations
// must tolerate being called from the scrape goroutine only; none of the
// methods may block for long.
type Reporter interface {
	// Status reports a free-form status line
	Status(message string)

	// Progress reports position within the current match list
	Progress(current, total int, message string)

	// MatchFinalized reports that a match id was classified and persisted
	MatchFinalized(matchID string, status string)
}

// NopReporter discards all feedback. Useful as a default and in tests.
type NopReporter struct{}

func (NopReporter) Status(string)                {}
func (NopReporter) Progress(int, int, string)    {}
func (NopReporter) MatchFinalized(string, string) {}
