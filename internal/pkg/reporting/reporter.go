package reporting

import (
	"log/slog"
	"sync"

	"github.com/courtsight/flashcourt/internal/pkg/interfaces"
)

var _ interfaces.Reporter = (*LogReporter)(nil)

// LogReporter writes status and progress events to the structured log.
type LogReporter struct {
	logger *slog.Logger
}

func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Status(message string) {
	r.logger.Info(message)
}

func (r *LogReporter) Progress(current, total int, message string) {
	if message != "" {
		r.logger.Info("progress", "current", current, "total", total, "message", message)
		return
	}
	r.logger.Info("progress", "current", current, "total", total)
}

func (r *LogReporter) MatchFinalized(matchID string, status string) {
	r.logger.Info("match finalized", "match_id", matchID, "status", status)
}

var _ interfaces.Reporter = (MultiReporter)(nil)

// MultiReporter fans every event out to all wrapped reporters.
type MultiReporter []interfaces.Reporter

func (m MultiReporter) Status(message string) {
	for _, r := range m {
		r.Status(message)
	}
}

func (m MultiReporter) Progress(current, total int, message string) {
	for _, r := range m {
		r.Progress(current, total, message)
	}
}

func (m MultiReporter) MatchFinalized(matchID string, status string) {
	for _, r := range m {
		r.MatchFinalized(matchID, status)
	}
}

// ProgressEvent is a single recorded Progress call.
type ProgressEvent struct {
	Current int
	Total   int
	Message string
}

// FinalizedEvent is a single recorded MatchFinalized call.
type FinalizedEvent struct {
	MatchID string
	Status  string
}

var _ interfaces.Reporter = (*CaptureReporter)(nil)

// CaptureReporter records every event in memory for test assertions.
type CaptureReporter struct {
	mu         sync.Mutex
	Statuses   []string
	Progresses []ProgressEvent
	Finalized  []FinalizedEvent
}

func (r *CaptureReporter) Status(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Statuses = append(r.Statuses, message)
}

func (r *CaptureReporter) Progress(current, total int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Progresses = append(r.Progresses, ProgressEvent{Current: current, Total: total, Message: message})
}

func (r *CaptureReporter) MatchFinalized(matchID string, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Finalized = append(r.Finalized, FinalizedEvent{MatchID: matchID, Status: status})
}

// LastStatus returns the most recent status message, or "" if none.
func (r *CaptureReporter) LastStatus() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Statuses) == 0 {
		return ""
	}
	return r.Statuses[len(r.Statuses)-1]
}
