package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/courtsight/flashcourt/internal/pkg/models"
)

// document is the on-disk shape of one day's file. The matches list
// holds complete records only; incomplete matches appear solely as
// skipped entries in the metadata.
type document struct {
	Metadata metadata             `json:"metadata"`
	Matches  []models.MatchRecord `json:"matches"`
}

type metadata struct {
	TotalMatches   int          `json:"total_matches"`
	LastUpdate     string       `json:"last_update"`
	SkippedMatches skippedBlock `json:"skipped_matches"`
	FileInfo       fileInfo     `json:"file_info"`
}

type skippedBlock struct {
	Total   int            `json:"total"`
	Details []skippedEntry `json:"details"`
}

type skippedEntry struct {
	MatchID string `json:"match_id"`
	Reason  string `json:"reason"`
}

type fileInfo struct {
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	CreatedAt string `json:"created_at"`
}

// JSONStore implements MatchStore over one matches_<dateKey>.json file.
// Every operation re-reads the file, so a failed write never corrupts
// in-memory state. Writes are single-attempt; retrying is the caller's
// decision. Concurrent runs against the same day file are not supported.
type JSONStore struct {
	path   string
	logger *slog.Logger
}

var _ MatchStore = (*JSONStore)(nil)

func NewJSONStore(dir, dateKey string, logger *slog.Logger) (*JSONStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return &JSONStore{
		path:   filepath.Join(dir, DayFilename(dateKey)),
		logger: logger,
	}, nil
}

// Path returns the day file location.
func (s *JSONStore) Path() string { return s.path }

func (s *JSONStore) Save(records []models.MatchRecord) error {
	doc, err := s.read()
	if err != nil {
		return err
	}

	// Index the existing document. Insertion order is preserved so the
	// file stays stable across merges.
	completeIdx := make(map[string]int, len(doc.Matches))
	for i, m := range doc.Matches {
		completeIdx[m.MatchID] = i
	}
	skippedIdx := make(map[string]int, len(doc.Metadata.SkippedMatches.Details))
	for i, e := range doc.Metadata.SkippedMatches.Details {
		skippedIdx[e.MatchID] = i
	}

	dropSkipped := func(id string) {
		i, ok := skippedIdx[id]
		if !ok {
			return
		}
		details := doc.Metadata.SkippedMatches.Details
		doc.Metadata.SkippedMatches.Details = append(details[:i], details[i+1:]...)
		delete(skippedIdx, id)
		for j := i; j < len(doc.Metadata.SkippedMatches.Details); j++ {
			skippedIdx[doc.Metadata.SkippedMatches.Details[j].MatchID] = j
		}
	}

	for _, rec := range records {
		if rec.IsComplete() {
			if i, ok := completeIdx[rec.MatchID]; ok {
				doc.Matches[i] = rec
			} else {
				completeIdx[rec.MatchID] = len(doc.Matches)
				doc.Matches = append(doc.Matches, rec)
			}
			// Promotion: a record that became complete leaves the
			// skipped list.
			dropSkipped(rec.MatchID)
			continue
		}

		// Never demote: an id already complete stays complete.
		if _, ok := completeIdx[rec.MatchID]; ok {
			continue
		}
		reason := rec.SkipReason
		if reason == "" {
			reason = "unknown"
		}
		if i, ok := skippedIdx[rec.MatchID]; ok {
			doc.Metadata.SkippedMatches.Details[i].Reason = reason
		} else {
			skippedIdx[rec.MatchID] = len(doc.Metadata.SkippedMatches.Details)
			doc.Metadata.SkippedMatches.Details = append(doc.Metadata.SkippedMatches.Details,
				skippedEntry{MatchID: rec.MatchID, Reason: reason})
		}
	}

	return s.write(doc)
}

func (s *JSONStore) ProcessedIDs() ([]models.ProcessedMatch, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	processed := make([]models.ProcessedMatch, 0, len(doc.Matches)+len(doc.Metadata.SkippedMatches.Details))
	for _, m := range doc.Matches {
		reason := m.SkipReason
		if reason == "" {
			reason = "processed successfully"
		}
		processed = append(processed, models.ProcessedMatch{MatchID: m.MatchID, Reason: reason})
	}
	for _, e := range doc.Metadata.SkippedMatches.Details {
		reason := e.Reason
		if reason == "" {
			reason = "unknown"
		}
		processed = append(processed, models.ProcessedMatch{MatchID: e.MatchID, Reason: reason})
	}
	return processed, nil
}

func (s *JSONStore) Load() ([]models.MatchRecord, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return doc.Matches, nil
}

func (s *JSONStore) UpdateResult(matchID string, homeScore, awayScore int, finalStatus string) error {
	doc, err := s.read()
	if err != nil {
		return err
	}

	for i := range doc.Matches {
		if doc.Matches[i].MatchID != matchID {
			continue
		}
		doc.Matches[i].HomeScore = models.Int(homeScore)
		doc.Matches[i].AwayScore = models.Int(awayScore)
		doc.Matches[i].FinalStatus = finalStatus
		return s.write(doc)
	}
	return fmt.Errorf("match %s not found in %s", matchID, s.path)
}

func (s *JSONStore) read() (*document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && len(data) == 0) {
		return &document{
			Metadata: metadata{SkippedMatches: skippedBlock{Details: []skippedEntry{}}},
			Matches:  []models.MatchRecord{},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	if doc.Matches == nil {
		doc.Matches = []models.MatchRecord{}
	}
	if doc.Metadata.SkippedMatches.Details == nil {
		doc.Metadata.SkippedMatches.Details = []skippedEntry{}
	}
	return &doc, nil
}

// write refreshes the aggregate metadata and persists the document. It
// writes twice so file_info.size_bytes reflects the real file size.
func (s *JSONStore) write(doc *document) error {
	now := time.Now().Format(models.CreatedAtLayout)
	doc.Metadata.TotalMatches = len(doc.Matches)
	doc.Metadata.LastUpdate = now
	doc.Metadata.SkippedMatches.Total = len(doc.Metadata.SkippedMatches.Details)
	doc.Metadata.FileInfo.Filename = filepath.Base(s.path)
	if doc.Metadata.FileInfo.CreatedAt == "" {
		doc.Metadata.FileInfo.CreatedAt = now
	}

	if err := s.dump(doc); err != nil {
		return err
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", s.path, err)
	}
	doc.Metadata.FileInfo.SizeBytes = info.Size()
	if err := s.dump(doc); err != nil {
		return err
	}

	s.logger.Info("day file updated",
		"path", s.path,
		"complete", doc.Metadata.TotalMatches,
		"skipped", doc.Metadata.SkippedMatches.Total)
	return nil
}

func (s *JSONStore) dump(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}
