package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/courtsight/flashcourt/internal/pkg/interfaces"
	"github.com/courtsight/flashcourt/internal/pkg/models"
	"github.com/courtsight/flashcourt/internal/pkg/validation"
)

// dayFile mirrors the document shape the scraper writes, reduced to the
// parts this tool checks.
type dayFile struct {
	Metadata struct {
		TotalMatches   int    `json:"total_matches"`
		LastUpdate     string `json:"last_update"`
		SkippedMatches struct {
			Total   int `json:"total"`
			Details []struct {
				MatchID string `json:"match_id"`
				Reason  string `json:"reason"`
			} `json:"details"`
		} `json:"skipped_matches"`
	} `json:"metadata"`
	Matches []models.MatchRecord `json:"matches"`
}

func main() {
	minH2H := flag.Int("min-h2h", 6, "H2H rows a complete record must carry")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatal("Usage: validate-matches [-min-h2h N] <matches_YYYYMMDD.json> [more files...]")
	}

	validator := validation.NewValidator(*minH2H)

	problems := 0
	for _, path := range flag.Args() {
		problems += validateFile(validator, path)
	}

	if problems > 0 {
		fmt.Printf("%d problem(s) found\n", problems)
		os.Exit(1)
	}
	fmt.Println("All files passed validation")
}

func validateFile(validator interfaces.RecordValidator, path string) int {
	fmt.Printf("=== Validating %s ===\n\n", path)

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("FAILED     cannot read file: %v\n\n", err)
		return 1
	}
	var doc dayFile
	if err := json.Unmarshal(data, &doc); err != nil {
		fmt.Printf("FAILED     cannot parse JSON: %v\n\n", err)
		return 1
	}

	problems := 0

	completeIDs := make(map[string]bool, len(doc.Matches))
	for i := range doc.Matches {
		rec := &doc.Matches[i]
		if completeIDs[rec.MatchID] {
			fmt.Printf("DUPLICATE  %s appears more than once in matches\n", rec.MatchID)
			problems++
		}
		completeIDs[rec.MatchID] = true
		if err := validator.ValidateRecord(rec); err != nil {
			fmt.Printf("INVALID    %s: %v\n", rec.Display(), err)
			problems++
		}
	}

	skippedIDs := make(map[string]bool, len(doc.Metadata.SkippedMatches.Details))
	for _, e := range doc.Metadata.SkippedMatches.Details {
		if skippedIDs[e.MatchID] {
			fmt.Printf("DUPLICATE  %s appears more than once in skipped details\n", e.MatchID)
			problems++
		}
		skippedIDs[e.MatchID] = true
		if e.Reason == "" {
			fmt.Printf("INVALID    skipped entry %s has no reason\n", e.MatchID)
			problems++
		}
		if completeIDs[e.MatchID] {
			fmt.Printf("CONFLICT   %s is listed as both complete and skipped\n", e.MatchID)
			problems++
		}
	}

	if doc.Metadata.TotalMatches != len(doc.Matches) {
		fmt.Printf("MISMATCH   metadata.total_matches=%d but matches list has %d\n",
			doc.Metadata.TotalMatches, len(doc.Matches))
		problems++
	}
	if doc.Metadata.SkippedMatches.Total != len(doc.Metadata.SkippedMatches.Details) {
		fmt.Printf("MISMATCH   skipped_matches.total=%d but details list has %d\n",
			doc.Metadata.SkippedMatches.Total, len(doc.Metadata.SkippedMatches.Details))
		problems++
	}

	fmt.Printf("\nComplete: %d, skipped: %d, last update: %s\n",
		len(doc.Matches), len(doc.Metadata.SkippedMatches.Details), doc.Metadata.LastUpdate)

	if len(doc.Metadata.SkippedMatches.Details) > 0 {
		reasons := make(map[string]int)
		for _, e := range doc.Metadata.SkippedMatches.Details {
			reasons[e.Reason]++
		}
		keys := make([]string, 0, len(reasons))
		for r := range reasons {
			keys = append(keys, r)
		}
		sort.Strings(keys)
		fmt.Println("Skip reasons:")
		for _, r := range keys {
			fmt.Printf("  %4d  %s\n", reasons[r], r)
		}
	}

	if problems == 0 {
		fmt.Println("OK")
	}
	fmt.Println()
	return problems
}
