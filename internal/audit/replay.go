package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// ReplayFilter holds filtering criteria for reading back a sink file.
type ReplayFilter struct {
	Kind  Kind
	Start string // inclusive, ISO-8601; empty = no lower bound
	End   string // inclusive, ISO-8601; empty = no upper bound
}

// ReplaySummary holds entry counts and period metadata for a replay.
type ReplaySummary struct {
	Total          int    `json:"total"`
	Operations     int    `json:"operations"`
	Decisions      int    `json:"decisions"`
	Accesses       int    `json:"accesses"`
	Events         int    `json:"events"`
	Skipped        int    `json:"skipped"`
	FirstTimestamp string `json:"first_timestamp,omitempty"`
	LastTimestamp  string `json:"last_timestamp,omitempty"`
}

// ReplayResult holds filtered entries and their summary.
type ReplayResult struct {
	Entries []Entry       `json:"entries"`
	Summary ReplaySummary `json:"summary"`
}

// Replay reads a sink file and returns entries matching the filter.
// Corrupt lines are skipped and counted, never fatal: a partially damaged
// file still yields every readable entry.
func Replay(path string, filter ReplayFilter) (*ReplayResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audit sink: %w", err)
	}
	defer f.Close()

	result := &ReplayResult{}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			result.Summary.Skipped++
			continue
		}

		if filter.Kind != "" && entry.Kind != filter.Kind {
			continue
		}
		if filter.Start != "" && entry.Timestamp < filter.Start {
			continue
		}
		if filter.End != "" && entry.Timestamp > filter.End {
			continue
		}

		result.Entries = append(result.Entries, entry)
		updateSummary(&result.Summary, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit sink: %w", err)
	}

	return result, nil
}

func updateSummary(s *ReplaySummary, entry Entry) {
	s.Total++

	switch entry.Kind {
	case KindOperation:
		s.Operations++
	case KindDecision:
		s.Decisions++
	case KindAccess:
		s.Accesses++
	case KindEvent:
		s.Events++
	}

	if s.FirstTimestamp == "" {
		s.FirstTimestamp = entry.Timestamp
	}
	s.LastTimestamp = entry.Timestamp
}
