package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// VerifyResult holds the outcome of a sink file verification.
type VerifyResult struct {
	Valid         bool   `json:"valid"`
	Chronological bool   `json:"chronological"`
	Lines         int    `json:"lines"`
	Error         string `json:"error,omitempty"`
	ErrorLine     int    `json:"error_line,omitempty"`
}

// VerifyFile reads a JSONL sink file and validates the hash chain plus the
// chronological ordering of timestamps. Returns Valid=true if the chain is
// intact, or details about the first broken link.
func VerifyFile(path string) VerifyResult {
	f, err := os.Open(path)
	if err != nil {
		return VerifyResult{Error: fmt.Sprintf("open: %v", err)}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	chronological := true
	var prevLineBytes []byte
	var prevTS string

	for scanner.Scan() {
		lineNum++
		raw := scanner.Bytes()

		// Copy: the scanner reuses its buffer.
		line := make([]byte, len(raw))
		copy(line, raw)

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			return VerifyResult{
				Error:     fmt.Sprintf("parse error: %v", err),
				ErrorLine: lineNum,
			}
		}

		if lineNum == 1 {
			if entry.PrevHash != GenesisHash {
				return VerifyResult{
					Error:     fmt.Sprintf("first entry prev_hash is %q, expected genesis hash", entry.PrevHash),
					ErrorLine: 1,
				}
			}
		} else {
			expected := HashLine(prevLineBytes)
			if entry.PrevHash != expected {
				return VerifyResult{
					Error:     fmt.Sprintf("hash mismatch: expected %s, got %s", expected, entry.PrevHash),
					ErrorLine: lineNum,
				}
			}
		}

		if prevTS != "" && entry.Timestamp < prevTS {
			chronological = false
		}
		prevTS = entry.Timestamp
		prevLineBytes = line
	}

	if err := scanner.Err(); err != nil {
		return VerifyResult{Error: fmt.Sprintf("scan: %v", err)}
	}

	return VerifyResult{Valid: true, Chronological: chronological, Lines: lineNum}
}
