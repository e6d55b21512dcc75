package audit

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// GenesisHash is the prev_hash for the first entry in a new sink file.
const GenesisHash = "sha256:0000000000000000000000000000000000000000000000000000000000000000"

// Sink persists ledger entries as an append-only JSONL file with SHA-256
// hash chaining. Each line's prev_hash is the hash of the previous line,
// forming a tamper-evident chain.
type Sink struct {
	path     string
	file     *os.File
	prevHash string
	mu       sync.Mutex
}

// OpenSink opens (or creates) a sink file for appending. If the file already
// exists, the last line is read back to recover the chain tail.
func OpenSink(path string) (*Sink, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("audit: create directory: %w", err)
	}

	prevHash := GenesisHash

	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("audit: read existing sink: %w", err)
		}
		scanner := bufio.NewScanner(f)
		var lastLine []byte
		for scanner.Scan() {
			lastLine = make([]byte, len(scanner.Bytes()))
			copy(lastLine, scanner.Bytes())
		}
		f.Close()
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("audit: scan existing sink: %w", err)
		}
		if len(lastLine) > 0 {
			prevHash = HashLine(lastLine)
		}
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("audit: open file: %w", err)
	}

	return &Sink{
		path:     path,
		file:     file,
		prevHash: prevHash,
	}, nil
}

// Persist writes one entry as a chained JSONL line and syncs to disk.
func (s *Sink) Persist(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.PrevHash = s.prevHash

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("audit: marshal entry: %w", err)
	}

	if _, err := s.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("audit: write entry: %w", err)
	}

	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("audit: sync: %w", err)
	}

	s.prevHash = HashLine(line)
	return nil
}

// Path returns the sink file path.
func (s *Sink) Path() string {
	return s.path
}

// Close flushes and closes the underlying file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// HashLine returns "sha256:<hex>" of the given bytes.
func HashLine(line []byte) string {
	h := sha256.Sum256(line)
	return "sha256:" + hex.EncodeToString(h[:])
}
