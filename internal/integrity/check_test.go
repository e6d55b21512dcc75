package integrity

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	origExpected := ExpectedHash
	origLogDir := TamperLogDir
	origPaths := ChecksumPaths
	t.Cleanup(func() {
		ExpectedHash = origExpected
		TamperLogDir = origLogDir
		ChecksumPaths = origPaths
	})

	ExpectedHash = ""
	TamperLogDir = filepath.Join(dir, "log")
	ChecksumPaths = []string{filepath.Join(dir, "binary.sha256")}
	return dir
}

func TestHashSelfReturnsHexDigest(t *testing.T) {
	hash, err := HashSelf()
	if err != nil {
		t.Fatalf("hash self: %v", err)
	}
	if len(hash) != 64 || !isHex(hash) {
		t.Fatalf("malformed digest %q", hash)
	}
}

func TestVerifySkipsWithoutExpectedHash(t *testing.T) {
	isolate(t)

	if err := Verify(); err != nil {
		t.Fatalf("dev build must skip verification: %v", err)
	}
}

func TestVerifyPassesWithMatchingChecksumFile(t *testing.T) {
	isolate(t)

	hash, err := HashSelf()
	if err != nil {
		t.Fatalf("hash self: %v", err)
	}
	if err := os.WriteFile(ChecksumPaths[0], []byte(hash+"\n"), 0o600); err != nil {
		t.Fatalf("write checksum: %v", err)
	}

	if err := Verify(); err != nil {
		t.Fatalf("matching checksum must verify: %v", err)
	}
}

func TestVerifyFailsOnMismatchAndLogsTamper(t *testing.T) {
	isolate(t)

	ExpectedHash = strings.Repeat("a", 64)

	err := Verify()
	if err == nil {
		t.Fatal("mismatched hash must fail")
	}
	if !strings.Contains(err.Error(), "mismatch") {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(TamperLogDir, "tamper.jsonl"))
	if err != nil {
		t.Fatalf("tamper log not written: %v", err)
	}

	var event TamperEvent
	if err := json.Unmarshal(raw[:len(raw)-1], &event); err != nil {
		t.Fatalf("unmarshal tamper event: %v", err)
	}
	if event.Type != "binary_tamper" {
		t.Fatalf("unexpected event type %q", event.Type)
	}
	if event.ExpectedHash != ExpectedHash {
		t.Fatalf("expected hash lost: %q", event.ExpectedHash)
	}
	if event.ActualHash == "" || event.Binary == "" {
		t.Fatalf("incomplete event: %+v", event)
	}
}

func TestChecksumFileValidation(t *testing.T) {
	dir := isolate(t)

	// Garbage content is ignored, not treated as a hash.
	if err := os.WriteFile(ChecksumPaths[0], []byte("not a hash\n"), 0o600); err != nil {
		t.Fatalf("write checksum: %v", err)
	}
	if got := loadChecksumFile(); got != "" {
		t.Fatalf("garbage checksum accepted: %q", got)
	}

	// The first readable valid file wins.
	valid := strings.Repeat("ab", 32)
	second := filepath.Join(dir, "second.sha256")
	os.WriteFile(second, []byte(valid), 0o600)
	ChecksumPaths = []string{filepath.Join(dir, "missing.sha256"), second}
	if got := loadChecksumFile(); got != valid {
		t.Fatalf("valid checksum not found: %q", got)
	}
}

func TestIsHex(t *testing.T) {
	if !isHex("0123456789abcdefABCDEF") {
		t.Fatal("hex digits rejected")
	}
	if isHex("xyz") || isHex("12 34") {
		t.Fatal("non-hex accepted")
	}
}
