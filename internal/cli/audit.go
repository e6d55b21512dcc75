package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opsgate/opsgate/internal/audit"
)

var (
	tailLines   int
	replayKind  string
	replayStart string
	replayEnd   string
	queryKind   string
	queryStart  string
	queryEnd    string
	queryLimit  int
)

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditVerifyCmd)
	auditCmd.AddCommand(auditTailCmd)
	auditCmd.AddCommand(auditReplayCmd)
	auditCmd.AddCommand(auditArchiveCmd)
	auditCmd.AddCommand(auditQueryCmd)

	auditTailCmd.Flags().IntVarP(&tailLines, "lines", "n", 10, "Number of recent entries to show")

	auditReplayCmd.Flags().StringVar(&replayKind, "kind", "", "Filter by entry kind (operation|decision|access|event)")
	auditReplayCmd.Flags().StringVar(&replayStart, "start", "", "Inclusive lower timestamp bound (ISO-8601)")
	auditReplayCmd.Flags().StringVar(&replayEnd, "end", "", "Inclusive upper timestamp bound (ISO-8601)")

	auditQueryCmd.Flags().StringVar(&queryKind, "kind", "", "Filter by entry kind")
	auditQueryCmd.Flags().StringVar(&queryStart, "start", "", "Inclusive lower timestamp bound (ISO-8601)")
	auditQueryCmd.Flags().StringVar(&queryEnd, "end", "", "Inclusive upper timestamp bound (ISO-8601)")
	auditQueryCmd.Flags().IntVar(&queryLimit, "limit", 100, "Maximum entries to return")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit ledger operations",
	Long:  "Commands for verifying, inspecting, and archiving the hash-chained audit sink.",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify <path>",
	Short: "Verify hash chain integrity of an audit sink",
	Long:  "Walks the JSONL audit sink and validates that every entry's prev_hash\nmatches the SHA-256 of the previous entry, and that timestamps never go\nbackwards. Exits 0 if valid, 1 if tampered.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditVerify,
}

var auditTailCmd = &cobra.Command{
	Use:   "tail <path>",
	Short: "Show recent audit sink entries",
	Long:  "Reads the last N entries from the JSONL audit sink and pretty-prints them.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditTail,
}

var auditReplayCmd = &cobra.Command{
	Use:   "replay <path>",
	Short: "Replay a sink file with filters",
	Long:  "Reads the JSONL audit sink, applies kind and time-range filters, and\nprints matching entries with per-kind totals. Corrupt lines are skipped\nand counted, never fatal.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditReplay,
}

var auditArchiveCmd = &cobra.Command{
	Use:   "archive <sink-path> <db-path>",
	Short: "Import a sink file into a SQLite archive",
	Long:  "Imports the JSONL audit sink into a SQLite database for long-term\nretention and indexed queries. Import runs in a single transaction.",
	Args:  cobra.ExactArgs(2),
	RunE:  runAuditArchive,
}

var auditQueryCmd = &cobra.Command{
	Use:   "query <db-path>",
	Short: "Query a SQLite audit archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditQuery,
}

func runAuditVerify(cmd *cobra.Command, args []string) error {
	result := audit.VerifyFile(args[0])
	if result.Valid {
		fmt.Printf("OK: %d entries verified\n", result.Lines)
		if !result.Chronological {
			fmt.Println("WARNING: timestamps not chronological")
		}
		return nil
	}
	fmt.Fprintf(os.Stderr, "FAILED at line %d: %s\n", result.ErrorLine, result.Error)
	os.Exit(1)
	return nil
}

func runAuditTail(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open audit sink: %w", err)
	}
	defer f.Close()

	// Read all lines, keep last N
	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read audit sink: %w", err)
	}

	start := len(lines) - tailLines
	if start < 0 {
		start = 0
	}

	for _, line := range lines[start:] {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			fmt.Println(line)
			continue
		}
		out, _ := json.MarshalIndent(entry, "", "  ")
		fmt.Println(string(out))
	}

	return nil
}

func runAuditReplay(cmd *cobra.Command, args []string) error {
	result, err := audit.Replay(args[0], audit.ReplayFilter{
		Kind:  audit.Kind(replayKind),
		Start: replayStart,
		End:   replayEnd,
	})
	if err != nil {
		return err
	}
	printJSON(result)
	return nil
}

func runAuditArchive(cmd *cobra.Command, args []string) error {
	archive, err := audit.OpenArchive(args[1])
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archive.Close()

	imported, err := archive.ImportFile(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	fmt.Printf("Imported %d entries into %s\n", imported, args[1])
	return nil
}

func runAuditQuery(cmd *cobra.Command, args []string) error {
	archive, err := audit.OpenArchive(args[0])
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archive.Close()

	entries, err := archive.Query(cmd.Context(), audit.QueryFilter{
		Kind:  audit.Kind(queryKind),
		Start: queryStart,
		End:   queryEnd,
	})
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}

	if queryLimit > 0 && len(entries) > queryLimit {
		entries = entries[:queryLimit]
	}
	printJSON(entries)
	return nil
}
