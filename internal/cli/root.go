package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opsgate/opsgate/internal/integrity"
)

var rootCmd = &cobra.Command{
	Use:   "opsgate",
	Short: "Policy gate for sensitive operations",
	Long:  "Gates operations behind a policy pipeline: principle checks, impact assessment,\nand an approve/deny decision with guidance. Backed by a tamper-evident audit ledger,\nhealth monitoring with automated recovery, and performance trend tracking.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := integrity.Verify(); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			os.Exit(78) // EX_CONFIG
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
