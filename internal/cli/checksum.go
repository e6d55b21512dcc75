package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opsgate/opsgate/internal/integrity"
)

var checksumWrite string

func init() {
	rootCmd.AddCommand(checksumCmd)
	checksumCmd.Flags().StringVar(&checksumWrite, "write", "", "Also write the hash to the given checksum file")
}

var checksumCmd = &cobra.Command{
	Use:   "checksum",
	Short: "Print the SHA-256 of the running binary",
	Long:  "Prints the hex digest of the opsgate binary. Use --write to record it\nas the expected checksum for startup integrity verification.",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := integrity.HashSelf()
		if err != nil {
			return err
		}
		fmt.Println(h)

		if checksumWrite != "" {
			if err := os.WriteFile(checksumWrite, []byte(h+"\n"), 0o644); err != nil {
				return fmt.Errorf("write checksum file: %w", err)
			}
			fmt.Fprintf(os.Stderr, "wrote %s\n", checksumWrite)
		}
		return nil
	},
}
