package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opsgate/opsgate/internal/config"
)

var (
	initMode  string
	initForce bool
)

func init() {
	initConfigCmd.Flags().StringVar(&initMode, "mode", "user", "Config location: user (~/.opsgate) or system (/etc/opsgate)")
	initConfigCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initConfigCmd)
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Bootstrap opsgate configuration",
	Long: `Creates the config directory and a commented default config.yaml.

User mode (default):  writes to ~/.opsgate/
System mode:          writes to /etc/opsgate/ (requires root)`,
	RunE: runInitConfig,
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	configDir, err := initConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	wrote, err := writeIfMissing(configPath, config.DefaultYAML())
	if err != nil {
		return err
	}

	if wrote {
		fmt.Printf("Created %s\n", configPath)
	} else {
		fmt.Printf("%s already exists (use --force to overwrite).\n", configPath)
	}

	fmt.Println()
	fmt.Println("Gate an operation:")
	fmt.Println(`  opsgate decide delete_user_data --context '{"purpose":"gdpr_erasure","contains_personal_data":true,"user_consent":true,"responsible_party":"dpo","harm_assessment":"minimal"}'`)
	fmt.Println()
	fmt.Println("Start the oversight server:")
	fmt.Println("  opsgate serve")

	return nil
}

// initConfigDir returns the configuration directory based on mode.
func initConfigDir() (string, error) {
	switch initMode {
	case "system":
		return "/etc/opsgate", nil
	case "user", "":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(home, ".opsgate"), nil
	default:
		return "", fmt.Errorf("invalid mode %q: expected user or system", initMode)
	}
}

// writeIfMissing writes content to path unless it exists (and --force is off).
func writeIfMissing(path, content string) (bool, error) {
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
