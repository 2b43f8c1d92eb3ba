package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nullishamy/dakko/internal/config"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the effective configuration for semantic correctness.

This includes:
- Engine parameters (keeps >= 1, buffer >= 0, finite estimate_size >= 0)
- Logging level and format
- TUI row count and height range`,
		Example: `  # Validate current configuration
  dakko config validate

  # Validate and show detailed information
  dakko config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate validates the global configuration and reports the result.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg := config.GetGlobalConfig()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cmd.Printf("Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg)
	}

	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Config file: %s\n", cfg.ConfigPath())
	cmd.Printf("  Engine keeps: %d\n", cfg.Engine.Keeps)
	cmd.Printf("  Engine buffer: %d\n", cfg.Engine.Buffer)
	cmd.Printf("  Engine estimate size: %g\n", cfg.Engine.EstimateSize)
	cmd.Printf("  Engine header offset: %g\n", cfg.Engine.HeaderOffset)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	cmd.Printf("  Logging format: %s\n", cfg.Logging.Format)
	cmd.Printf("  Log file: %s\n", cfg.Logging.File)
	cmd.Printf("  TUI rows: %d (heights %d..%d)\n", cfg.TUI.Items, cfg.TUI.MinHeight, cfg.TUI.MaxHeight)
}
