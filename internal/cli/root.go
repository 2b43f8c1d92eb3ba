package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nullishamy/dakko/internal/config"
	"github.com/nullishamy/dakko/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the dakko CLI.
// It loads configuration, wires up logging and registers the subcommands
// (simulate, tui, config).
func NewRootCmd(ver string) *cobra.Command {
	var (
		logResult  *logging.LogPathResult
		configFlag string
	)

	cmd := &cobra.Command{
		Use:     "dakko",
		Short:   "Virtual list windowing engine toolkit",
		Long:    "dakko: replay scroll traces against the windowing engine and browse large lists in the terminal",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(cmd, configFlag); err != nil {
				return err
			}

			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return cleanupLogging(logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&configFlag, "config", "",
		"configuration file (default: "+config.ProjectFileName+" in a parent directory, else ~/.dakko/config.yaml)")
	cmd.AddCommand(NewSimulateCmd(), NewTUICmd(), newConfigCmd(), newCacheCmd())

	return cmd
}

const rootCmdExample = `  # Replay a scroll trace and print every emitted window
  dakko simulate traces/fixed-rows.yaml

  # Replay several traces concurrently as JSON
  dakko simulate --output json --parallel 4 a.yaml b.yaml

  # Browse 10000 generated rows
  dakko tui --items 10000

  # Initialize configuration
  dakko config init`

// loadConfig resolves the configuration file, loads it and installs it as the
// global configuration.
func loadConfig(cmd *cobra.Command, configFlag string) error {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	path := config.ResolveConfigPath(cmd.Context(), configFlag, wd)
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	config.SetGlobalConfig(cfg)
	return nil
}

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigShowCmd(), NewConfigValidateCmd())
	return cmd
}
