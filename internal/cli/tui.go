package cli

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nullishamy/dakko/internal/config"
	"github.com/nullishamy/dakko/internal/logging"
	"github.com/nullishamy/dakko/internal/tui"
)

// ErrNotTerminal is returned by `dakko tui` when stdout is not a terminal.
var ErrNotTerminal = errors.New("dakko tui requires an interactive terminal")

// NewTUICmd creates the tui command, which browses generated rows of varying
// heights through the virtual list.
func NewTUICmd() *cobra.Command {
	var items int

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse generated rows in a virtual list",
		Long: `Opens a full-screen list of generated rows whose heights vary between
tui.min_height and tui.max_height lines. Only the rows inside the engine's
window are rendered; the status bar shows the window and its paddings.

Keys: arrows or j/k to move, pgup/pgdn, home/end, / to filter, a to load more
rows, ? for help, q to quit.`,
		Example: `  # Browse the configured number of rows
  dakko tui

  # Browse 100000 rows
  dakko tui --items 100000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()
			if cmd.Flags().Changed("items") {
				cfg.TUI.Items = items
			}
			return runTUI(cmd, cfg)
		},
	}

	cmd.Flags().IntVar(&items, "items", config.DefaultItems, "number of rows to generate")

	return cmd
}

func runTUI(cmd *cobra.Command, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !isTerminal(os.Stdout) {
		return ErrNotTerminal
	}

	opts := browserOptions(cfg)
	if width, height, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		opts.Width = width
		opts.Height = height
	}

	// console output would draw over the list, so only file logging is kept
	if cfg.Logging.File != "" {
		opts.Logger = logging.FromContext(cmd.Context())
	}

	rows := tui.GenerateRows(0, cfg.TUI.Items, cfg.TUI.MinHeight, cfg.TUI.MaxHeight)
	model, err := tui.NewBrowserModel(rows, opts)
	if err != nil {
		return fmt.Errorf("creating browser: %w", err)
	}

	logger.Debug().Int("rows", len(rows)).Msg("starting browser")

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err = p.Run(); err != nil {
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}

// browserOptions maps the configuration onto the browser.
func browserOptions(cfg *config.Config) tui.BrowserOptions {
	nop := zerolog.Nop()
	return tui.BrowserOptions{
		Keeps:          cfg.Engine.Keeps,
		Buffer:         cfg.Engine.Buffer,
		EstimateHeight: cfg.Engine.EstimateSize,
		MinHeight:      cfg.TUI.MinHeight,
		MaxHeight:      cfg.TUI.MaxHeight,
		Logger:         &nop,
	}
}
