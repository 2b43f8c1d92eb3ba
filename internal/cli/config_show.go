package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nullishamy/dakko/internal/config"
)

// NewConfigShowCmd creates the config show command, which prints the
// effective configuration after the file and environment overrides.
func NewConfigShowCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Example: `  # Show configuration as YAML
  dakko config show

  # Show configuration as JSON
  dakko config show --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()

			var (
				data []byte
				err  error
			)
			switch output {
			case "yaml":
				data, err = yaml.Marshal(cfg)
				data = append([]byte("# "+cfg.ConfigPath()+"\n"), data...)
			case outputJSON:
				data, err = json.MarshalIndent(cfg, "", "  ")
				data = append(data, '\n')
			default:
				return fmt.Errorf("unsupported output format %q: want yaml or %s", output, outputJSON)
			}
			if err != nil {
				return fmt.Errorf("encoding configuration: %w", err)
			}

			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: yaml or json")

	return cmd
}
