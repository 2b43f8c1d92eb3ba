package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/nullishamy/dakko/internal/cache"
	"github.com/nullishamy/dakko/internal/config"
	"github.com/nullishamy/dakko/internal/simulate"
	"github.com/nullishamy/dakko/pkg/version"
)

const (
	outputTable = "table"
	outputJSON  = "json"

	// tabPadding is the minimum column padding for tabwriter output.
	tabPadding = 2

	traceExt = ".yaml"
)

// NewSimulateCmd creates the simulate command, which replays scroll traces
// against the window engine.
func NewSimulateCmd() *cobra.Command {
	var (
		output   string
		parallel int
		summary  bool
		useCache bool
		cacheTTL string
	)

	cmd := &cobra.Command{
		Use:   "simulate TRACE...",
		Short: "Replay scroll traces against the window engine",
		Long: `Replays one or more scroll traces and prints every window the engine emitted.

A trace is a YAML file describing the engine parameters, the item sizes and a
sequence of scroll, measure, append, truncate and header events. Traces given
by bare name (without a directory) are also looked up in ~/.dakko/traces.`,
		Example: `  # Replay a trace
  dakko simulate fixed-rows.yaml

  # Print only the final window of each trace
  dakko simulate --summary a.yaml b.yaml

  # JSON output for scripting
  dakko simulate --output json a.yaml | jq '.[0].final'

  # Reuse results of unchanged traces for a week
  dakko simulate --cache --cache-ttl 168h traces/*.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openResultCache(useCache, cacheTTL)
			if err != nil {
				return err
			}
			return runSimulate(cmd, args, simulateOptions{
				output:   output,
				parallel: parallel,
				summary:  summary,
				cache:    store,
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "maximum traces replayed at once (0 = unlimited)")
	cmd.Flags().BoolVar(&summary, "summary", false, "print only the final window of each trace")
	cmd.Flags().BoolVar(&useCache, "cache", false, "reuse results of traces replayed before")
	cmd.Flags().StringVar(&cacheTTL, "cache-ttl", cache.DefaultTTL.String(),
		"lifetime of cached results (seconds or duration, e.g. 90m)")

	return cmd
}

type simulateOptions struct {
	output   string
	parallel int
	summary  bool
	cache    *cache.Store
}

func runSimulate(cmd *cobra.Command, args []string, opts simulateOptions) error {
	if opts.output != outputTable && opts.output != outputJSON {
		return fmt.Errorf("unsupported output format %q: want %s or %s", opts.output, outputTable, outputJSON)
	}
	if opts.parallel < 0 {
		return fmt.Errorf("parallel must be >= 0, got %d", opts.parallel)
	}

	traces := make([]*simulate.Trace, 0, len(args))
	for _, arg := range args {
		path, err := resolveTracePath(arg)
		if err != nil {
			return err
		}
		tr, err := simulate.Load(path)
		if err != nil {
			return err
		}
		if tr.Name == "" {
			tr.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		traces = append(traces, tr)
	}

	results, err := replayTraces(cmd.Context(), traces, opts.parallel, opts.cache)
	if err != nil {
		return err
	}

	if opts.output == outputJSON {
		return renderSimulateJSON(cmd.OutOrStdout(), results)
	}
	return renderSimulateTable(cmd.OutOrStdout(), results, opts.summary)
}

// openResultCache returns nil when caching is off.
func openResultCache(enabled bool, ttl string) (*cache.Store, error) {
	d, err := cache.ParseTTL(ttl)
	if err != nil {
		return nil, fmt.Errorf("invalid --cache-ttl: %w", err)
	}
	if !enabled {
		return nil, nil //nolint:nilnil // a nil store disables caching
	}
	dir, err := config.GetCacheDir()
	if err != nil {
		return nil, err
	}
	return cache.Open(dir, d)
}

// replayTraces runs every trace without a cached result and stores what it
// ran. Cache failures are logged and never fail the replay.
func replayTraces(
	ctx context.Context,
	traces []*simulate.Trace,
	parallel int,
	store *cache.Store,
) ([]*simulate.Result, error) {
	results := make([]*simulate.Result, len(traces))
	keys := make([]string, len(traces))
	pending := make([]*simulate.Trace, 0, len(traces))
	pendingIdx := make([]int, 0, len(traces))

	for i, tr := range traces {
		if store.Enabled() {
			key, err := traceCacheKey(tr)
			if err != nil {
				return nil, err
			}
			keys[i] = key

			var res simulate.Result
			err = store.Get(key, &res)
			switch {
			case err == nil:
				logger.Debug().Str("trace", tr.Name).Str("key", key[:12]).Msg("cache hit")
				results[i] = &res
				continue
			case errors.Is(err, cache.ErrNotFound), errors.Is(err, cache.ErrExpired):
			default:
				logger.Warn().Err(err).Str("trace", tr.Name).Msg("dropping unreadable cache entry")
				if delErr := store.Delete(key); delErr != nil {
					logger.Warn().Err(delErr).Str("trace", tr.Name).Msg("failed to delete cache entry")
				}
			}
		}
		pending = append(pending, tr)
		pendingIdx = append(pendingIdx, i)
	}

	logger.Debug().
		Int("traces", len(traces)).
		Int("cached", len(traces)-len(pending)).
		Int("parallel", parallel).
		Msg("replaying traces")

	ran, err := simulate.RunAll(ctx, pending, parallel)
	if err != nil {
		return nil, err
	}

	for j, res := range ran {
		i := pendingIdx[j]
		results[i] = res
		if !store.Enabled() {
			continue
		}
		if putErr := store.Put(keys[i], res); putErr != nil {
			logger.Warn().Err(putErr).Str("trace", res.Name).Msg("failed to cache result")
		}
	}
	return results, nil
}

// traceCacheKey identifies a trace by its content and the engine version.
func traceCacheKey(tr *simulate.Trace) (string, error) {
	data, err := yaml.Marshal(tr)
	if err != nil {
		return "", fmt.Errorf("encoding trace %q for cache key: %w", tr.Name, err)
	}
	return cache.Key([]byte(version.GetVersion()), data), nil
}

// resolveTracePath returns arg when it names an existing file. A bare name
// is also tried in the trace directory, with and without the .yaml suffix.
func resolveTracePath(arg string) (string, error) {
	if _, err := os.Stat(arg); err == nil || filepath.Base(arg) != arg {
		return arg, nil
	}

	dir, err := config.GetTraceDir()
	if err != nil {
		return "", err
	}
	candidates := []string{filepath.Join(dir, arg)}
	if filepath.Ext(arg) == "" {
		candidates = append(candidates, filepath.Join(dir, arg+traceExt))
	}
	for _, candidate := range candidates {
		if _, statErr := os.Stat(candidate); statErr == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("trace %q not found in the working directory or %s", arg, dir)
}

// renderSimulateTable writes one table per trace. Numbers are grouped by
// thousands so long lists stay readable.
func renderSimulateTable(w io.Writer, results []*simulate.Result, summary bool) error {
	p := message.NewPrinter(language.English)

	for i, res := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := p.Fprintf(w, "TRACE %s (%d items, mode %s, estimate %.1f)\n",
			res.Name, res.Items, res.Mode, res.EstimateSize); err != nil {
			return err
		}

		tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
		fmt.Fprintln(tw, "STEP\tEVENT\tSTART\tEND\tPAD FRONT\tPAD BEHIND\tDIRECTION\tMODE")
		fmt.Fprintln(tw, "----\t-----\t-----\t---\t---------\t----------\t---------\t----")

		frames := res.Frames
		if summary {
			frames = []simulate.Frame{finalFrame(res)}
		}
		for _, f := range frames {
			p.Fprintf(tw, "%d\t%s\t%d\t%d\t%.0f\t%.0f\t%s\t%s\n",
				f.Step, f.Event, f.Window.Start, f.Window.End,
				f.Window.PadFront, f.Window.PadBehind, f.Direction, f.Mode)
		}

		if err := tw.Flush(); err != nil {
			return fmt.Errorf("flushing table writer: %w", err)
		}
	}
	return nil
}

// finalFrame describes the window the trace ended with.
func finalFrame(res *simulate.Result) simulate.Frame {
	f := simulate.Frame{Event: "final", Window: res.Final, Mode: res.Mode}
	if n := len(res.Frames); n > 0 {
		last := res.Frames[n-1]
		f.Step = last.Step
		f.Direction = last.Direction
	}
	return f
}

func renderSimulateJSON(w io.Writer, results []*simulate.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}
