package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nullishamy/dakko/internal/cache"
	"github.com/nullishamy/dakko/internal/config"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached simulation results",
		Long: `Manages the results stored by "dakko simulate --cache" in ~/.dakko/cache.`,
	}
	cmd.AddCommand(newCacheInfoCmd(), newCachePruneCmd(), newCacheClearCmd())
	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the cache location and size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCacheDir()
			if err != nil {
				return err
			}
			count, size, err := store.Stats()
			if err != nil {
				return err
			}
			cmd.Printf("Cache directory: %s\n", store.Dir())
			cmd.Printf("Entries: %d (%d bytes)\n", count, size)
			cmd.Printf("Default lifetime: %s\n", cache.FormatTTL(store.TTL()))
			return nil
		},
	}
}

func newCachePruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return removeCacheEntries(cmd, (*cache.Store).Prune, "expired")
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cache entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return removeCacheEntries(cmd, (*cache.Store).Clear, "all")
		},
	}
}

func removeCacheEntries(cmd *cobra.Command, remove func(*cache.Store) (int, error), what string) error {
	store, err := openCacheDir()
	if err != nil {
		return err
	}
	n, err := remove(store)
	if err != nil {
		return fmt.Errorf("cleaning cache: %w", err)
	}
	logger.Debug().Int("removed", n).Str("scope", what).Msg("cache cleaned")
	cmd.Printf("Removed %d cache entries\n", n)
	return nil
}

// openCacheDir opens the cache for maintenance. Expiry is stored per entry,
// so the TTL given here only matters for writes.
func openCacheDir() (*cache.Store, error) {
	dir, err := config.GetCacheDir()
	if err != nil {
		return nil, err
	}
	store, err := cache.Open(dir, cache.DefaultTTL)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return store, nil
}
