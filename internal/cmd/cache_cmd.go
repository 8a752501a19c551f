package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hellosign/hellosign-cli/internal/cache"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cache",
		Aliases: []string{"ch"},
		Short:   "Manage the local cache",
		Long:    "The cache holds reusable form listings for a few minutes so title lookups skip the API.",
	}

	cmd.AddCommand(newCacheClearCmd())
	cmd.AddCommand(newCachePathCmd())
	return cmd
}

func defaultCacheDir() string {
	dir, err := cache.DefaultDir()
	if err != nil {
		return ""
	}
	return dir
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached data",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			dir := resolveCacheDir()
			if dir == "" {
				return fmt.Errorf("could not determine cache directory")
			}
			removed := cache.ClearDir(dir)

			redisRemoved := 0
			if url := cache.RedisURL(); url != "" {
				n, err := cache.ClearRedisURL(cmdContext(cmd), url)
				if err != nil {
					return fmt.Errorf("failed to clear redis cache: %w", err)
				}
				redisRemoved = n
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"dir":           dir,
					"removed":       removed,
					"redis_removed": redisRemoved,
				})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared: %s (%d entries)\n", dir, removed)
			if redisRemoved > 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Redis entries removed: %d\n", redisRemoved)
			}
			return nil
		}),
	}
}

func newCachePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the cache directory path",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			dir := resolveCacheDir()
			if dir == "" {
				return fmt.Errorf("could not determine cache directory")
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"dir": dir, "redis": cache.RedisURL() != ""})
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), dir)

			entries, err := os.ReadDir(dir)
			if err != nil {
				return nil // directory might not exist yet
			}
			for _, e := range entries {
				if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
					continue
				}
				info, err := e.Info()
				if err != nil {
					continue
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s (%d bytes)\n", e.Name(), info.Size())
			}
			return nil
		}),
	}
}
