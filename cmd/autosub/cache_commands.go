package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"autosub/internal/fillcache"
	"autosub/internal/services"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the translation cache",
	}
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func (c *commandContext) withCache(fn func(*fillcache.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.Fill.CacheEnabled {
		return services.Wrap(services.ErrConfiguration, "cache", "Open cache", "fill.cache_enabled is false", nil)
	}
	store, err := fillcache.Open(cfg.CachePath())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show translation cache size and hit counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(func(store *fillcache.Store) error {
				stats, err := store.Stats(runContext(cmd))
				if err != nil {
					return err
				}
				size := "-"
				if info, err := os.Stat(store.Path()); err == nil {
					size = humanize.Bytes(uint64(info.Size()))
				}
				fmt.Fprintln(cmd.OutOrStdout(), keyValueTable([][2]string{
					{"Path", store.Path()},
					{"Size", size},
					{"Entries", strconv.Itoa(stats.Entries)},
					{"Hits", strconv.Itoa(stats.Hits)},
				}))
				return nil
			})
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached translation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(func(store *fillcache.Store) error {
				removed, err := store.Clear(runContext(cmd))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached translations\n", removed)
				return nil
			})
		},
	}
}
