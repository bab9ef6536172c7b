package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/orthoweb/internal/datasource"
)

var errNoPersistentCache = errors.New("no persistent cache configured (set service.cache.sqlite_path)")

var (
	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Inspect or prune the persistent response cache",
	}

	cacheStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show the number of cached responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cache, err := openConfiguredCache()
			if err != nil {
				return err
			}
			defer cache.Close()
			n, err := cache.Len()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d responses\n", cache.Path(), n)
			return nil
		},
	}

	cachePurgeCmd = &cobra.Command{
		Use:   "purge",
		Short: "Drop expired responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cache, err := openConfiguredCache()
			if err != nil {
				return err
			}
			defer cache.Close()
			n, err := cache.Purge()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d expired responses\n", n)
			return nil
		},
	}
)

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}

func openConfiguredCache() (*datasource.SQLiteCache, error) {
	cc := cfg.Service.Cache
	if cc.SQLitePath == "" {
		return nil, errNoPersistentCache
	}
	return datasource.OpenSQLiteCache(cc.SQLitePath, cc.TTL)
}
