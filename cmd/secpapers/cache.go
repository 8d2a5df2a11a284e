// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/secpapers/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the DBLP response cache",
	Long: `The response cache stores raw DBLP search responses in a SQLite database
under cache.dir, keyed by the SHA-256 digest of the request URL. Entries
older than cache.ttl are ignored by verify and removed by prune.`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached response",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(cmd, func(store *cache.Store) error {
			n, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached responses\n", n)
			return nil
		})
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired and unreadable cached responses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(cmd, func(store *cache.Store) error {
			n, err := store.Prune(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d cached responses\n", n)
			return nil
		})
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache size and freshness",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return withCache(cmd, func(store *cache.Store) error {
			st, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, st)
			}
			rows := [][]string{
				{"path", st.Path},
				{"ttl", cfg.Cache.TTL.String()},
				{"entries", strconv.Itoa(st.Entries)},
				{"fresh", strconv.Itoa(st.Fresh)},
				{"expired", strconv.Itoa(st.Expired)},
				{"corrupt", strconv.Itoa(st.Corrupt)},
				{"bytes", strconv.FormatInt(st.Bytes, 10)},
				{"oldest", formatTime(st.Oldest)},
				{"newest", formatTime(st.Newest)},
			}
			printSection(out, "Response cache", []string{"Field", "Value"}, rows, nil)
			return nil
		})
	},
}

func init() {
	cacheStatsCmd.Flags().Bool("json", false, "output stats as JSON")

	cacheCmd.AddCommand(cacheClearCmd, cachePruneCmd, cacheStatsCmd)
	rootCmd.AddCommand(cacheCmd)
}

// withCache opens the configured cache for the duration of fn.
func withCache(cmd *cobra.Command, fn func(*cache.Store) error) error {
	store, err := cache.Open(cfg.Cache.Dir, cfg.Cache.TTL)
	if err != nil {
		return err
	}
	defer store.Close()
	commandLogger(cmd).Debug().Str("path", store.Path()).Msg("opened cache")
	return fn(store)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
