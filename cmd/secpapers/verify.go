// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pdiddy/secpapers/internal/cache"
	"github.com/pdiddy/secpapers/internal/dblp"
	"github.com/pdiddy/secpapers/pkg/types"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Cross-check papers against the DBLP bibliography",
	Long: `Verify searches DBLP for each paper's title and compares the best match:
a title similarity below the threshold is reported as not_found, and a
match with too little author overlap, a different year, or a venue other
than the paper's is reported as a mismatch. Search failures are reported
as api_error and the run continues.

DBLP responses are cached on disk (see "secpapers cache"), and requests
that miss the cache are spaced by verify.request_delay. With --fix-urls,
papers without a URL get the first electronic edition link of their match
and the dataset is saved.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().String("venue", "", "only verify papers from this venue (e.g. NDSS, \"IEEE S&P\")")
	verifyCmd.Flags().Int("year", 0, "only verify papers from this year")
	verifyCmd.Flags().Int("limit", 0, "stop after this many papers (0 verifies all)")
	verifyCmd.Flags().Bool("fix-urls", false, "fill missing URLs from matched records and save the dataset")
	verifyCmd.Flags().Bool("no-cache", false, "bypass the response cache")
	verifyCmd.Flags().Bool("json", false, "output the report as JSON")
	verifyCmd.Flags().Duration("delay", 0, "delay between DBLP requests (overrides verify.request_delay)")

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := commandLogger(cmd)

	venueFlag, _ := cmd.Flags().GetString("venue")
	year, _ := cmd.Flags().GetInt("year")
	limit, _ := cmd.Flags().GetInt("limit")
	fixURLs, _ := cmd.Flags().GetBool("fix-urls")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	asJSON, _ := cmd.Flags().GetBool("json")
	delay, _ := cmd.Flags().GetDuration("delay")

	opts := dblp.OptionsFromConfig(cfg.Verify)
	opts.Year, opts.Limit, opts.FixURLs = year, limit, fixURLs
	if venueFlag != "" {
		v, ok := types.ParseVenue(venueFlag)
		if !ok {
			return fmt.Errorf("unknown venue %q", venueFlag)
		}
		opts.Venue = v
	}

	verifyCfg := cfg.Verify
	if delay > 0 {
		verifyCfg.RequestDelay = delay
	}

	var responses dblp.ResponseCache
	if !noCache {
		store, err := cache.Open(cfg.Cache.Dir, cfg.Cache.TTL)
		if err != nil {
			return err
		}
		defer store.Close()
		responses = store
	}
	client := dblp.NewClient(verifyCfg, responses)

	run := func() (dblp.Report, error) {
		ds, err := loadDataset()
		if err != nil {
			return dblp.Report{}, err
		}
		report, err := dblp.NewVerifier(client, opts).Verify(ctx, ds.Papers)
		if err != nil {
			return report, err
		}
		if report.URLsFixed > 0 {
			if err := saveDataset(log, ds); err != nil {
				return report, err
			}
		}
		return report, nil
	}

	var report dblp.Report
	var err error
	if fixURLs {
		err = withDatasetLock(log, func() error {
			report, err = run()
			return err
		})
	} else {
		report, err = run()
	}
	logVerify(log, report, client.Stats())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		if err := printJSON(out, report); err != nil {
			return err
		}
	} else {
		printVerify(out, report)
	}

	if report.HasIssues() {
		return fmt.Errorf("%d of %d papers failed verification", papersWithIssues(report), report.Checked)
	}
	return nil
}

// papersWithIssues counts distinct papers with at least one issue.
func papersWithIssues(r dblp.Report) int {
	seen := make(map[int]bool)
	for _, is := range r.Issues {
		seen[is.Index] = true
	}
	return len(seen)
}

func logVerify(log *zerolog.Logger, r dblp.Report, stats dblp.CacheStats) {
	log.Info().
		Int("checked", r.Checked).
		Int("matched", r.Matched).
		Int("issues", len(r.Issues)).
		Int("urls_fixed", r.URLsFixed).
		Int("cache_hits", stats.Hits).
		Int("fetched", stats.Fetched).
		Msg("verification complete")
}

func printVerify(out io.Writer, r dblp.Report) {
	if len(r.Issues) > 0 {
		rows := make([][]string, 0, len(r.Issues))
		for _, is := range r.Issues {
			rows = append(rows, []string{string(is.Kind), strconv.Itoa(is.Year), string(is.Venue), is.Title, is.Detail})
		}
		printSection(out, "Verification issues", []string{"Kind", "Year", "Venue", "Title", "Detail"}, rows, nil)
	}

	kinds := []dblp.IssueKind{dblp.IssueNotFound, dblp.IssueAuthorMismatch, dblp.IssueYearMismatch, dblp.IssueVenueMismatch, dblp.IssueAPIError}
	rows := [][]string{
		{"checked", strconv.Itoa(r.Checked)},
		{"matched", strconv.Itoa(r.Matched)},
		{"urls fixed", strconv.Itoa(r.URLsFixed)},
	}
	for _, k := range kinds {
		rows = append(rows, []string{string(k), strconv.Itoa(r.Count(k))})
	}
	printSection(out, "Summary", []string{"Result", "Papers"}, rows, []columnAlignment{alignLeft, alignRight})
}
