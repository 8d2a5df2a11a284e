// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/secpapers/internal/dataset"
	"github.com/pdiddy/secpapers/internal/dedup"
	"github.com/pdiddy/secpapers/pkg/types"
)

var addCmd = &cobra.Command{
	Use:   "add FILE...",
	Short: "Ingest curated papers from YAML submission files",
	Long: `Add merges hand-curated papers into the existing dataset. Each file holds a
top-level "papers" list:

  papers:
    - title: "Branch Privilege Injection"
      authors: "Sandro Rüegge (ETH Zurich), Johannes Wikner (ETH Zurich)"
      venue: "USENIX Security"
      year: 2025
      award: "Distinguished Paper"   # optional, defaults by venue
      url: "https://..."             # optional

The authors line may use any of the supported formats. A paper whose
normalized title is already present is skipped, unless the present copy has
no URL and the new one does. Files with invalid entries are rejected whole.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().Bool("dry-run", false, "report what would change without saving")

	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	log := commandLogger(cmd)
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	var incoming []types.Paper
	for _, path := range args {
		papers, err := dataset.LoadSubmissions(path)
		if err != nil {
			return err
		}
		log.Info().Str("path", path).Int("papers", len(papers)).Msg("loaded submissions")
		incoming = append(incoming, papers...)
	}

	return withDatasetLock(log, func() error {
		ds, err := loadDatasetOrNew(log)
		if err != nil {
			return err
		}

		before := len(ds.Papers)
		papers, summary := dataset.Ingest(ds.Papers, incoming)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Added: %d\nUpgraded: %d\nSkipped: %d\nTotal: %d (was %d)\n",
			summary.Added, summary.Upgraded, summary.Skipped, summary.Total, before)

		if pairs := dedup.FindDuplicates(papers, dedup.OptionsFromConfig(cfg.Dedup)); len(pairs) > 0 {
			log.Warn().Int("pairs", len(pairs)).Msg("possible duplicates remain, run check for details")
		}

		if !summary.Changed() {
			log.Info().Msg("nothing to add")
			return nil
		}
		if dryRun {
			log.Info().Msg("dry run, dataset not written")
			return nil
		}
		ds.Papers = papers
		return saveDataset(log, ds)
	})
}
