// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/secpapers/internal/dataset"
	"github.com/pdiddy/secpapers/internal/dedup"
	"github.com/pdiddy/secpapers/internal/source"
	"github.com/pdiddy/secpapers/pkg/types"
)

const defaultSupplementsDir = "data/supplements"

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Rebuild the dataset from the upstream README",
	Long: `Generate downloads the upstream awards README, parses the IEEE S&P, ACM CCS,
USENIX Security and NDSS sections, adds curated supplement files, collapses
entries with identical normalized titles (preferring the copy with a URL),
sorts the result and writes the dataset.

Supplement files are YAML documents with a top-level "papers" list; see
"secpapers add --help" for the entry format. Every *.yaml file in
--supplements-dir is loaded, followed by each --supplement file.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("readme-file", "", "parse a local README instead of downloading it")
	generateCmd.Flags().String("supplements-dir", defaultSupplementsDir, "directory of supplement YAML files (ignored when missing)")
	generateCmd.Flags().StringSlice("supplement", nil, "additional supplement YAML file (repeatable)")
	generateCmd.Flags().Bool("dry-run", false, "report what would be written without saving")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := commandLogger(cmd)

	readmeFile, _ := cmd.Flags().GetString("readme-file")
	supplementsDir, _ := cmd.Flags().GetString("supplements-dir")
	extra, _ := cmd.Flags().GetStringSlice("supplement")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	var content string
	if readmeFile != "" {
		data, err := os.ReadFile(readmeFile)
		if err != nil {
			return fmt.Errorf("reading README: %w", err)
		}
		content = string(data)
		log.Info().Str("path", readmeFile).Msg("parsing local README")
	} else {
		f := source.NewFetcher(cfg.Source)
		log.Info().Str("url", f.URL()).Msg("downloading README")
		var err error
		if content, err = f.Fetch(ctx); err != nil {
			return err
		}
	}

	papers, counts := source.ParseReadme(content)
	found := 0
	for _, c := range counts {
		if !c.Found {
			log.Warn().Str("venue", string(c.Venue)).Msg("venue section not found")
			continue
		}
		found++
		log.Info().Str("venue", string(c.Venue)).Int("papers", c.Papers).Msg("parsed section")
	}
	if found == 0 {
		return errors.New("no venue sections found in README")
	}

	files, err := supplementFiles(supplementsDir, extra)
	if err != nil {
		return err
	}
	supplemented := 0
	for _, path := range files {
		sub, err := dataset.LoadSubmissions(path)
		if err != nil {
			return err
		}
		log.Info().Str("path", path).Int("papers", len(sub)).Msg("loaded supplement")
		papers = append(papers, sub...)
		supplemented += len(sub)
	}

	merged, stats := dedup.Merge(papers)
	log.Info().
		Int("kept", stats.Kept).
		Int("replaced", stats.Replaced).
		Int("dropped", stats.Dropped).
		Msg("merged duplicate titles")

	ds := dataset.New(merged)
	dataset.Sort(ds.Papers)
	printGenerateSummary(cmd, counts, supplemented, stats, ds)

	if dryRun {
		log.Info().Msg("dry run, dataset not written")
		return nil
	}
	return withDatasetLock(log, func() error {
		return saveDataset(log, ds)
	})
}

// supplementFiles lists the YAML files in dir, sorted, followed by extra.
// A missing dir is not an error.
func supplementFiles(dir string, extra []string) ([]string, error) {
	var files []string
	if dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(dir, pattern))
			if err != nil {
				return nil, fmt.Errorf("listing supplements: %w", err)
			}
			files = append(files, matches...)
		}
		sort.Strings(files)
	}
	return append(files, extra...), nil
}

func printGenerateSummary(cmd *cobra.Command, counts []source.VenueCount, supplemented int, stats dedup.MergeStats, ds *types.Dataset) {
	out := cmd.OutOrStdout()

	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		status := "found"
		if !c.Found {
			status = "missing"
		}
		rows = append(rows, []string{string(c.Venue), status, strconv.Itoa(c.Papers)})
	}
	printSection(out, "README sections", []string{"Venue", "Section", "Papers"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight})

	fmt.Fprintf(out, "Supplement papers: %d\n", supplemented)
	fmt.Fprintf(out, "Duplicates removed: %d (%d replaced by a copy with a URL)\n", stats.Removed(), stats.Replaced)
	fmt.Fprintf(out, "Total papers: %d\n", len(ds.Papers))
}
