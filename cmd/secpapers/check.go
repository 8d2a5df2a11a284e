// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/secpapers/internal/audit"
	"github.com/pdiddy/secpapers/internal/dedup"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Audit the dataset for gaps, duplicates and malformed records",
	Long: `Check runs every audit over the dataset: missing award years per venue,
likely duplicates (fuzzy title match within a venue), data quality problems
(short titles, missing authors, out-of-range years, unknown venues), and a
summary of its contents. All checks run before the command exits, with a
non-zero status when any check found a problem.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Bool("json", false, "output the report as JSON")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	log := commandLogger(cmd)
	asJSON, _ := cmd.Flags().GetBool("json")

	ds, err := loadDataset()
	if err != nil {
		return err
	}

	report := audit.Run(ds.Papers, dedup.OptionsFromConfig(cfg.Dedup))
	log.Info().
		Int("papers", report.Summary.Total).
		Int("duplicates", len(report.Duplicates)).
		Int("quality_issues", len(report.Quality)).
		Bool("missing_years", report.MissingYears()).
		Msg("audit complete")

	out := cmd.OutOrStdout()
	if asJSON {
		if err := printJSON(out, report); err != nil {
			return err
		}
	} else {
		printAudit(out, report)
	}

	if report.HasIssues() {
		return fmt.Errorf("audit found issues in %s", cfg.Dataset.Path)
	}
	return nil
}

func printAudit(out io.Writer, r audit.Report) {
	rows := make([][]string, 0, len(r.Coverage))
	for _, c := range r.Coverage {
		missing := "none"
		if len(c.Missing) > 0 {
			missing = joinInts(c.Missing)
		}
		rows = append(rows, []string{string(c.Venue), fmt.Sprintf("%d-%d", c.First, c.Last), strconv.Itoa(len(c.Years)), missing})
	}
	printSection(out, "Coverage", []string{"Venue", "Range", "Years", "Missing"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft})

	if len(r.Duplicates) > 0 {
		rows = rows[:0]
		for _, p := range r.Duplicates {
			rows = append(rows, []string{
				fmt.Sprintf("%.3f", p.Similarity),
				fmt.Sprintf("%d %s", p.First.Year, p.First.Title),
				fmt.Sprintf("%d %s", p.Second.Year, p.Second.Title),
				string(p.First.Venue),
			})
		}
		printSection(out, "Possible duplicates", []string{"Similarity", "First", "Second", "Venue"}, rows, []columnAlignment{alignRight})
	}

	if len(r.Quality) > 0 {
		rows = rows[:0]
		for _, q := range r.Quality {
			rows = append(rows, []string{string(q.Problem), strconv.Itoa(q.Year), string(q.Venue), q.Title})
		}
		printSection(out, "Data quality", []string{"Problem", "Year", "Venue", "Title"}, rows, nil)
	}

	s := r.Summary
	rows = rows[:0]
	for _, c := range s.ByVenue {
		rows = append(rows, []string{c.Name, strconv.Itoa(c.Count)})
	}
	printSection(out, "Papers by venue", []string{"Venue", "Papers"}, rows, []columnAlignment{alignLeft, alignRight})

	rows = rows[:0]
	for _, c := range s.ByYear {
		rows = append(rows, []string{c.Name, strconv.Itoa(c.Count)})
	}
	printSection(out, "Papers by year", []string{"Year", "Papers"}, rows, []columnAlignment{alignLeft, alignRight})

	rows = rows[:0]
	for _, c := range s.TopAuthors {
		rows = append(rows, []string{c.Name, strconv.Itoa(c.Count)})
	}
	printSection(out, "Top authors", []string{"Author", "Papers"}, rows, []columnAlignment{alignLeft, alignRight})

	fmt.Fprintf(out, "Total papers: %d\n", s.Total)
	fmt.Fprintf(out, "Papers with URL: %d (%.1f%%)\n", s.WithURL, s.URLCoverage())
	if !r.HasIssues() {
		fmt.Fprintln(out, "No issues found.")
	}
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
