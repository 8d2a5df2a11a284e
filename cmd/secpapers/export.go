// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/secpapers/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the dataset as BibTeX or YAML",
	Long: `Export writes the dataset in another format. bibtex emits one
@inproceedings entry per paper with cite keys of the form
<lastname><year><firstword> and the award in the note field; yaml dumps the
whole dataset document.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("format", string(export.FormatBibTeX), "output format: bibtex or yaml")
	exportCmd.Flags().StringP("output", "o", "", "output file (default stdout)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	log := commandLogger(cmd)
	formatFlag, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	format, err := export.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	ds, err := loadDataset()
	if err != nil {
		return err
	}

	if output == "" {
		return export.Write(cmd.OutOrStdout(), format, ds)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", output, err)
	}
	w := bufio.NewWriter(f)
	if err := export.Write(w, format, ds); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", output, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", output, err)
	}
	log.Info().Str("format", string(format)).Str("path", output).Int("papers", len(ds.Papers)).Msg("exported dataset")
	return nil
}
