//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Generate rebuilds data/papers.json from the upstream README and the
// supplement files in data/supplements.
func Generate() error {
	mg.Deps(Build, Init)
	return sh.RunV(binPath, "generate")
}

// Check audits the dataset and fails when any check finds a problem.
func Check() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "check")
}

// Verify cross-checks the dataset against DBLP using the response cache.
func Verify() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "verify")
}

// Bibtex exports the dataset to data/papers.bib.
func Bibtex() error {
	mg.Deps(Build)
	out := "data/papers.bib"
	if err := sh.RunV(binPath, "export", "--format", "bibtex", "--output", out); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", out)
	return nil
}
