// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset reads and writes the persisted JSON paper list and
// merges curated additions into it.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gofrs/flock"

	"github.com/pdiddy/secpapers/pkg/types"
)

// Header values written with every dataset.
const (
	Description = "Best Papers in Systems Security - Award-winning papers from top security conferences"
	SourceURL   = "https://github.com/prncoprs/best-papers-in-computer-security"
)

// DefaultPath is the dataset location relative to the repository root.
const DefaultPath = "data/papers.json"

// ErrLocked is returned by Lock when another run holds the dataset.
var ErrLocked = errors.New("dataset is locked by another run")

// New wraps papers in a dataset document with the standard header.
func New(papers []types.Paper) *types.Dataset {
	venues := make([]string, len(types.Venues))
	for i, v := range types.Venues {
		venues[i] = string(v)
	}
	return &types.Dataset{
		Description: Description,
		Source:      SourceURL,
		Venues:      venues,
		Papers:      papers,
	}
}

// Load reads the dataset at path.
func Load(path string) (*types.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	var ds types.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parsing dataset %s: %w", path, err)
	}
	return &ds, nil
}

// Save sorts the papers and writes the dataset to path as indented JSON.
// The file is replaced atomically: a failed write leaves the previous
// contents in place.
func Save(path string, ds *types.Dataset) error {
	Sort(ds.Papers)
	for i := range ds.Papers {
		if ds.Papers[i].Authors == nil {
			ds.Papers[i].Authors = []types.Author{}
		}
	}
	if len(ds.Venues) == 0 {
		ds.Venues = New(nil).Venues
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ds); err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating dataset directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing dataset: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing dataset: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("setting dataset permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing dataset: %w", err)
	}
	return nil
}

// Sort orders papers by year (newest first), then venue, then title.
func Sort(papers []types.Paper) {
	sort.SliceStable(papers, func(i, j int) bool {
		a, b := papers[i], papers[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if a.Venue != b.Venue {
			return a.Venue < b.Venue
		}
		return a.Title < b.Title
	})
}

// Lock takes the advisory lock guarding path for the rest of a mutating
// run. It fails fast with ErrLocked instead of waiting. The returned
// function releases the lock.
func Lock(path string) (unlock func() error, err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating dataset directory: %w", err)
	}
	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring dataset lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", lock.Path(), ErrLocked)
	}
	return lock.Unlock, nil
}
