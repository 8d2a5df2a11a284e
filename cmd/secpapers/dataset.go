// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"io/fs"

	"github.com/rs/zerolog"

	"github.com/pdiddy/secpapers/internal/dataset"
	"github.com/pdiddy/secpapers/pkg/types"
)

// loadDataset reads the configured dataset.
func loadDataset() (*types.Dataset, error) {
	return dataset.Load(cfg.Dataset.Path)
}

// loadDatasetOrNew reads the configured dataset, starting an empty one when
// the file does not exist yet.
func loadDatasetOrNew(log *zerolog.Logger) (*types.Dataset, error) {
	ds, err := dataset.Load(cfg.Dataset.Path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Info().Str("path", cfg.Dataset.Path).Msg("dataset does not exist, starting empty")
		return dataset.New(nil), nil
	}
	return ds, err
}

// withDatasetLock runs fn while holding the dataset lock.
func withDatasetLock(log *zerolog.Logger, fn func() error) (err error) {
	unlock, err := dataset.Lock(cfg.Dataset.Path)
	if err != nil {
		return err
	}
	defer func() {
		if uerr := unlock(); uerr != nil {
			log.Warn().Err(uerr).Msg("releasing dataset lock")
		}
	}()
	return fn()
}

// saveDataset writes ds to the configured path and logs the result.
func saveDataset(log *zerolog.Logger, ds *types.Dataset) error {
	if err := dataset.Save(cfg.Dataset.Path, ds); err != nil {
		return err
	}
	log.Info().Str("path", cfg.Dataset.Path).Int("papers", len(ds.Papers)).Msg("saved dataset")
	return nil
}
