// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/pdiddy/secpapers/internal/cache"
	"github.com/pdiddy/secpapers/internal/dataset"
	"github.com/pdiddy/secpapers/internal/dblp"
	"github.com/pdiddy/secpapers/internal/dedup"
	"github.com/pdiddy/secpapers/internal/httputil"
	"github.com/pdiddy/secpapers/internal/source"
	"github.com/pdiddy/secpapers/pkg/types"
)

const (
	defaultDatasetPath = dataset.DefaultPath
	defaultCacheDir    = ".cache/dblp"
)

// configErr is the result of reading the config file in initConfig.
var configErr error

// setDefaults registers the default for every configuration key so that
// environment variables are picked up by AutomaticEnv.
func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "auto")

	viper.SetDefault("dataset.path", defaultDatasetPath)

	viper.SetDefault("source.readme_url", source.ReadmeURL)
	viper.SetDefault("source.timeout", httputil.DefaultTimeout)
	viper.SetDefault("source.user_agent", httputil.DefaultUserAgent)
	viper.SetDefault("source.github_token", "")

	viper.SetDefault("dedup.same_group_threshold", dedup.DefaultSameGroupThreshold)
	viper.SetDefault("dedup.cross_year_threshold", dedup.DefaultCrossYearThreshold)

	viper.SetDefault("verify.api_base", dblp.APIBase)
	viper.SetDefault("verify.timeout", httputil.DefaultTimeout)
	viper.SetDefault("verify.user_agent", httputil.DefaultUserAgent)
	viper.SetDefault("verify.request_delay", dblp.DefaultRequestDelay)
	viper.SetDefault("verify.max_hits", dblp.DefaultMaxHits)
	viper.SetDefault("verify.title_threshold", dblp.DefaultTitleThreshold)
	viper.SetDefault("verify.author_threshold", dblp.DefaultAuthorThreshold)

	viper.SetDefault("cache.dir", defaultCacheDir)
	viper.SetDefault("cache.ttl", cache.DefaultTTL)
}

// loadConfig resolves flags, environment, config file and defaults into a
// Config, in that order of precedence.
func loadConfig() (types.Config, error) {
	if configErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(configErr, &notFound) {
			return types.Config{}, fmt.Errorf("reading config file: %w", configErr)
		}
	}

	c := types.Config{
		Log: types.LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		},
		Dataset: types.DatasetConfig{
			Path: viper.GetString("dataset.path"),
		},
		Source: types.SourceConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("source.timeout"),
				UserAgent: viper.GetString("source.user_agent"),
			},
			ReadmeURL:   viper.GetString("source.readme_url"),
			GitHubToken: viper.GetString("source.github_token"),
		},
		Dedup: types.DedupConfig{
			SameGroupThreshold: viper.GetFloat64("dedup.same_group_threshold"),
			CrossYearThreshold: viper.GetFloat64("dedup.cross_year_threshold"),
		},
		Verify: types.VerifyConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("verify.timeout"),
				UserAgent: viper.GetString("verify.user_agent"),
			},
			APIBase:         viper.GetString("verify.api_base"),
			RequestDelay:    viper.GetDuration("verify.request_delay"),
			MaxHits:         viper.GetInt("verify.max_hits"),
			TitleThreshold:  viper.GetFloat64("verify.title_threshold"),
			AuthorThreshold: viper.GetFloat64("verify.author_threshold"),
		},
		Cache: types.CacheConfig{
			Dir: viper.GetString("cache.dir"),
			TTL: viper.GetDuration("cache.ttl"),
		},
	}
	return c, validateConfig(c)
}

func validateConfig(c types.Config) error {
	var errs []error
	thresholds := []struct {
		name  string
		value float64
	}{
		{"dedup.same_group_threshold", c.Dedup.SameGroupThreshold},
		{"dedup.cross_year_threshold", c.Dedup.CrossYearThreshold},
		{"verify.title_threshold", c.Verify.TitleThreshold},
		{"verify.author_threshold", c.Verify.AuthorThreshold},
	}
	for _, th := range thresholds {
		if th.value < 0 || th.value > 1 {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 1, got %g", th.name, th.value))
		}
	}
	if c.Dataset.Path == "" {
		errs = append(errs, errors.New("dataset.path must not be empty"))
	}
	if c.Verify.RequestDelay < 0 {
		errs = append(errs, fmt.Errorf("verify.request_delay must not be negative, got %s", c.Verify.RequestDelay))
	}
	return errors.Join(errs...)
}
