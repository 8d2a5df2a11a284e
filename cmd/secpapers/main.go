// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the secpapers CLI, which builds,
// audits, verifies and exports the dataset of award-winning papers from
// the top four security conferences.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/secpapers/internal/observability"
	"github.com/pdiddy/secpapers/internal/secrets"
	"github.com/pdiddy/secpapers/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// cfg is the resolved configuration for the running command.
var cfg types.Config

// secretDefault returns fallback when set, else the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return loadedSecrets[key]
}

// rootCmd is the base command for the secpapers CLI.
var rootCmd = &cobra.Command{
	Use:   "secpapers",
	Short: "Maintain the dataset of award-winning security papers",
	Long: `secpapers maintains a JSON dataset of best and distinguished papers from
IEEE S&P, ACM CCS, USENIX Security and NDSS.

generate rebuilds the dataset from the upstream README, add ingests curated
YAML submissions, check audits the dataset, verify cross-checks it against
DBLP, and export renders it as BibTeX or YAML. Logs go to stderr; reports go
to stdout.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = loadConfig(); err != nil {
			return err
		}

		logger, _ := observability.WithRun(observability.NewLogger(cfg.Log, os.Stderr), cmd.Name())
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug().Str("path", used).Msg("using config file")
		}

		s, err := secrets.Load(secrets.DefaultDir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug().Strs("keys", keys).Msg("loaded secrets")
		}
		cfg.Source.GitHubToken = secretDefault(secrets.GitHubToken, cfg.Source.GitHubToken)

		cmd.SetContext(logger.WithContext(cmd.Context()))
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./secpapers.yaml or ~/.config/secpapers/secpapers.yaml)")
	pf.String("dataset", defaultDatasetPath, "path to the JSON dataset")
	pf.String("log-level", "info", "log level: trace, debug, info, warn, error, disabled")
	pf.String("log-format", observability.FormatAuto, "log format: json, console, auto")

	viper.BindPFlag("dataset.path", pf.Lookup("dataset"))
	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("log.format", pf.Lookup("log-format"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("secpapers")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "secpapers"))
		}
	}

	bindEnv()
	setDefaults()

	// A missing config file is fine; loadConfig rejects any other error.
	configErr = viper.ReadInConfig()
}

// bindEnv maps config keys to SECPAPERS_* variables, e.g. cache.dir to
// SECPAPERS_CACHE_DIR.
func bindEnv() {
	viper.SetEnvPrefix("SECPAPERS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

// commandLogger returns the run logger attached in PersistentPreRunE.
func commandLogger(cmd *cobra.Command) *zerolog.Logger {
	return zerolog.Ctx(cmd.Context())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		logFailure(os.Stderr, err)
		os.Exit(1)
	}
}

// logFailure reports the error that ended the run.
func logFailure(w io.Writer, err error) {
	logger := observability.NewLogger(cfg.Log, w)
	logger.Error().Err(err).Msg("command failed")
}
