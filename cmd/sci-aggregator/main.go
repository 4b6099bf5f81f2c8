// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the sci-aggregator CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/sci-aggregator/internal/secrets"
	"github.com/pdiddy/sci-aggregator/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "sci-aggregator/0.1"
)

// loadedSecrets holds provider credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, else the named secret, else "".
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the sci-aggregator CLI.
var rootCmd = &cobra.Command{
	Use:   "sci-aggregator",
	Short: "Aggregate scientific metadata and explore the record graph",
	Long: `sci-aggregator harvests records from scientific-metadata providers
(arXiv, Crossref, Europe PMC, bioRxiv, medRxiv) under per-provider rate
limits, stores them locally, and derives a weighted relationship graph
linking records that share topics, authors, or origin.

Each stage is a subcommand: harvest fetches records, store inspects the
local database, graph builds and summarizes the knowledge graph, and
related looks up a record's ranked neighbors.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
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
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./sci-aggregator.yaml or ~/.config/sci-aggregator/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "data", "directory holding the record database")
}

func initConfig() {
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("sci-aggregator")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "sci-aggregator"))
		}
	}

	viper.SetEnvPrefix("SCI_AGGREGATOR")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// sourceConfigs reads the provider registry from configuration, falling
// back to the default provider set when none is configured. Provider
// emails fall back to loaded secrets.
func sourceConfigs() map[string]types.SourceConfig {
	cfgs := map[string]types.SourceConfig{}
	if err := viper.UnmarshalKey("sources", &cfgs); err != nil || len(cfgs) == 0 {
		cfgs = map[string]types.SourceConfig{
			"arxiv":     {RateLimit: 20},
			"crossref":  {RateLimit: 50},
			"europepmc": {RateLimit: 60},
			"biorxiv":   {RateLimit: 30},
			"medrxiv":   {RateLimit: 30},
		}
	}

	if c, ok := cfgs["crossref"]; ok {
		c.Email = secretDefault("crossref-email", c.Email)
		cfgs["crossref"] = c
	}
	if c, ok := cfgs["europepmc"]; ok {
		c.Email = secretDefault("europepmc-email", c.Email)
		cfgs["europepmc"] = c
	}
	return cfgs
}

func httpConfig() types.HTTPConfig {
	timeout := viper.GetDuration("harvest.timeout")
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := viper.GetString("harvest.user_agent")
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return types.HTTPConfig{Timeout: timeout, UserAgent: userAgent}
}

// harvestConfig reads the harvest stage settings from configuration,
// falling back to the stage defaults. Flags override individual fields in
// runHarvest.
func harvestConfig() types.HarvestConfig {
	cfg := types.HarvestConfig{
		HTTPConfig:      httpConfig(),
		MaxWorkers:      viper.GetInt("harvest.max_workers"),
		SequentialDelay: viper.GetDuration("harvest.sequential_delay"),
		DateRangeDays:   viper.GetInt("harvest.date_range_days"),
		MaxPerSource:    viper.GetInt("harvest.max_per_source"),
	}
	if cfg.SequentialDelay <= 0 {
		cfg.SequentialDelay = 1 * time.Second
	}
	if cfg.DateRangeDays <= 0 {
		cfg.DateRangeDays = 7
	}
	if cfg.MaxPerSource <= 0 {
		cfg.MaxPerSource = 50
	}
	return cfg
}

func graphConfig() types.GraphConfig {
	return types.GraphConfig{
		ExportDir: viper.GetString("graph.export_dir"),
	}
}

func storeConfig(cmd *cobra.Command) types.StoreConfig {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = "data"
	}
	return types.StoreConfig{
		DataDir:    dataDir,
		MaxResults: viper.GetInt("store.max_results"),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
