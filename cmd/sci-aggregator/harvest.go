// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/sci-aggregator/internal/harvest"
	"github.com/pdiddy/sci-aggregator/internal/store"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Fetch records from the configured providers",
	Long: `Harvest fans a topical query out to the configured providers in
parallel, respecting each provider's rate limit, and writes the results
into the local record database. A failing provider contributes zero
records without aborting the run.`,
	RunE: runHarvest,
}

func init() {
	harvestCmd.Flags().StringSlice("topics", nil, "topics to search for (comma-separated)")
	harvestCmd.Flags().Int("days", 0, "how many days back to search (default from config, 7)")
	harvestCmd.Flags().Int("max-per-source", 0, "maximum records per provider (default from config, 50)")
	harvestCmd.Flags().StringSlice("sources", nil, "restrict to these providers (default: all configured)")
	harvestCmd.Flags().Bool("sequential", false, "query providers one at a time instead of in parallel")
	harvestCmd.Flags().Int("workers", 0, "parallel worker bound (default 5)")
	harvestCmd.Flags().Bool("check", false, "probe provider connectivity instead of harvesting")
	harvestCmd.Flags().Bool("no-store", false, "skip writing results to the record database")

	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	topics, _ := cmd.Flags().GetStringSlice("topics")
	days, _ := cmd.Flags().GetInt("days")
	maxPerSource, _ := cmd.Flags().GetInt("max-per-source")
	sources, _ := cmd.Flags().GetStringSlice("sources")
	sequential, _ := cmd.Flags().GetBool("sequential")
	workers, _ := cmd.Flags().GetInt("workers")
	check, _ := cmd.Flags().GetBool("check")
	noStore, _ := cmd.Flags().GetBool("no-store")

	harvestCfg := harvestConfig()
	if days > 0 {
		harvestCfg.DateRangeDays = days
	}
	if maxPerSource > 0 {
		harvestCfg.MaxPerSource = maxPerSource
	}
	if workers > 0 {
		harvestCfg.MaxWorkers = workers
	}

	registry := harvest.NewRegistry(sourceConfigs(), harvestCfg.HTTPConfig, os.Stderr)
	if registry.Len() == 0 {
		return fmt.Errorf("no harvest sources configured")
	}

	var recordStore harvest.RecordStore
	if !noStore && !check {
		s, err := store.NewStore(storeConfig(cmd))
		if err != nil {
			return err
		}
		defer s.Close()
		recordStore = s
	}

	coordinator := harvest.NewCoordinator(registry, recordStore, harvestCfg)

	if check {
		status := coordinator.Check(context.Background(), os.Stdout)
		for _, ok := range status {
			if !ok {
				return fmt.Errorf("one or more providers failed the connectivity check")
			}
		}
		return nil
	}

	if len(topics) == 0 {
		return fmt.Errorf("provide at least one topic with --topics")
	}

	out := coordinator.HarvestAll(context.Background(), harvest.Options{
		Topics:        topics,
		DateRangeDays: harvestCfg.DateRangeDays,
		MaxPerSource:  harvestCfg.MaxPerSource,
		Sources:       sources,
		Parallel:      !sequential,
	}, os.Stdout)

	total := 0
	for _, records := range out.Records {
		total += len(records)
	}
	fmt.Printf("\n%d record(s) fetched from %d source(s)", total, len(out.Records))
	if out.StoreFailures > 0 {
		fmt.Printf(" (%d store write(s) failed)", out.StoreFailures)
	}
	fmt.Println()
	return nil
}
