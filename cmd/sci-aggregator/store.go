// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/sci-aggregator/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect the local record database",
}

var storeRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently harvested records",
	RunE:  runStoreRecent,
}

var storeGetCmd = &cobra.Command{
	Use:   "get [record-id]",
	Short: "Show one record",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreGet,
}

var storeSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show record counts per source",
	RunE:  runStoreSummary,
}

func init() {
	storeRecentCmd.Flags().Int("days", 7, "include records from the last N days")
	storeRecentCmd.Flags().Int("limit", 0, "maximum records to list (0 = store default)")

	storeCmd.AddCommand(storeRecentCmd)
	storeCmd.AddCommand(storeGetCmd)
	storeCmd.AddCommand(storeSummaryCmd)
	rootCmd.AddCommand(storeCmd)
}

func runStoreRecent(cmd *cobra.Command, args []string) error {
	days, _ := cmd.Flags().GetInt("days")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := store.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := s.RecentSince(context.Background(), days, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No records found.")
		return nil
	}

	fmt.Printf("%-30s  %-50s  %-10s  %s\n", "ID", "Title", "Source", "Date")
	fmt.Println(strings.Repeat("-", 104))
	for _, rec := range records {
		title := rec.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		id := rec.ID
		if len(id) > 30 {
			id = id[:27] + "..."
		}
		date := ""
		if !rec.Date.IsZero() {
			date = rec.Date.Format("2006-01-02")
		}
		fmt.Printf("%-30s  %-50s  %-10s  %s\n", id, title, rec.Source, date)
	}
	fmt.Printf("\n%d record(s)\n", len(records))
	return nil
}

func runStoreGet(cmd *cobra.Command, args []string) error {
	s, err := store.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	rec, found, err := s.Get(context.Background(), args[0])
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("record %s not found", args[0])
	}

	fmt.Printf("id:       %s\n", rec.ID)
	fmt.Printf("title:    %s\n", rec.Title)
	fmt.Printf("source:   %s\n", rec.Source)
	if len(rec.Authors) > 0 {
		fmt.Printf("authors:  %s\n", strings.Join(rec.Authors, "; "))
	}
	if len(rec.Topics) > 0 {
		fmt.Printf("topics:   %s\n", strings.Join(rec.Topics, "; "))
	}
	if !rec.Date.IsZero() {
		fmt.Printf("date:     %s\n", rec.Date.Format("2006-01-02"))
	}
	if rec.DOI != "" {
		fmt.Printf("doi:      %s\n", rec.DOI)
	}
	if rec.URL != "" {
		fmt.Printf("url:      %s\n", rec.URL)
	}
	if rec.Abstract != "" {
		fmt.Printf("abstract: %s\n", rec.Abstract)
	}
	return nil
}

func runStoreSummary(cmd *cobra.Command, args []string) error {
	s, err := store.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	total, err := s.Count(ctx)
	if err != nil {
		return err
	}
	summary, err := s.SourceSummary(ctx)
	if err != nil {
		return err
	}

	sources := make([]string, 0, len(summary))
	for source := range summary {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	for _, source := range sources {
		fmt.Printf("%-12s %d\n", source, summary[source])
	}
	fmt.Printf("%-12s %d\n", "total", total)
	return nil
}
