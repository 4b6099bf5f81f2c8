// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pdiddy/sci-aggregator/internal/graph"
	"github.com/pdiddy/sci-aggregator/internal/store"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Build and inspect the knowledge graph",
	Long: `Graph rebuilds the knowledge graph from the stored records: nodes are
records, edges link records sharing topics, authors, or origin, weighted
by how much evidence connects them.`,
}

var graphStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print knowledge-graph statistics",
	RunE:  runGraphStats,
}

var graphExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the knowledge graph to YAML or JSON",
	RunE:  runGraphExport,
}

func init() {
	graphCmd.PersistentFlags().Int("days", 365, "include records from the last N days")
	graphCmd.PersistentFlags().Int("limit", 100, "maximum records to include")

	graphExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	graphExportCmd.Flags().String("out", "", "output file (default: graph.<format> under the configured export directory, else stdout)")

	graphCmd.AddCommand(graphStatsCmd)
	graphCmd.AddCommand(graphExportCmd)
	rootCmd.AddCommand(graphCmd)
}

// buildGraph loads the recency window from the store and builds a fresh
// graph over it.
func buildGraph(cmd *cobra.Command) (*graph.Graph, error) {
	days, _ := cmd.Flags().GetInt("days")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := store.NewStore(storeConfig(cmd))
	if err != nil {
		return nil, err
	}
	defer s.Close()

	records, err := s.RecentSince(context.Background(), days, limit)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "warning: no records in the selected window")
	}

	return graph.NewBuilder().Build(records), nil
}

func runGraphStats(cmd *cobra.Command, args []string) error {
	g, err := buildGraph(cmd)
	if err != nil {
		return err
	}

	stats := g.Statistics()
	fmt.Printf("nodes:      %d\n", stats.Nodes)
	fmt.Printf("edges:      %d\n", stats.Edges)
	fmt.Printf("density:    %.4f\n", stats.Density)
	fmt.Printf("components: %d\n", stats.Components)

	if len(stats.EdgeKinds) > 0 {
		kinds := make([]string, 0, len(stats.EdgeKinds))
		for k := range stats.EdgeKinds {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		fmt.Println("edge kinds:")
		for _, k := range kinds {
			fmt.Printf("  %-8s %d\n", k, stats.EdgeKinds[graph.RelationKind(k)])
		}
	}

	if len(stats.TopConnected) > 0 {
		fmt.Println("most connected:")
		for _, n := range stats.TopConnected {
			title := n.Title
			if len(title) > 60 {
				title = title[:57] + "..."
			}
			fmt.Printf("  %-3d %-60s  %s\n", n.Connections, title, n.Source)
		}
	}
	return nil
}

func runGraphExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")

	g, err := buildGraph(cmd)
	if err != nil {
		return err
	}

	// Without --out, a configured export directory receives the file;
	// otherwise the export goes to stdout.
	if outPath == "" {
		if dir := graphConfig().ExportDir; dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", dir, err)
			}
			outPath = filepath.Join(dir, "graph."+format)
		}
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outPath, err)
		}
		defer f.Close()
		out = f
		fmt.Fprintln(os.Stderr, "writing graph export to", outPath)
	}

	switch format {
	case "yaml", "":
		return g.ExportYAML(out)
	case "json":
		return g.ExportJSON(out)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
}
