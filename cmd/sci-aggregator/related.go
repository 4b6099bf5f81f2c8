// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var relatedCmd = &cobra.Command{
	Use:   "related [record-id]",
	Short: "Look up a record's related records",
	Long: `Related rebuilds the knowledge graph from the stored records and
prints the neighbors of the given record ranked by connection strength,
with the shared topics and authors that link them.`,
	Args: cobra.ExactArgs(1),
	RunE: runRelated,
}

func init() {
	relatedCmd.Flags().Int("days", 365, "include records from the last N days")
	relatedCmd.Flags().Int("limit", 100, "maximum records to include in the graph")
	relatedCmd.Flags().Int("max-results", 5, "maximum neighbors to return")
	relatedCmd.Flags().Bool("json", false, "output neighbors as JSON")

	rootCmd.AddCommand(relatedCmd)
}

func runRelated(cmd *cobra.Command, args []string) error {
	recordID := args[0]
	maxResults, _ := cmd.Flags().GetInt("max-results")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	g, err := buildGraph(cmd)
	if err != nil {
		return err
	}

	neighbors := g.RelatedRecords(recordID, maxResults)

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(neighbors)
	}

	if len(neighbors) == 0 {
		fmt.Println("No related records found.")
		return nil
	}

	fmt.Printf("%-4s  %-30s  %-40s  %-6s  %s\n",
		"Rank", "Record", "Title", "Weight", "Evidence")
	fmt.Println(strings.Repeat("-", 100))

	for i, n := range neighbors {
		title := n.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		id := n.RecordID
		if len(id) > 30 {
			id = id[:27] + "..."
		}

		var evidence []string
		for _, k := range n.Kinds {
			evidence = append(evidence, string(k))
		}
		fmt.Printf("%-4d  %-30s  %-40s  %-6.2f  %s\n",
			i+1, id, title, n.Weight, strings.Join(evidence, ","))

		if len(n.SharedTopics) > 0 {
			fmt.Printf("      shared topics:  %s\n", strings.Join(n.SharedTopics, "; "))
		}
		if len(n.SharedAuthors) > 0 {
			fmt.Printf("      shared authors: %s\n", strings.Join(n.SharedAuthors, "; "))
		}
	}
	return nil
}
