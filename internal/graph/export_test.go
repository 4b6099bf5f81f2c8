package graph

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/sci-aggregator/pkg/types"
)

func exportFixture() *Graph {
	records := []types.Record{
		{ID: "b", Title: "Second", Source: "arxiv", Topics: []string{"t1"}},
		{ID: "a", Title: "First", Source: "crossref", Topics: []string{"t1"}},
	}
	return NewBuilder().Build(records)
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := exportFixture().ExportJSON(&buf); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	var doc struct {
		Nodes []struct {
			RecordID string  `json:"record_id"`
			Size     float64 `json:"size"`
		} `json:"nodes"`
		Edges []struct {
			A      string  `json:"a"`
			B      string  `json:"b"`
			Weight float64 `json:"weight"`
		} `json:"edges"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(doc.Nodes) != 2 || len(doc.Edges) != 1 {
		t.Fatalf("exported %d node(s), %d edge(s), want 2 and 1", len(doc.Nodes), len(doc.Edges))
	}
	// Nodes arrive in record-id order regardless of input order.
	if doc.Nodes[0].RecordID != "a" || doc.Nodes[1].RecordID != "b" {
		t.Errorf("node order = [%q, %q], want sorted", doc.Nodes[0].RecordID, doc.Nodes[1].RecordID)
	}
	// Edge endpoints are normalized with a < b.
	if doc.Edges[0].A != "a" || doc.Edges[0].B != "b" {
		t.Errorf("edge = %q-%q, want a-b", doc.Edges[0].A, doc.Edges[0].B)
	}
	if doc.Edges[0].Weight != 1.0 {
		t.Errorf("edge weight = %v, want 1.0", doc.Edges[0].Weight)
	}
}

func TestExportYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := exportFixture().ExportYAML(&buf); err != nil {
		t.Fatalf("ExportYAML: %v", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid YAML output: %v", err)
	}
	if _, ok := doc["nodes"]; !ok {
		t.Error("YAML output missing nodes")
	}
	if _, ok := doc["edges"]; !ok {
		t.Error("YAML output missing edges")
	}
	if !strings.Contains(buf.String(), "record_id: a") {
		t.Errorf("output = %q, should list record ids", buf.String())
	}
}
