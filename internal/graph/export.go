// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// exportEdge is the serialized form of a Relation.
type exportEdge struct {
	A             string         `json:"a" yaml:"a"`
	B             string         `json:"b" yaml:"b"`
	Weight        float64        `json:"weight" yaml:"weight"`
	Kinds         []RelationKind `json:"kinds" yaml:"kinds"`
	SharedTopics  []string       `json:"shared_topics,omitempty" yaml:"shared_topics,omitempty"`
	SharedAuthors []string       `json:"shared_authors,omitempty" yaml:"shared_authors,omitempty"`
}

// exportDoc is the serialized graph: node and edge lists in sorted order.
type exportDoc struct {
	Nodes []*Node      `json:"nodes" yaml:"nodes"`
	Edges []exportEdge `json:"edges" yaml:"edges"`
}

func (g *Graph) exportDoc() exportDoc {
	doc := exportDoc{
		Nodes: make([]*Node, 0, len(g.nodes)),
		Edges: make([]exportEdge, 0, len(g.relations)),
	}
	for _, id := range g.nodeIDs() {
		doc.Nodes = append(doc.Nodes, g.nodes[id])
	}
	for _, key := range g.pairKeys() {
		rel := g.relations[key]
		doc.Edges = append(doc.Edges, exportEdge{
			A:             key.a,
			B:             key.b,
			Weight:        rel.Weight(),
			Kinds:         rel.Kinds(),
			SharedTopics:  rel.SharedTopics(),
			SharedAuthors: rel.SharedAuthors(),
		})
	}
	return doc
}

// ExportYAML writes the graph's node and edge lists as YAML.
func (g *Graph) ExportYAML(w io.Writer) error {
	data, err := yaml.Marshal(g.exportDoc())
	if err != nil {
		return fmt.Errorf("marshaling graph: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ExportJSON writes the graph's node and edge lists as indented JSON.
func (g *Graph) ExportJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g.exportDoc())
}
