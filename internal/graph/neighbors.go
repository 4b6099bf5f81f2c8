// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import "sort"

// NeighborInfo describes one related record with the evidence linking it
// to the queried record.
type NeighborInfo struct {
	RecordID      string         `json:"record_id" yaml:"record_id"`
	Title         string         `json:"title" yaml:"title"`
	Source        string         `json:"source" yaml:"source"`
	Weight        float64        `json:"weight" yaml:"weight"`
	Kinds         []RelationKind `json:"kinds" yaml:"kinds"`
	SharedTopics  []string       `json:"shared_topics,omitempty" yaml:"shared_topics,omitempty"`
	SharedAuthors []string       `json:"shared_authors,omitempty" yaml:"shared_authors,omitempty"`
}

// RelatedRecords returns the graph neighbors of a record ranked by edge
// weight, ties broken by record id for determinism. An unknown id yields
// an empty result. maxResults caps the list; zero or negative returns all
// neighbors.
func (g *Graph) RelatedRecords(id string, maxResults int) []NeighborInfo {
	node, ok := g.nodes[id]
	if !ok {
		return nil
	}

	var neighbors []NeighborInfo
	it := g.wg.From(node.id)
	for it.Next() {
		other, ok := it.Node().(*Node)
		if !ok {
			continue
		}
		rel, ok := g.Relation(id, other.RecordID)
		if !ok {
			continue
		}
		neighbors = append(neighbors, NeighborInfo{
			RecordID:      other.RecordID,
			Title:         other.Title,
			Source:        other.Source,
			Weight:        rel.Weight(),
			Kinds:         rel.Kinds(),
			SharedTopics:  rel.SharedTopics(),
			SharedAuthors: rel.SharedAuthors(),
		})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Weight != neighbors[j].Weight {
			return neighbors[i].Weight > neighbors[j].Weight
		}
		return neighbors[i].RecordID < neighbors[j].RecordID
	})

	if maxResults > 0 && len(neighbors) > maxResults {
		neighbors = neighbors[:maxResults]
	}
	return neighbors
}
