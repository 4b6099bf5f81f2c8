// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph/topo"
)

// ConnectedNode describes one of the most-connected records.
type ConnectedNode struct {
	RecordID    string `json:"record_id" yaml:"record_id"`
	Title       string `json:"title" yaml:"title"`
	Source      string `json:"source" yaml:"source"`
	Connections int    `json:"connections" yaml:"connections"`
}

// Stats summarizes the built graph.
type Stats struct {
	Nodes      int                  `json:"nodes" yaml:"nodes"`
	Edges      int                  `json:"edges" yaml:"edges"`
	Density    float64              `json:"density" yaml:"density"`
	Components int                  `json:"components" yaml:"components"`
	EdgeKinds  map[RelationKind]int `json:"edge_kinds" yaml:"edge_kinds"`

	// TopConnected lists the five highest-degree records, ties broken
	// by record id.
	TopConnected []ConnectedNode `json:"top_connected" yaml:"top_connected"`
}

const topConnectedCount = 5

// Statistics computes node/edge counts, density, connected components,
// the per-kind edge histogram, and the most-connected records.
func (g *Graph) Statistics() Stats {
	stats := Stats{
		Nodes:     len(g.nodes),
		Edges:     len(g.relations),
		EdgeKinds: make(map[RelationKind]int),
	}
	if stats.Nodes == 0 {
		return stats
	}

	if stats.Nodes > 1 {
		possible := float64(stats.Nodes) * float64(stats.Nodes-1) / 2
		stats.Density = float64(stats.Edges) / possible
	}

	stats.Components = len(topo.ConnectedComponents(g.wg))

	for _, rel := range g.relations {
		for kind := range rel.kinds {
			stats.EdgeKinds[kind]++
		}
	}

	ids := g.nodeIDs()
	sort.SliceStable(ids, func(i, j int) bool {
		di, dj := g.degree(g.nodes[ids[i]]), g.degree(g.nodes[ids[j]])
		if di != dj {
			return di > dj
		}
		return ids[i] < ids[j]
	})
	for _, id := range ids {
		if len(stats.TopConnected) == topConnectedCount {
			break
		}
		n := g.nodes[id]
		stats.TopConnected = append(stats.TopConnected, ConnectedNode{
			RecordID:    n.RecordID,
			Title:       n.Title,
			Source:      n.Source,
			Connections: g.degree(n),
		})
	}

	return stats
}
