// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph builds a weighted undirected knowledge graph over
// harvested records and answers ranked-neighbor queries. Nodes are
// records; edges accumulate evidence from shared topics, shared authors,
// and common origin. The graph is rebuilt from scratch on every Build and
// is owned by the caller; it is never persisted.
package graph

import (
	"sort"

	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// RelationKind names one category of evidence linking two records.
type RelationKind string

const (
	KindTopic  RelationKind = "topic"
	KindAuthor RelationKind = "author"
	KindSource RelationKind = "source"
)

// Node is a record's presence in the graph, carrying the cached display
// attributes the presentation layer reads without touching the store.
type Node struct {
	id int64

	RecordID    string  `json:"record_id" yaml:"record_id"`
	Title       string  `json:"title" yaml:"title"`
	Source      string  `json:"source" yaml:"source"`
	AuthorCount int     `json:"author_count" yaml:"author_count"`
	TopicCount  int     `json:"topic_count" yaml:"topic_count"`
	HasSummary  bool    `json:"has_summary" yaml:"has_summary"`
	Size        float64 `json:"size" yaml:"size"`
}

// ID implements gonum's graph.Node.
func (n *Node) ID() int64 { return n.id }

// Relation is an edge between two records. Weight is the additive sum of
// every component that fired for the pair; the kind set records which
// relation types contributed.
type Relation struct {
	from, to gonumgraph.Node

	weight        float64
	kinds         map[RelationKind]bool
	sharedTopics  []string
	sharedAuthors []string
}

// From implements gonum's graph.Edge.
func (r *Relation) From() gonumgraph.Node { return r.from }

// To implements gonum's graph.Edge.
func (r *Relation) To() gonumgraph.Node { return r.to }

// ReversedEdge implements gonum's graph.Edge.
func (r *Relation) ReversedEdge() gonumgraph.Edge {
	rr := *r
	rr.from, rr.to = r.to, r.from
	return &rr
}

// Weight implements gonum's graph.WeightedEdge.
func (r *Relation) Weight() float64 { return r.weight }

// Kinds returns the contributing relation kinds in stable order.
func (r *Relation) Kinds() []RelationKind {
	kinds := make([]RelationKind, 0, len(r.kinds))
	for k := range r.kinds {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// HasKind reports whether the given relation type contributed to this edge.
func (r *Relation) HasKind(k RelationKind) bool { return r.kinds[k] }

// SharedTopics returns the topics both records carry, in discovery order.
func (r *Relation) SharedTopics() []string { return r.sharedTopics }

// SharedAuthors returns the authors both records carry, in discovery order.
func (r *Relation) SharedAuthors() []string { return r.sharedAuthors }

// pairKey identifies an unordered record pair; a < b always.
type pairKey struct {
	a, b string
}

func makePairKey(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// Graph is the built knowledge graph. Structure (adjacency, degree,
// components) lives in a gonum weighted undirected graph; relation
// attributes are kept alongside, keyed by unordered record pair. Not safe
// for concurrent mutation: rebuilds must be serialized by the caller.
type Graph struct {
	wg        *simple.WeightedUndirectedGraph
	nodes     map[string]*Node
	relations map[pairKey]*Relation
}

func newGraph() *Graph {
	return &Graph{
		wg:        simple.NewWeightedUndirectedGraph(0, 0),
		nodes:     make(map[string]*Node),
		relations: make(map[pairKey]*Relation),
	}
}

// Node returns the node for a record id, if present.
func (g *Graph) Node(recordID string) (*Node, bool) {
	n, ok := g.nodes[recordID]
	return n, ok
}

// Relation returns the edge between two records, if one exists.
func (g *Graph) Relation(a, b string) (*Relation, bool) {
	r, ok := g.relations[makePairKey(a, b)]
	return r, ok
}

// NodeCount returns the number of records in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct record pairs with an edge.
func (g *Graph) EdgeCount() int { return len(g.relations) }

// nodeIDs returns all record ids in sorted order, for deterministic
// iteration in statistics and export.
func (g *Graph) nodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// pairKeys returns all edge keys in sorted order.
func (g *Graph) pairKeys() []pairKey {
	keys := make([]pairKey, 0, len(g.relations))
	for k := range g.relations {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].a != keys[j].a {
			return keys[i].a < keys[j].a
		}
		return keys[i].b < keys[j].b
	})
	return keys
}

// degree returns the number of edges incident to a record's node.
func (g *Graph) degree(n *Node) int {
	return g.wg.From(n.id).Len()
}
