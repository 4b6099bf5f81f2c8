// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"sort"
	"strings"

	"github.com/pdiddy/sci-aggregator/pkg/types"
)

// Builder constructs knowledge graphs from record lists. The weights are
// tunables with the defaults the rest of the system assumes; adjust only
// with matching changes in the presentation layer's scaling.
type Builder struct {
	// TopicWeight is the edge component added per shared topic.
	TopicWeight float64

	// ImportantBoost scales the topic component when the shared topic
	// matches one of ImportantTopics.
	ImportantBoost float64

	// AuthorWeight is the edge component added per shared author.
	AuthorWeight float64

	// SourceWeight is the weak component used for same-source edges.
	SourceWeight float64

	// SourceWindowHead and SourceLookahead bound the same-source pass:
	// only the first SourceWindowHead records of a source are examined,
	// each against its next SourceLookahead records.
	SourceWindowHead int
	SourceLookahead  int

	// ImportantTopics are matched case-insensitively as substrings of a
	// shared topic.
	ImportantTopics []string
}

// NewBuilder returns a Builder with the default weights.
func NewBuilder() *Builder {
	return &Builder{
		TopicWeight:      1.0,
		ImportantBoost:   1.5,
		AuthorWeight:     2.0,
		SourceWeight:     0.1,
		SourceWindowHead: 5,
		SourceLookahead:  2,
		ImportantTopics: []string{
			"bioinformatics", "machine learning", "deep learning",
			"computational biology", "data analysis",
		},
	}
}

// Build constructs a fresh graph from the records. Records are read only;
// a record without an id is excluded from the node set. For a fixed input
// slice the result is identical across runs: the topic and author passes
// iterate their inverted indexes in sorted key order, and the same-source
// pass follows input order.
func (b *Builder) Build(records []types.Record) *Graph {
	g := newGraph()

	b.addNodes(g, records)
	b.addTopicRelations(g, records)
	b.addAuthorRelations(g, records)
	b.addSourceRelations(g, records)

	// Materialize accumulated relations into the gonum structure.
	for _, key := range g.pairKeys() {
		g.wg.SetWeightedEdge(g.relations[key])
	}

	return g
}

func (b *Builder) addNodes(g *Graph, records []types.Record) {
	var next int64
	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		if _, ok := g.nodes[rec.ID]; ok {
			continue
		}
		n := &Node{
			id:          next,
			RecordID:    rec.ID,
			Title:       rec.Title,
			Source:      rec.Source,
			AuthorCount: len(rec.Authors),
			TopicCount:  len(rec.Topics),
			HasSummary:  rec.HasSummary(),
			Size:        nodeSize(rec),
		}
		next++
		g.nodes[rec.ID] = n
		g.wg.AddNode(n)
	}
}

// nodeSize scores a record's display size: base 10, plus 2 per author and
// 3 per topic, plus 5 when a summary is attached, capped at 50.
func nodeSize(rec types.Record) float64 {
	size := 10.0
	size += float64(len(rec.Authors)) * 2
	size += float64(len(rec.Topics)) * 3
	if rec.HasSummary() {
		size += 5
	}
	if size > 50 {
		size = 50
	}
	return size
}

// addTopicRelations connects every pair of records sharing a topic. Each
// shared topic contributes TopicWeight (boosted for important topics),
// accumulating on the pair's edge.
func (b *Builder) addTopicRelations(g *Graph, records []types.Record) {
	index := invertedIndex(records, func(rec types.Record) []string {
		return dedupe(rec.Topics)
	})

	for _, topic := range sortedKeys(index) {
		weight := b.TopicWeight
		if b.isImportant(topic) {
			weight *= b.ImportantBoost
		}
		forEachPair(index[topic], func(a, c string) {
			rel := b.relation(g, a, c)
			rel.weight += weight
			rel.kinds[KindTopic] = true
			rel.sharedTopics = append(rel.sharedTopics, topic)
		})
	}
}

// addAuthorRelations connects every pair of records sharing an author
// with a fixed AuthorWeight per shared author.
func (b *Builder) addAuthorRelations(g *Graph, records []types.Record) {
	index := invertedIndex(records, func(rec types.Record) []string {
		return dedupe(rec.Authors)
	})

	for _, author := range sortedKeys(index) {
		forEachPair(index[author], func(a, c string) {
			rel := b.relation(g, a, c)
			rel.weight += b.AuthorWeight
			rel.kinds[KindAuthor] = true
			rel.sharedAuthors = append(rel.sharedAuthors, author)
		})
	}
}

// addSourceRelations adds weak edges between records from the same
// provider. The pass is capped: only the first SourceWindowHead records
// of each source, each looking ahead SourceLookahead records, and it only
// creates edges where none exist. It never strengthens an existing edge.
func (b *Builder) addSourceRelations(g *Graph, records []types.Record) {
	bySource := make(map[string][]string)
	var order []string
	for _, rec := range records {
		if rec.ID == "" || rec.Source == "" {
			continue
		}
		if _, ok := bySource[rec.Source]; !ok {
			order = append(order, rec.Source)
		}
		bySource[rec.Source] = append(bySource[rec.Source], rec.ID)
	}

	for _, source := range order {
		ids := bySource[source]
		head := b.SourceWindowHead
		if len(ids) < head {
			head = len(ids)
		}
		for i := 0; i < head; i++ {
			for j := i + 1; j <= i+b.SourceLookahead && j < len(ids); j++ {
				if ids[i] == ids[j] {
					continue
				}
				key := makePairKey(ids[i], ids[j])
				if _, ok := g.relations[key]; ok {
					continue
				}
				rel := b.relation(g, ids[i], ids[j])
				rel.weight = b.SourceWeight
				rel.kinds[KindSource] = true
			}
		}
	}
}

// relation returns the accumulator edge for an unordered pair, creating
// it when the pair is seen for the first time.
func (b *Builder) relation(g *Graph, a, c string) *Relation {
	key := makePairKey(a, c)
	if rel, ok := g.relations[key]; ok {
		return rel
	}
	rel := &Relation{
		from:  g.nodes[key.a],
		to:    g.nodes[key.b],
		kinds: make(map[RelationKind]bool),
	}
	g.relations[key] = rel
	return rel
}

func (b *Builder) isImportant(topic string) bool {
	lower := strings.ToLower(topic)
	for _, important := range b.ImportantTopics {
		if strings.Contains(lower, important) {
			return true
		}
	}
	return false
}

// invertedIndex maps each key produced by keys() to the record ids
// carrying it, in input order. Records without an id are skipped.
func invertedIndex(records []types.Record, keys func(types.Record) []string) map[string][]string {
	index := make(map[string][]string)
	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		for _, key := range keys(rec) {
			if key == "" {
				continue
			}
			index[key] = append(index[key], rec.ID)
		}
	}
	return index
}

// forEachPair calls fn for every unordered pair of distinct ids.
func forEachPair(ids []string, fn func(a, b string)) {
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[i] == ids[j] {
				continue
			}
			fn(ids[i], ids[j])
		}
	}
}

// dedupe removes repeated values preserving first-occurrence order.
func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
