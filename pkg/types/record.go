// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the sci-aggregator
// pipeline: the harvested Record and the per-stage configuration structs.
package types

import "time"

// Record is a bibliographic item harvested from one scientific-metadata
// provider. The ID has the form "source:local-id" (e.g. "arxiv:2301.07041",
// "crossref:10.1234/example") and is immutable once assigned; it is the
// only join key the knowledge graph uses.
type Record struct {
	// ID uniquely identifies the record across all sources.
	ID string `json:"id" yaml:"id"`

	// Title is the item title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// Abstract is the item abstract or summary text from the provider.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Summary is a locally generated summary, filled by the summarizer
	// stage. Empty when no summary has been produced.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// Authors lists author names in provider order. May be empty.
	Authors []string `json:"authors" yaml:"authors"`

	// Topics lists subject terms (categories, MeSH headings, keywords).
	// Set-like; may be empty.
	Topics []string `json:"topics" yaml:"topics"`

	// Source names the provider that produced the record
	// (e.g. "arxiv", "crossref", "europepmc", "biorxiv", "medrxiv").
	Source string `json:"source" yaml:"source"`

	// URL points at the item's landing page.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Date is the publication or preprint date. Zero when unknown.
	Date time.Time `json:"date" yaml:"date"`

	// DOI is the digital object identifier, when the provider reports one.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`
}

// HasSummary reports whether a generated summary is attached. An abstract
// alone does not count.
func (r Record) HasSummary() bool {
	return r.Summary != ""
}
