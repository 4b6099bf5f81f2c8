// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harvest queries scientific-metadata providers under per-provider
// rate limits and aggregates the results into a source→records mapping.
// Each provider (arXiv, Crossref, Europe PMC, bioRxiv/medRxiv) implements
// the Harvester interface per the Strategy pattern; the Coordinator fans a
// query out across adapters with bounded concurrency and isolates
// per-source failures.
package harvest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/pdiddy/sci-aggregator/pkg/types"
)

// Harvester fetches records from a single provider. Implementations own
// private rate-limiter state and must call it before every outbound
// request; a Harvester instance therefore assumes a single logical caller
// at a time.
type Harvester interface {
	Name() string
	Search(ctx context.Context, topics []string, dateRangeDays, maxResults int) ([]types.Record, error)
}

// Registry maps source names to their adapter instances. It is built once
// at startup and read-only afterwards; exactly one instance exists per
// source.
type Registry struct {
	byName map[string]Harvester
	names  []string
}

// NewRegistry constructs adapters for every configured provider. Provider
// names the package does not know are reported on w and skipped. Adapters
// are registered in sorted name order so harvest runs are reproducible.
func NewRegistry(cfgs map[string]types.SourceConfig, httpCfg types.HTTPConfig, w io.Writer) *Registry {
	client := &http.Client{Timeout: httpCfg.Timeout}

	names := make([]string, 0, len(cfgs))
	for name := range cfgs {
		names = append(names, name)
	}
	sort.Strings(names)

	r := &Registry{byName: make(map[string]Harvester)}
	for _, name := range names {
		cfg := cfgs[name]
		var h Harvester
		switch name {
		case "arxiv":
			h = NewArxiv(cfg, httpCfg, client)
		case "crossref":
			h = NewCrossref(cfg, httpCfg, client)
		case "europepmc":
			h = NewEuropePMC(cfg, httpCfg, client)
		case "biorxiv", "medrxiv":
			h = NewBioRxiv(name, cfg, httpCfg, client)
		default:
			fmt.Fprintf(w, "warning: unknown source %q in configuration, skipping\n", name)
			continue
		}
		r.Register(h)
	}
	return r
}

// Register adds an adapter under its own name, replacing any previous
// registration for that name.
func (r *Registry) Register(h Harvester) {
	if _, ok := r.byName[h.Name()]; !ok {
		r.names = append(r.names, h.Name())
	}
	r.byName[h.Name()] = h
}

// Get returns the adapter registered under name, or nil.
func (r *Registry) Get(name string) Harvester {
	return r.byName[name]
}

// Names returns the registered source names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int {
	return len(r.byName)
}

// recordID builds the canonical record identifier "source:local-id".
func recordID(source, localID string) string {
	return source + ":" + localID
}

// cleanText collapses whitespace and strips control characters that
// providers occasionally embed in titles and abstracts.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.Join(strings.Fields(s), " ")
}
