// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/pdiddy/sci-aggregator/pkg/types"
)

const (
	defaultMaxWorkers      = 5
	defaultSequentialDelay = 1 * time.Second
)

// RecordStore is the persistence surface the coordinator writes harvested
// records into.
type RecordStore interface {
	Put(ctx context.Context, rec types.Record) error
}

// Options holds the parameters of one harvest run.
type Options struct {
	// Topics are the search terms fanned out to every adapter.
	Topics []string

	// DateRangeDays is how far back to search.
	DateRangeDays int

	// MaxPerSource caps the records fetched from each provider.
	MaxPerSource int

	// Sources selects a subset of registered adapters by name. Empty
	// selects all. Names with no registration are silently absent from
	// the results.
	Sources []string

	// Parallel dispatches adapters to a bounded worker pool instead of
	// calling them one at a time.
	Parallel bool
}

// Output holds the results of a harvest run. Records reflects fetch
// outcome per source; Saved and StoreFailures reflect persistence, which
// never removes a record from the map.
type Output struct {
	Records       map[string][]types.Record
	Saved         int
	StoreFailures int
	SourceErrors  []string
}

// Coordinator fans a query out across the registered adapters and writes
// the results into the record store. Construct with NewCoordinator; the
// registry and store are injected, not package state.
type Coordinator struct {
	registry        *Registry
	store           RecordStore
	maxWorkers      int
	sequentialDelay time.Duration
}

// NewCoordinator returns a coordinator over registry, persisting into
// store. Store may be nil when the caller only wants in-memory results.
func NewCoordinator(registry *Registry, store RecordStore, cfg types.HarvestConfig) *Coordinator {
	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}
	delay := cfg.SequentialDelay
	if delay <= 0 {
		delay = defaultSequentialDelay
	}
	return &Coordinator{
		registry:        registry,
		store:           store,
		maxWorkers:      maxWorkers,
		sequentialDelay: delay,
	}
}

// HarvestAll queries the selected adapters and returns records grouped by
// source. A failing adapter is reported on w and contributes an empty
// slice; it never aborts the run or delays collection from other sources.
// The call blocks until every dispatched adapter has completed or failed.
func (c *Coordinator) HarvestAll(ctx context.Context, opts Options, w io.Writer) Output {
	out := Output{Records: map[string][]types.Record{}}

	selected := c.selectAdapters(opts.Sources)
	if len(selected) == 0 {
		fmt.Fprintln(w, "warning: no harvest sources available")
		return out
	}

	names := make([]string, len(selected))
	for i, h := range selected {
		names[i] = h.Name()
	}
	fmt.Fprintf(w, "harvesting %d source(s): %v\n", len(selected), names)

	if opts.Parallel {
		c.harvestParallel(ctx, selected, opts, &out, w)
	} else {
		c.harvestSequential(ctx, selected, opts, &out, w)
	}

	c.persist(ctx, &out, w)
	return out
}

// selectAdapters resolves the requested source names against the registry,
// preserving registration order. Empty means all.
func (c *Coordinator) selectAdapters(sources []string) []Harvester {
	var selected []Harvester
	if len(sources) == 0 {
		for _, name := range c.registry.Names() {
			selected = append(selected, c.registry.Get(name))
		}
		return selected
	}

	requested := make(map[string]bool, len(sources))
	for _, name := range sources {
		requested[name] = true
	}
	for _, name := range c.registry.Names() {
		if requested[name] {
			selected = append(selected, c.registry.Get(name))
		}
	}
	return selected
}

type sourceResult struct {
	name    string
	records []types.Record
	elapsed time.Duration
	err     error
}

// harvestParallel dispatches the adapters to a worker pool bounded at
// min(len(adapters), maxWorkers) and collects results in completion order.
// Workers only search; the aggregation map and the progress writer are
// touched only here, by the coordinator goroutine.
func (c *Coordinator) harvestParallel(ctx context.Context, adapters []Harvester, opts Options, out *Output, w io.Writer) {
	workers := c.maxWorkers
	if len(adapters) < workers {
		workers = len(adapters)
	}

	jobs := make(chan Harvester, len(adapters))
	results := make(chan sourceResult, len(adapters))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for h := range jobs {
				results <- c.harvestOne(ctx, h, opts)
			}
		}()
	}

	for _, h := range adapters {
		jobs <- h
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		c.collect(res, out, w)
	}
}

// harvestSequential calls the adapters one at a time in registration
// order with a politeness delay between providers.
func (c *Coordinator) harvestSequential(ctx context.Context, adapters []Harvester, opts Options, out *Output, w io.Writer) {
	for i, h := range adapters {
		if i > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.sequentialDelay):
			}
		}
		c.collect(c.harvestOne(ctx, h, opts), out, w)
	}
}

// harvestOne runs a single adapter's search, timing it. It may run on a
// worker goroutine and therefore must not touch shared state.
func (c *Coordinator) harvestOne(ctx context.Context, h Harvester, opts Options) sourceResult {
	start := time.Now()
	records, err := h.Search(ctx, opts.Topics, opts.DateRangeDays, opts.MaxPerSource)
	return sourceResult{name: h.Name(), records: records, elapsed: time.Since(start), err: err}
}

// collect folds one source's outcome into the output and reports its
// progress line. Errors become an empty slice for that source.
func (c *Coordinator) collect(res sourceResult, out *Output, w io.Writer) {
	if res.err != nil {
		fmt.Fprintf(w, "warning: source %s failed: %v\n", res.name, res.err)
		out.SourceErrors = append(out.SourceErrors, fmt.Sprintf("%s: %v", res.name, res.err))
		out.Records[res.name] = []types.Record{}
		return
	}
	fmt.Fprintf(w, "%-10s %d record(s) in %.2fs\n", res.name, len(res.records), res.elapsed.Seconds())
	out.Records[res.name] = res.records
}

// persist writes every harvested record into the store. Write failures
// are counted but leave the returned map untouched.
func (c *Coordinator) persist(ctx context.Context, out *Output, w io.Writer) {
	if c.store == nil {
		return
	}

	sources := make([]string, 0, len(out.Records))
	for name := range out.Records {
		sources = append(sources, name)
	}
	sort.Strings(sources)

	for _, name := range sources {
		saved := 0
		for _, rec := range out.Records[name] {
			if err := c.store.Put(ctx, rec); err != nil {
				out.StoreFailures++
				continue
			}
			saved++
		}
		if len(out.Records[name]) > 0 {
			fmt.Fprintf(w, "saved %d/%d record(s) from %s\n", saved, len(out.Records[name]), name)
		}
		out.Saved += saved
	}
	fmt.Fprintf(w, "harvest complete: %d record(s) saved\n", out.Saved)
}

// Check probes every registered adapter with a minimal search and reports
// per-source connectivity.
func (c *Coordinator) Check(ctx context.Context, w io.Writer) map[string]bool {
	status := make(map[string]bool)
	for _, name := range c.registry.Names() {
		h := c.registry.Get(name)
		if _, err := h.Search(ctx, []string{"bioinformatics"}, 1, 1); err != nil {
			status[name] = false
			fmt.Fprintf(w, "%-10s FAIL: %v\n", name, err)
			continue
		}
		status[name] = true
		fmt.Fprintf(w, "%-10s OK\n", name)
	}
	return status
}
