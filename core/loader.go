package core

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leen324/locscope/core/agg"
	"github.com/leen324/locscope/internal/contract"
	"github.com/leen324/locscope/schema"
	"golang.org/x/sync/singleflight"
)

// DataLoadError reports a source that could not be fetched or parsed.
// Nothing is applied when a load fails.
type DataLoadError struct {
	Source string
	Err    error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Source, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// LoaderOptions configures parsing, aggregation and persistence of loads.
type LoaderOptions struct {
	Parse    agg.ParseOptions
	URLs     agg.URLBuilder
	Location *time.Location // hour-of-day location; nil keeps parsed offsets
	Cache    contract.CacheStore
	History  contract.HistoryStore
	// Params are stored with each load run in the history store.
	Params map[string]any
}

// LoadResult describes one completed load.
type LoadResult struct {
	Source     string
	Generation uint64
	Applied    bool // false when a newer load was applied first
	Aggregate  agg.Aggregate
	Duration   time.Duration
}

// Loader fetches, parses and aggregates sources, then hands the result to apply.
// Every load gets a generation number and only a load newer than the last applied
// one is applied, so the latest load wins and datasets are never merged.
type Loader struct {
	opts  LoaderOptions
	apply func(agg.Aggregate)
	group singleflight.Group

	issued  atomic.Uint64
	mu      sync.Mutex
	applied uint64
}

// NewLoader creates a loader that passes each winning aggregate to apply.
func NewLoader(apply func(agg.Aggregate), opts LoaderOptions) *Loader {
	if opts.Parse.OnCoercion == nil {
		opts.Parse.OnCoercion = logCoercion
	}
	return &Loader{opts: opts, apply: apply}
}

// Load runs one load of src. Concurrent loads of the same source share one fetch,
// except that a load joining a fetch led by an older load waits for it and then
// shares the next one.
func (l *Loader) Load(ctx context.Context, src contract.DataSource) (LoadResult, error) {
	gen := l.issued.Add(1)
	start := time.Now()
	name := src.Name()
	log := contract.Logger.WithField("source", name).WithField("generation", gen)
	if id, ok := requestIDFrom(ctx); ok {
		log = log.WithField("request_id", id)
	}

	v, err, shared := l.group.Do(name, l.fetch(ctx, src, gen))
	if err == nil && shared && v.(fetched).gen < gen {
		// The joined fetch may have started before this load was issued.
		// Wait for the next one, which is shared by every load in the same position.
		log.Debug("Joined fetch predates load, fetching again")
		v, err, shared = l.group.Do(name, l.fetch(ctx, src, gen))
	}
	if err != nil {
		log.WithError(err).Error("Load failed")
		return LoadResult{Source: name, Generation: gen}, &DataLoadError{Source: name, Err: err}
	}
	if shared {
		log.Debug("Shared in-flight fetch")
	}

	records := v.(fetched).records
	aggregate := agg.AggregateCommits(records, l.opts.URLs, l.opts.Location)
	result := LoadResult{Source: name, Generation: gen, Aggregate: aggregate}

	l.mu.Lock()
	if gen > l.applied {
		l.applied = gen
		if l.apply != nil {
			l.apply(aggregate)
		}
		result.Applied = true
	}
	l.mu.Unlock()

	result.Duration = time.Since(start)
	if !result.Applied {
		log.Debug("Discarded stale load")
		return result, nil
	}
	log.WithField("records", len(records)).WithField("commits", len(aggregate.Commits)).Info("Load applied")
	l.recordHistory(name, start, aggregate)
	return result, nil
}

// fetched is the shared result of one fetch and the generation of the load that started it.
type fetched struct {
	records []schema.LineRecord
	gen     uint64
}

func (l *Loader) fetch(ctx context.Context, src contract.DataSource, gen uint64) func() (any, error) {
	return func() (any, error) {
		raw, err := src.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		records, err := cachedParse(raw, l.opts.Cache, l.opts.Parse)
		if err != nil {
			return nil, err
		}
		return fetched{records: records, gen: gen}, nil
	}
}

// Generation returns the generation of the last applied load.
func (l *Loader) Generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.applied
}

// recordHistory is best effort: failures are logged and never fail the load.
func (l *Loader) recordHistory(source string, start time.Time, a agg.Aggregate) {
	store := l.opts.History
	if store == nil {
		return
	}
	id, err := store.BeginLoad(source, start, l.opts.Params)
	if err != nil {
		contract.LogWarn("Failed to record load run", err)
		return
	}
	if err := store.RecordCommits(id, a.Commits); err != nil {
		contract.LogWarn("Failed to record commit snapshots", err)
	}
	if err := store.EndLoad(id, time.Now(), len(a.Records), len(a.Commits)); err != nil {
		contract.LogWarn("Failed to finish load run", err)
	}
}

func logCoercion(c agg.Coercion) {
	contract.Logger.
		WithField("row", c.Row).
		WithField("field", c.Field).
		WithField("value", c.Value).
		WithError(c.Err).
		Warn("Coerced malformed value to default")
}
