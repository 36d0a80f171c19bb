package tagger

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

// Aggregator joins the three lookups of one item and writes the merged genre.
//
// It moves from waiting on three results to finalized exactly once; Done is
// closed after the genre has been written.
type Aggregator struct {
	item       Item
	lookups    [numScopes]Lookup
	joinTags   string
	genreField string
	logger     *log.Logger
	barrier    *barrier
	done       chan struct{}

	// written by finalize before done is closed
	tags  [numScopes]TagList
	errs  [numScopes]error
	genre []string
}

func newAggregator(item Item, lookups [numScopes]Lookup, joinTags, genreField string, logger *log.Logger) *Aggregator {
	a := &Aggregator{
		item:       item,
		lookups:    lookups,
		joinTags:   joinTags,
		genreField: genreField,
		logger:     logger,
		done:       make(chan struct{}),
	}
	a.barrier = newBarrier(a.finalize)
	return a
}

func (a *Aggregator) continuation(s Scope) Continuation {
	return func(tags TagList, err error) {
		if !a.barrier.set(s, tags, err) {
			a.logger.Warn("duplicate result dropped", "scope", s, "lookup", a.lookups[s].String())
		}
	}
}

// finalize merges track, album and artist tags in that order of precedence.
func (a *Aggregator) finalize(tags [numScopes]TagList, errs [numScopes]error) {
	defer close(a.done)

	merged := Merge(tags[ScopeTrack], tags[ScopeAlbum], tags[ScopeArtist])
	values := []string(merged)
	if a.joinTags != "" {
		values = []string{}
		if joined := Join(merged, a.joinTags); joined != "" {
			values = []string{joined}
		}
	}

	a.tags, a.errs, a.genre = tags, errs, values
	a.item.SetField(a.genreField, values...)
	a.logger.Debug("genre written", "field", a.genreField, "values", values)
}

// Done is closed once the genre has been written.
func (a *Aggregator) Done() <-chan struct{} { return a.done }

// Wait blocks until the aggregator is finalized or ctx is done.
func (a *Aggregator) Wait(ctx context.Context) error {
	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending reports how many lookups have not resolved yet.
func (a *Aggregator) Pending() int { return a.barrier.pending() }

// Lookup returns the request made for s.
func (a *Aggregator) Lookup(s Scope) Lookup { return a.lookups[s] }

// Genre returns the values written to the item. Only valid after Done.
func (a *Aggregator) Genre() []string { return a.genre }

// Tags returns the list resolved for s. Only valid after Done.
func (a *Aggregator) Tags(s Scope) TagList { return a.tags[s] }

// Err joins the failures of every lookup that did not resolve. Only valid after Done.
func (a *Aggregator) Err() error {
	var errs []error
	for s, err := range a.errs {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s lookup: %w", Scope(s), err))
		}
	}
	return errors.Join(errs...)
}
