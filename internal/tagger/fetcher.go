package tagger

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/lfmgenre/internal/lastfm"
	"github.com/desertthunder/lfmgenre/internal/shared"
)

// Fetcher issues the request for a key that has just been registered as
// pending and releases everyone waiting on it.
type Fetcher struct {
	source  Source
	cache   *Cache
	pending *PendingTracker
	logger  *log.Logger
}

func NewFetcher(source Source, cache *Cache, pending *PendingTracker, logger *log.Logger) *Fetcher {
	return &Fetcher{source: source, cache: cache, pending: pending, logger: logger}
}

// Fetch resolves l and delivers the result to cont and then to every
// continuation queued on its key. A successful result is cached before the
// pending entry is cleared. Failures are delivered without caching.
//
// Whatever happens, Fetch ends with exactly one item.DoneRequest followed by
// item.FinalizeLoading. It blocks; callers run it on its own goroutine.
func (f *Fetcher) Fetch(ctx context.Context, item Item, l Lookup, cont Continuation) {
	released := false

	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("problem processing downloaded tags", "scope", l.Scope, "lookup", l.String(), "panic", r, "stack", string(debug.Stack()))
			if !released {
				f.release(l, cont, nil, fmt.Errorf("%w: %v", shared.ErrInternal, r))
			}
		}
		item.DoneRequest()
		item.FinalizeLoading()
	}()

	tags, err := f.source.Tags(ctx, l)
	if err != nil {
		if !errors.Is(err, lastfm.ErrAPIFailed) {
			f.logger.Warn("tag lookup failed", "scope", l.Scope, "lookup", l.String(), "err", err)
		}
		released = true
		f.release(l, cont, nil, err)
		return
	}

	if tags == nil {
		tags = TagList{}
	}
	f.cache.Store(l.Key(), tags)
	f.logger.Debug("tags resolved", "scope", l.Scope, "lookup", l.String(), "tags", len(tags))

	released = true
	f.release(l, cont, tags, nil)
}

// release clears the pending entry before running any continuation, so a
// continuation that looks the same key up again sees the cache.
func (f *Fetcher) release(l Lookup, cont Continuation, tags TagList, err error) {
	waiters := f.pending.Resolve(l.Key())
	f.deliver(l, cont, tags, err)
	for _, w := range waiters {
		f.deliver(l, w, tags, err)
	}
}

func (f *Fetcher) deliver(l Lookup, cont Continuation, tags TagList, err error) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("continuation panicked", "scope", l.Scope, "lookup", l.String(), "panic", r, "stack", string(debug.Stack()))
		}
	}()
	cont(tags, err)
}
