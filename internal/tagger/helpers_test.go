package tagger

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// testItem counts requests and marks itself loaded once the counter drains, like a host item would.
type testItem struct {
	mu       sync.Mutex
	fields   map[string][]string
	requests int
	added    int
	checks   int
	loaded   int
	sets     int
	negative bool
}

func newTestItem(artist, title, album, albumArtist string) *testItem {
	return &testItem{fields: map[string][]string{
		FieldArtist:      {artist},
		FieldTitle:       {title},
		FieldAlbum:       {album},
		FieldAlbumArtist: {albumArtist},
	}}
}

func (i *testItem) Field(name string) string {
	i.mu.Lock()
	defer i.mu.Unlock()
	if v := i.fields[name]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (i *testItem) Values(name string) []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]string(nil), i.fields[name]...)
}

func (i *testItem) SetField(name string, values ...string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.fields[name] = append([]string(nil), values...)
	i.sets++
}

func (i *testItem) AddRequest() {
	i.mu.Lock()
	i.requests++
	i.added++
	i.mu.Unlock()
}

func (i *testItem) DoneRequest() {
	i.mu.Lock()
	i.requests--
	if i.requests < 0 {
		i.negative = true
	}
	i.mu.Unlock()
}

func (i *testItem) FinalizeLoading() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.checks++
	if i.requests == 0 && i.loaded == 0 {
		i.loaded++
	}
}

type itemState struct {
	requests, added, checks, loaded, sets int
	negative                              bool
}

func (i *testItem) state() itemState {
	i.mu.Lock()
	defer i.mu.Unlock()
	return itemState{
		requests: i.requests,
		added:    i.added,
		checks:   i.checks,
		loaded:   i.loaded,
		sets:     i.sets,
		negative: i.negative,
	}
}

// fakeSource answers from a table and counts calls per key. When gate is
// set every call blocks until it is closed.
type fakeSource struct {
	mu      sync.Mutex
	answers map[LookupKey]TagList
	errs    map[LookupKey]error
	panics  map[LookupKey]bool
	calls   map[LookupKey]int
	total   atomic.Int32
	gate    chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		answers: make(map[LookupKey]TagList),
		errs:    make(map[LookupKey]error),
		panics:  make(map[LookupKey]bool),
		calls:   make(map[LookupKey]int),
	}
}

func (f *fakeSource) answer(l Lookup, tags ...string) *fakeSource {
	f.answers[l.Key()] = TagList(tags)
	return f
}

func (f *fakeSource) fail(l Lookup, err error) *fakeSource {
	f.errs[l.Key()] = err
	return f
}

func (f *fakeSource) Tags(ctx context.Context, l Lookup) (TagList, error) {
	key := l.Key()
	f.mu.Lock()
	f.calls[key]++
	gate := f.gate
	tags, err, boom := f.answers[key], f.errs[key], f.panics[key]
	f.mu.Unlock()
	f.total.Add(1)

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if boom {
		panic("malformed reply")
	}
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (f *fakeSource) callsFor(l Lookup) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[l.Key()]
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
