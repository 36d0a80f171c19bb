package tasks

import (
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/desertthunder/lfmgenre/internal/tagfile"
	"github.com/desertthunder/lfmgenre/internal/tagger"
)

// LibraryItem is an audio file's metadata held in memory while it is tagged.
//
// It implements [tagger.Item]: Loaded is closed the first time
// FinalizeLoading observes no outstanding requests.
type LibraryItem struct {
	path     string
	mu       sync.RWMutex
	fields   map[string][]string
	requests atomic.Int32
	loaded   chan struct{}
	once     sync.Once
}

var _ tagger.Item = (*LibraryItem)(nil)

// NewLibraryItem creates an item for the file at path. md may be nil.
func NewLibraryItem(path string, md *tagfile.Metadata) *LibraryItem {
	item := &LibraryItem{
		path:   path,
		fields: make(map[string][]string),
		loaded: make(chan struct{}),
	}
	if md != nil {
		item.set(tagger.FieldArtist, md.Artist)
		item.set(tagger.FieldTitle, md.Title)
		item.set(tagger.FieldAlbum, md.Album)
		item.set(tagger.FieldAlbumArtist, md.AlbumArtist)
		item.set(tagger.FieldGenre, md.Genre)
	}
	return item
}

func (i *LibraryItem) set(name, value string) {
	if value != "" {
		i.fields[name] = []string{value}
	}
}

func (i *LibraryItem) Path() string { return i.path }

// Field returns the values of name joined with [tagfile.GenreSeparator].
func (i *LibraryItem) Field(name string) string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return strings.Join(i.fields[name], tagfile.GenreSeparator)
}

// Values returns a copy of the values of name.
func (i *LibraryItem) Values(name string) []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return slices.Clone(i.fields[name])
}

func (i *LibraryItem) SetField(name string, values ...string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(values) == 0 {
		delete(i.fields, name)
		return
	}
	i.fields[name] = slices.Clone(values)
}

func (i *LibraryItem) AddRequest()  { i.requests.Add(1) }
func (i *LibraryItem) DoneRequest() { i.requests.Add(-1) }

// Requests reports how many lookups are still outstanding.
func (i *LibraryItem) Requests() int { return int(i.requests.Load()) }

func (i *LibraryItem) FinalizeLoading() {
	if i.requests.Load() > 0 {
		return
	}
	i.once.Do(func() { close(i.loaded) })
}

// Loaded is closed once every request made for the item has completed.
func (i *LibraryItem) Loaded() <-chan struct{} { return i.loaded }
