package tagger

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/lfmgenre/internal/shared"
)

// Options configures a [Tagger]. Cache and Pending may be shared between
// taggers; nil values get fresh tables.
type Options struct {
	Source  Source
	Cache   *Cache
	Pending *PendingTracker
	// JoinTags, when not empty, joins the genre into one value with this separator.
	JoinTags string
	// GenreField defaults to [FieldGenre].
	GenreField string
	Logger     *log.Logger
}

// Tagger starts aggregators for items.
type Tagger struct {
	cache      *Cache
	pending    *PendingTracker
	fetcher    *Fetcher
	joinTags   string
	genreField string
	logger     *log.Logger
}

func New(opts Options) (*Tagger, error) {
	if opts.Source == nil {
		return nil, errors.New("tagger: a Source is required")
	}
	if opts.Cache == nil {
		opts.Cache = NewCache()
	}
	if opts.Pending == nil {
		opts.Pending = NewPendingTracker()
	}
	if opts.GenreField == "" {
		opts.GenreField = FieldGenre
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	logger := shared.WithLogger(opts.Logger, "component", "tagger")

	return &Tagger{
		cache:      opts.Cache,
		pending:    opts.Pending,
		fetcher:    NewFetcher(opts.Source, opts.Cache, opts.Pending, logger),
		joinTags:   opts.JoinTags,
		genreField: opts.GenreField,
		logger:     logger,
	}, nil
}

func (t *Tagger) Cache() *Cache            { return t.cache }
func (t *Tagger) Pending() *PendingTracker { return t.pending }

// GenreField is the item field finalized genres are written to.
func (t *Tagger) GenreField() string { return t.genreField }

// Process reads the item's metadata and issues its artist, track and album
// lookups. Lookups already cached resolve before Process returns; the rest
// run on their own goroutines under ctx.
//
// The item holds one extra request for the duration of Process so that it
// cannot finish loading before all three lookups are issued. An album
// without an album artist is looked up under the track artist.
func (t *Tagger) Process(ctx context.Context, item Item) *Aggregator {
	item.AddRequest()
	defer func() {
		item.DoneRequest()
		item.FinalizeLoading()
	}()

	artist := shared.NormalizeField(item.Field(FieldArtist))
	title := shared.NormalizeField(item.Field(FieldTitle))
	album := shared.NormalizeField(item.Field(FieldAlbum))
	albumArtist := shared.NormalizeField(item.Field(FieldAlbumArtist))
	if albumArtist == "" {
		albumArtist = artist
	}

	lookups := [numScopes]Lookup{
		ScopeArtist: ArtistLookup(artist),
		ScopeTrack:  TrackLookup(artist, title),
		ScopeAlbum:  AlbumLookup(album, albumArtist),
	}
	a := newAggregator(item, lookups, t.joinTags, t.genreField, t.logger)

	for s, l := range lookups {
		t.getTags(ctx, item, l, a.continuation(Scope(s)))
	}
	return a
}

// getTags serves l from the cache, joins an in-flight request for it, or
// dispatches a new one. Every lookup that does not resolve immediately holds
// one request on item until its continuation has run.
func (t *Tagger) getTags(ctx context.Context, item Item, l Lookup, cont Continuation) {
	key := l.Key()
	if tags, ok := t.cache.Lookup(key); ok {
		cont(tags, nil)
		return
	}

	item.AddRequest()
	held := func(tags TagList, err error) {
		defer func() {
			item.DoneRequest()
			item.FinalizeLoading()
		}()
		cont(tags, err)
	}
	if !t.pending.Register(key, held) {
		return
	}

	// The key may have been stored between the miss and the registration.
	if t.resolveCached(l, held) {
		return
	}

	go t.fetcher.Fetch(ctx, item, l, cont)
}

// resolveCached releases a freshly registered key from the cache, if it is
// there, delivering to cont and the queued waiters the way a fetch would.
func (t *Tagger) resolveCached(l Lookup, cont Continuation) bool {
	tags, ok := t.cache.Lookup(l.Key())
	if !ok {
		return false
	}
	t.fetcher.release(l, cont, tags, nil)
	return true
}
