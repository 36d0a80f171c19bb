package tagger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/lfmgenre/internal/lastfm"
	"github.com/desertthunder/lfmgenre/internal/ratelimit"
	"github.com/desertthunder/lfmgenre/internal/shared"
)

var (
	artistRH = ArtistLookup("Radiohead")
	trackRH  = TrackLookup("Radiohead", "Creep")
	albumRH  = AlbumLookup("Pablo Honey", "Radiohead")
)

func newTestTagger(t *testing.T, src Source, joinTags string) *Tagger {
	t.Helper()
	tg, err := New(Options{Source: src, JoinTags: joinTags, Logger: discardLogger()})
	require.NoError(t, err)
	return tg
}

func waitDone(t *testing.T, a *Aggregator) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, a.Wait(ctx), "aggregator never finalized")
}

func waitLoaded(t *testing.T, item *testItem) itemState {
	t.Helper()
	require.Eventually(t, func() bool {
		st := item.state()
		return st.loaded == 1 && st.requests == 0
	}, 2*time.Second, 5*time.Millisecond, "item never finished loading")
	return item.state()
}

func TestNew(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	tg, err := New(Options{Source: newFakeSource(), Logger: discardLogger()})
	require.NoError(t, err)
	assert.NotNil(t, tg.Cache())
	assert.NotNil(t, tg.Pending())
	assert.Equal(t, FieldGenre, tg.genreField)
}

func TestTagger_Process(t *testing.T) {
	t.Run("writes merged genre", func(t *testing.T) {
		src := newFakeSource().
			answer(trackRH, "Rock", "Pop").
			answer(albumRH, "Pop", "Jazz").
			answer(artistRH, "Jazz", "Rock")
		tg := newTestTagger(t, src, "")

		item := newTestItem("Radiohead", "Creep", "Pablo Honey", "Radiohead")
		agg := tg.Process(context.Background(), item)
		waitDone(t, agg)

		assert.Equal(t, []string{"Rock", "Pop", "Jazz"}, item.Values(FieldGenre))
		assert.Equal(t, []string{"Rock", "Pop", "Jazz"}, agg.Genre())
		assert.Equal(t, TagList{"Pop", "Jazz"}, agg.Tags(ScopeAlbum))
		assert.NoError(t, agg.Err())

		st := waitLoaded(t, item)
		assert.Equal(t, 4, st.added, "one hold by Process plus one per fetch")
		assert.Equal(t, st.added, st.checks, "every release is followed by a completion check")
		assert.False(t, st.negative)
		assert.Equal(t, 1, st.sets)
	})

	t.Run("joins genre when a separator is set", func(t *testing.T) {
		src := newFakeSource().
			answer(trackRH, "Rock", "Pop").
			answer(albumRH, "Pop", "Jazz").
			answer(artistRH, "Jazz", "Rock")
		tg := newTestTagger(t, src, ", ")

		item := newTestItem("Radiohead", "Creep", "Pablo Honey", "Radiohead")
		waitDone(t, tg.Process(context.Background(), item))
		assert.Equal(t, []string{"Rock, Pop, Jazz"}, item.Values(FieldGenre))
	})

	t.Run("no tags writes an empty genre", func(t *testing.T) {
		tg := newTestTagger(t, newFakeSource(), "; ")
		item := newTestItem("Nobody", "Nothing", "Nowhere", "")
		agg := tg.Process(context.Background(), item)
		waitDone(t, agg)
		assert.Empty(t, item.Values(FieldGenre))
		assert.Empty(t, agg.Genre())
	})

	t.Run("album artist falls back to artist", func(t *testing.T) {
		src := newFakeSource().answer(albumRH, "Grunge")
		tg := newTestTagger(t, src, "")

		item := newTestItem("Radiohead", "Creep", "Pablo Honey", "")
		agg := tg.Process(context.Background(), item)
		waitDone(t, agg)
		assert.Equal(t, albumRH, agg.Lookup(ScopeAlbum))
		assert.Equal(t, []string{"Grunge"}, item.Values(FieldGenre))
	})

	t.Run("fields are normalized before lookup", func(t *testing.T) {
		l := TrackLookup("Sigur Rós", "Don't Stop")
		src := newFakeSource().answer(l, "Post-Rock")
		tg := newTestTagger(t, src, "")

		item := newTestItem(" Sigur Rós ", "Don’t Stop", "", "")
		agg := tg.Process(context.Background(), item)
		waitDone(t, agg)
		assert.Equal(t, l, agg.Lookup(ScopeTrack))
		assert.Equal(t, []string{"Post-Rock"}, item.Values(FieldGenre))
	})
}

func TestTagger_Dedup(t *testing.T) {
	const n = 25

	src := newFakeSource().
		answer(trackRH, "Alternative").
		answer(albumRH, "Grunge").
		answer(artistRH, "Rock")
	src.gate = make(chan struct{})
	tg := newTestTagger(t, src, "")

	items := make([]*testItem, n)
	aggs := make([]*Aggregator, n)
	for i := range n {
		items[i] = newTestItem("Radiohead", "Creep", "Pablo Honey", "")
		aggs[i] = tg.Process(context.Background(), items[i])
	}
	assert.Equal(t, 3, tg.Pending().Len())

	close(src.gate)
	for i := range n {
		waitDone(t, aggs[i])
		assert.Equal(t, []string{"Alternative", "Grunge", "Rock"}, items[i].Values(FieldGenre))
	}

	assert.Equal(t, 1, src.callsFor(trackRH))
	assert.Equal(t, 1, src.callsFor(albumRH))
	assert.Equal(t, 1, src.callsFor(artistRH))
	assert.EqualValues(t, 3, src.total.Load())
	assert.Equal(t, 0, tg.Pending().Len())
	assert.Equal(t, 3, tg.Cache().Len())

	for i := range n {
		st := waitLoaded(t, items[i])
		assert.Equal(t, 4, st.added, "waiting lookups hold the item too")
		assert.Equal(t, st.added, st.checks)
	}
}

func TestTagger_CacheHits(t *testing.T) {
	src := newFakeSource()
	tg := newTestTagger(t, src, "")
	tg.Cache().Store(trackRH.Key(), TagList{"Rock", "Pop"})
	tg.Cache().Store(albumRH.Key(), TagList{"Pop", "Jazz"})
	tg.Cache().Store(artistRH.Key(), TagList{"Jazz", "Rock"})

	item := newTestItem("Radiohead", "Creep", "Pablo Honey", "Radiohead")
	agg := tg.Process(context.Background(), item)

	select {
	case <-agg.Done():
	default:
		t.Fatal("all-cached item should finalize before Process returns")
	}

	st := item.state()
	assert.Equal(t, 1, st.sets, "finalize runs exactly once")
	assert.Equal(t, 1, st.loaded)
	assert.Equal(t, 0, st.requests)
	assert.Zero(t, src.total.Load())
	assert.Equal(t, []string{"Rock", "Pop", "Jazz"}, item.Values(FieldGenre))
}

func TestTagger_Failures(t *testing.T) {
	t.Run("transport failure drains the item and is not cached", func(t *testing.T) {
		src := newFakeSource().
			answer(albumRH, "Grunge").
			answer(artistRH, "Rock").
			fail(trackRH, lastfm.ErrRequestFailed)
		tg := newTestTagger(t, src, "")

		item := newTestItem("Radiohead", "Creep", "Pablo Honey", "")
		agg := tg.Process(context.Background(), item)
		waitDone(t, agg)

		assert.Equal(t, []string{"Grunge", "Rock"}, item.Values(FieldGenre))
		assert.ErrorIs(t, agg.Err(), lastfm.ErrRequestFailed)
		assert.Empty(t, agg.Tags(ScopeTrack))

		st := waitLoaded(t, item)
		assert.Equal(t, 1, st.loaded)
		assert.False(t, st.negative)
		assert.Equal(t, st.added, st.checks)

		_, cached := tg.Cache().Lookup(trackRH.Key())
		assert.False(t, cached)
		assert.Equal(t, 2, tg.Cache().Len())
		assert.Equal(t, 0, tg.Pending().Len())

		again := newTestItem("Radiohead", "Creep", "Pablo Honey", "")
		waitDone(t, tg.Process(context.Background(), again))
		assert.Equal(t, 2, src.callsFor(trackRH), "failed key is requested again")
		assert.Equal(t, 1, src.callsFor(artistRH))
	})

	t.Run("semantic failure reaches every waiter and is not cached", func(t *testing.T) {
		apiErr := &lastfm.APIError{Code: lastfm.CodeInvalidParameters, Message: "Track not found"}
		src := newFakeSource().fail(trackRH, apiErr)
		src.gate = make(chan struct{})
		tg := newTestTagger(t, src, "")

		a := tg.Process(context.Background(), newTestItem("Radiohead", "Creep", "Pablo Honey", ""))
		b := tg.Process(context.Background(), newTestItem("Radiohead", "Creep", "Pablo Honey", ""))
		close(src.gate)
		waitDone(t, a)
		waitDone(t, b)

		assert.ErrorIs(t, a.Err(), lastfm.ErrAPIFailed)
		assert.ErrorIs(t, b.Err(), lastfm.ErrAPIFailed)
		_, cached := tg.Cache().Lookup(trackRH.Key())
		assert.False(t, cached)
		assert.Equal(t, 1, src.callsFor(trackRH))
	})

	t.Run("empty result is cached", func(t *testing.T) {
		src := newFakeSource()
		tg := newTestTagger(t, src, "")

		waitDone(t, tg.Process(context.Background(), newTestItem("Radiohead", "Creep", "Pablo Honey", "")))
		waitDone(t, tg.Process(context.Background(), newTestItem("Radiohead", "Creep", "Pablo Honey", "")))

		tags, cached := tg.Cache().Lookup(albumRH.Key())
		require.True(t, cached)
		assert.Empty(t, tags)
		assert.Equal(t, 1, src.callsFor(albumRH))
	})

	t.Run("panic while fetching is an internal error", func(t *testing.T) {
		src := newFakeSource().answer(trackRH, "Rock")
		src.panics[artistRH.Key()] = true
		tg := newTestTagger(t, src, "")

		item := newTestItem("Radiohead", "Creep", "Pablo Honey", "")
		agg := tg.Process(context.Background(), item)
		waitDone(t, agg)

		assert.ErrorIs(t, agg.Err(), shared.ErrInternal)
		assert.Equal(t, []string{"Rock"}, item.Values(FieldGenre))
		st := waitLoaded(t, item)
		assert.Equal(t, st.added, st.checks)
		assert.Equal(t, 0, tg.Pending().Len())
	})

	t.Run("cancelled context fails every lookup", func(t *testing.T) {
		src := newFakeSource().answer(artistRH, "Rock")
		src.gate = make(chan struct{})
		defer close(src.gate)
		tg := newTestTagger(t, src, "")

		ctx, cancel := context.WithCancel(context.Background())
		item := newTestItem("Radiohead", "Creep", "Pablo Honey", "")
		agg := tg.Process(ctx, item)
		cancel()
		waitDone(t, agg)

		assert.ErrorIs(t, agg.Err(), context.Canceled)
		assert.Empty(t, item.Values(FieldGenre))
		waitLoaded(t, item)
		assert.Equal(t, 0, tg.Cache().Len())
	})
}

func TestTagger_ReentrantContinuation(t *testing.T) {
	l := ArtistLookup("Björk")
	src := newFakeSource().answer(l, "Electronic")
	tg := newTestTagger(t, src, "")
	item := newTestItem("Björk", "", "", "")

	done := make(chan TagList, 1)
	tg.getTags(context.Background(), item, l, func(TagList, error) {
		assert.False(t, tg.Pending().IsPending(l.Key()), "pending entry is cleared before delivery")
		tg.getTags(context.Background(), item, l, func(tags TagList, err error) {
			done <- tags
		})
	})

	select {
	case tags := <-done:
		assert.Equal(t, TagList{"Electronic"}, tags)
	case <-time.After(2 * time.Second):
		t.Fatal("continuation never ran")
	}
	assert.Equal(t, 1, src.callsFor(l))
}

func TestTagger_ResolveCached(t *testing.T) {
	l := ArtistLookup("Slowdive")
	tg := newTestTagger(t, newFakeSource(), "")

	t.Run("miss leaves the key pending", func(t *testing.T) {
		require.True(t, tg.Pending().Register(l.Key(), func(TagList, error) {}))
		assert.False(t, tg.resolveCached(l, func(TagList, error) {}))
		assert.True(t, tg.Pending().IsPending(l.Key()))
		tg.Pending().Resolve(l.Key())
	})

	t.Run("a panicking continuation does not starve the others", func(t *testing.T) {
		var got []TagList
		require.True(t, tg.Pending().Register(l.Key(), func(TagList, error) {}))
		tg.Pending().Register(l.Key(), func(TagList, error) { panic("boom") })
		tg.Pending().Register(l.Key(), func(tags TagList, err error) {
			assert.NoError(t, err)
			got = append(got, tags)
		})
		tg.Cache().Store(l.Key(), TagList{"Shoegaze"})

		assert.NotPanics(t, func() {
			assert.True(t, tg.resolveCached(l, func(TagList, error) { panic("first") }))
		})
		assert.Equal(t, []TagList{{"Shoegaze"}}, got)
		assert.False(t, tg.Pending().IsPending(l.Key()))
	})
}

func TestLastFMSource(t *testing.T) {
	const reply = `<?xml version="1.0" encoding="utf-8"?>
<lfm status="ok">
  <toptags artist="Radiohead">
    <tag><name>rock</name><count>50</count></tag>
    <tag><name>Seen Live</name><count>45</count></tag>
    <tag><name>indie</name><count>40</count></tag>
    <tag><name>obscure</name><count>9</count></tag>
  </toptags>
</lfm>`

	var mu sync.Mutex
	methods := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods[r.URL.Query().Get("method")]++
		mu.Unlock()
		_, _ = w.Write([]byte(reply))
	}))
	defer srv.Close()

	cfg := shared.LastFMConfig{APIKey: "k", BaseURL: srv.URL + "/2.0/", TimeoutSeconds: 5}
	client, err := lastfm.NewClient(cfg, srv.Client(), ratelimit.New(0), discardLogger())
	require.NoError(t, err)
	src := NewLastFMSource(client, lastfm.NewFilter(10, []string{"seen live"}))

	tags, err := src.Tags(context.Background(), ArtistLookup("Radiohead"))
	require.NoError(t, err)
	assert.Equal(t, TagList{"Rock", "Indie"}, tags)

	tg := newTestTagger(t, src, ", ")
	item := newTestItem("Radiohead", "Creep", "Pablo Honey", "")
	waitDone(t, tg.Process(context.Background(), item))
	assert.Equal(t, []string{"Rock, Indie"}, item.Values(FieldGenre))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, map[string]int{
		"artist.gettoptags": 2,
		"track.gettoptags":  1,
		"album.gettoptags":  1,
	}, methods)
}

func TestAggregator_ErrJoinsScopes(t *testing.T) {
	src := newFakeSource().
		fail(trackRH, errors.New("boom")).
		fail(albumRH, errors.New("bang"))
	tg := newTestTagger(t, src, "")

	agg := tg.Process(context.Background(), newTestItem("Radiohead", "Creep", "Pablo Honey", ""))
	waitDone(t, agg)

	err := agg.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "track lookup: boom")
	assert.Contains(t, err.Error(), "album lookup: bang")
	assert.Equal(t, 0, agg.Pending())
}
