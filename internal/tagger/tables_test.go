package tagger

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {
	t.Run("lookup after store", func(t *testing.T) {
		c := NewCache()
		key := ArtistLookup("Radiohead").Key()

		_, ok := c.Lookup(key)
		assert.False(t, ok)

		c.Store(key, TagList{"Rock", "Alternative"})
		got, ok := c.Lookup(key)
		require.True(t, ok)
		assert.Equal(t, TagList{"Rock", "Alternative"}, got)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("nil is stored as empty", func(t *testing.T) {
		c := NewCache()
		key := AlbumLookup("Kid A", "Radiohead").Key()
		c.Store(key, nil)

		got, ok := c.Lookup(key)
		require.True(t, ok)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("concurrent access", func(t *testing.T) {
		c := NewCache()
		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				key := ArtistLookup(fmt.Sprintf("artist %d", i%10)).Key()
				c.Store(key, TagList{"Rock"})
				_, _ = c.Lookup(key)
			}()
		}
		wg.Wait()
		assert.Equal(t, 10, c.Len())
	})
}

func TestPendingTracker(t *testing.T) {
	key := TrackLookup("Radiohead", "Creep").Key()

	t.Run("first registrant issues the request", func(t *testing.T) {
		p := NewPendingTracker()
		assert.False(t, p.IsPending(key))

		assert.True(t, p.Register(key, func(TagList, error) {}))
		assert.True(t, p.IsPending(key))
		assert.False(t, p.Register(key, func(TagList, error) {}))
		assert.Equal(t, 1, p.Len())
	})

	t.Run("resolve returns waiters in order without the first", func(t *testing.T) {
		p := NewPendingTracker()
		var order []int
		p.Register(key, func(TagList, error) { order = append(order, 0) })
		for i := 1; i <= 3; i++ {
			p.Register(key, func(TagList, error) { order = append(order, i) })
		}

		waiters := p.Resolve(key)
		require.Len(t, waiters, 3)
		for _, w := range waiters {
			w(nil, nil)
		}
		assert.Equal(t, []int{1, 2, 3}, order)
		assert.False(t, p.IsPending(key))
	})

	t.Run("resolve is safe without waiters", func(t *testing.T) {
		p := NewPendingTracker()
		assert.Empty(t, p.Resolve(key))

		p.Register(key, func(TagList, error) {})
		assert.Empty(t, p.Resolve(key))
		assert.True(t, p.Register(key, func(TagList, error) {}), "key is free again after resolve")
	})
}

func TestLookup(t *testing.T) {
	t.Run("keys are scoped", func(t *testing.T) {
		keys := map[LookupKey]bool{
			ArtistLookup("Air").Key():       true,
			TrackLookup("Air", "Air").Key(): true,
			AlbumLookup("Air", "Air").Key(): true,
		}
		assert.Len(t, keys, 3)
	})

	t.Run("field boundaries do not collide", func(t *testing.T) {
		assert.NotEqual(t, TrackLookup("a-b", "c").Key(), TrackLookup("a", "b-c").Key())
		assert.NotEqual(t, AlbumLookup("x y", "z").Key(), AlbumLookup("x", "y z").Key())
	})

	t.Run("keys keep case", func(t *testing.T) {
		assert.NotEqual(t, ArtistLookup("ABBA").Key(), ArtistLookup("Abba").Key())
	})

	t.Run("params", func(t *testing.T) {
		p := TrackLookup("Radiohead", "Creep").Params()
		assert.Equal(t, "Radiohead", p.Get("artist"))
		assert.Equal(t, "Creep", p.Get("track"))

		p = AlbumLookup("OK Computer", "Radiohead").Params()
		assert.Equal(t, "Radiohead", p.Get("artist"))
		assert.Equal(t, "OK Computer", p.Get("album"))
		assert.False(t, p.Has("track"))

		assert.Equal(t, "track.gettoptags", ScopeTrack.Method())
		assert.Equal(t, "album.gettoptags", ScopeAlbum.Method())
		assert.Equal(t, "artist.gettoptags", ScopeArtist.Method())
	})
}

func TestMerge(t *testing.T) {
	got := Merge(TagList{"Rock", "Pop"}, TagList{"Pop", "Jazz"}, TagList{"Jazz", "Rock"})
	assert.Equal(t, TagList{"Rock", "Pop", "Jazz"}, got)

	assert.Equal(t, TagList{}, Merge(nil, TagList{}, nil))
	assert.Equal(t, TagList{"Rock", "rock"}, Merge(TagList{"Rock"}, TagList{"rock"}))
}

func TestJoin(t *testing.T) {
	t.Run("short lists are joined whole", func(t *testing.T) {
		assert.Equal(t, "Rock, Pop, Jazz", Join(TagList{"Rock", "Pop", "Jazz"}, ", "))
		assert.Equal(t, "", Join(nil, ", "))
	})

	t.Run("long lists stop before the limit", func(t *testing.T) {
		var tags TagList
		for i := range 60 {
			tags = append(tags, fmt.Sprintf("Genre Number %02d", i))
		}

		got := Join(tags, ", ")
		assert.Less(t, utf8.RuneCountInString(got), MaxJoinedLength)

		parts := strings.Split(got, ", ")
		for i, part := range parts {
			assert.Equal(t, tags[i], part, "tag %d must be whole", i)
		}
		next := utf8.RuneCountInString(got + ", " + tags[len(parts)])
		assert.GreaterOrEqual(t, next, MaxJoinedLength)
	})

	t.Run("limit counts characters not bytes", func(t *testing.T) {
		tag := strings.Repeat("é", 100)
		got := Join(TagList{tag, tag, tag}, "/")
		assert.Equal(t, tag+"/"+tag, got)
	})

	t.Run("a first tag at the limit is dropped", func(t *testing.T) {
		assert.Equal(t, "", Join(TagList{strings.Repeat("x", MaxJoinedLength)}, ", "))
		assert.Equal(t, strings.Repeat("x", MaxJoinedLength-1), Join(TagList{strings.Repeat("x", MaxJoinedLength-1)}, ", "))
	})
}

func TestBarrier(t *testing.T) {
	t.Run("fires once when every slot is filled", func(t *testing.T) {
		var fired int
		var got [numScopes]TagList
		b := newBarrier(func(tags [numScopes]TagList, errs [numScopes]error) {
			fired++
			got = tags
		})

		assert.True(t, b.set(ScopeArtist, TagList{"Jazz"}, nil))
		assert.True(t, b.set(ScopeTrack, nil, fmt.Errorf("timeout")))
		assert.Equal(t, 0, fired)
		assert.Equal(t, 1, b.pending())

		assert.True(t, b.set(ScopeAlbum, TagList{"Pop"}, nil))
		assert.Equal(t, 1, fired)
		assert.Equal(t, TagList{}, got[ScopeTrack])
		assert.Equal(t, 0, b.pending())

		assert.False(t, b.set(ScopeAlbum, TagList{"Other"}, nil))
		assert.Equal(t, 1, fired)
	})

	t.Run("concurrent completions", func(t *testing.T) {
		for range 100 {
			var mu sync.Mutex
			fired := 0
			b := newBarrier(func([numScopes]TagList, [numScopes]error) {
				mu.Lock()
				fired++
				mu.Unlock()
			})

			var wg sync.WaitGroup
			for s := range numScopes {
				for range 3 {
					wg.Add(1)
					go func() {
						defer wg.Done()
						b.set(Scope(s), TagList{"Rock"}, nil)
					}()
				}
			}
			wg.Wait()
			require.Equal(t, 1, fired)
		}
	})
}
