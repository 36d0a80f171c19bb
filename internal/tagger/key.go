package tagger

import (
	"net/url"
	"strings"

	"github.com/desertthunder/lfmgenre/internal/lastfm"
)

// Scope is the entity a lookup asks tags for.
type Scope int

const (
	ScopeArtist Scope = iota
	ScopeTrack
	ScopeAlbum

	numScopes = 3
)

// keySep separates the fields of a LookupKey. It cannot appear in metadata text.
const keySep = "\x1f"

func (s Scope) String() string {
	switch s {
	case ScopeArtist:
		return "artist"
	case ScopeTrack:
		return "track"
	case ScopeAlbum:
		return "album"
	}
	return "unknown"
}

// Method is the web service method returning top tags for s.
func (s Scope) Method() string {
	switch s {
	case ScopeTrack:
		return lastfm.MethodTrackTopTags
	case ScopeAlbum:
		return lastfm.MethodAlbumTopTags
	}
	return lastfm.MethodArtistTopTags
}

// LookupKey identifies a cache or pending entry. Keys compare exactly; no case folding.
type LookupKey string

// TagList is an ordered list of genre names, most used first. It may be empty.
type TagList []string

// Lookup holds the normalized fields of one request. For album lookups
// Artist is the album artist.
type Lookup struct {
	Scope  Scope
	Artist string
	Title  string
	Album  string
}

func ArtistLookup(artist string) Lookup {
	return Lookup{Scope: ScopeArtist, Artist: artist}
}

func TrackLookup(artist, title string) Lookup {
	return Lookup{Scope: ScopeTrack, Artist: artist, Title: title}
}

func AlbumLookup(album, albumArtist string) Lookup {
	return Lookup{Scope: ScopeAlbum, Artist: albumArtist, Album: album}
}

// Key returns the identity of l.
func (l Lookup) Key() LookupKey {
	switch l.Scope {
	case ScopeTrack:
		return LookupKey(strings.Join([]string{"t", l.Artist, l.Title}, keySep))
	case ScopeAlbum:
		return LookupKey(strings.Join([]string{"al", l.Album, l.Artist}, keySep))
	}
	return LookupKey("ar" + keySep + l.Artist)
}

// Params returns the identifying query parameters of l.
func (l Lookup) Params() url.Values {
	p := url.Values{"artist": {l.Artist}}
	switch l.Scope {
	case ScopeTrack:
		p.Set("track", l.Title)
	case ScopeAlbum:
		p.Set("album", l.Album)
	}
	return p
}

func (l Lookup) String() string {
	switch l.Scope {
	case ScopeTrack:
		return l.Artist + " - " + l.Title
	case ScopeAlbum:
		return l.Artist + " - " + l.Album
	}
	return l.Artist
}
