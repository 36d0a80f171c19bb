package tagger

import (
	"context"

	"github.com/desertthunder/lfmgenre/internal/lastfm"
)

// Source resolves a single lookup. Implementations must be safe for concurrent use.
//
// A nil error with an empty list means "found nothing" and is cached;
// any error leaves the key uncached.
type Source interface {
	Tags(ctx context.Context, l Lookup) (TagList, error)
}

// SourceFunc adapts a function to [Source].
type SourceFunc func(ctx context.Context, l Lookup) (TagList, error)

func (f SourceFunc) Tags(ctx context.Context, l Lookup) (TagList, error) { return f(ctx, l) }

// LastFMSource looks tags up on Last.fm and filters them.
type LastFMSource struct {
	client *lastfm.Client
	filter *lastfm.Filter
}

func NewLastFMSource(client *lastfm.Client, filter *lastfm.Filter) *LastFMSource {
	return &LastFMSource{client: client, filter: filter}
}

func (s *LastFMSource) Tags(ctx context.Context, l Lookup) (TagList, error) {
	top, err := s.client.TopTags(ctx, l.Scope.Method(), l.Params())
	if err != nil {
		return nil, err
	}
	return TagList(s.filter.Apply(top)), nil
}
