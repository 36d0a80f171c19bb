// package tagger looks up Last.fm top tags for an item and writes them as its genre.
//
// [Tagger.Process] fans out three lookups per item (artist, track and album)
// and joins them in an [Aggregator]. Lookups share a [Cache] of resolved tag
// lists and a [PendingTracker] of in-flight requests, so each distinct
// [LookupKey] is fetched at most once at a time no matter how many items
// ask for it.
//
// Resolved lists are cached for the lifetime of the Cache, including empty
// lists from replies that could not be parsed. Failed lookups are never
// cached and are retried by the next item that asks.
package tagger
