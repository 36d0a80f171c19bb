// package lastfm is a client for the Last.fm XML web service.
//
// Only the three *.gettoptags read methods are used. They need an API key
// but no session, so there is no authentication flow here.
//
// [Client.TopTags] returns the raw tag list; [Filter] turns it into the
// title-cased names written as genre.
package lastfm
