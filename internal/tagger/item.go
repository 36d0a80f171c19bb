package tagger

// Metadata field names read and written on an [Item].
const (
	FieldArtist      = "artist"
	FieldTitle       = "title"
	FieldAlbum       = "album"
	FieldAlbumArtist = "albumartist"
	FieldGenre       = "genre"
)

// Item is the host object being tagged.
//
// AddRequest and DoneRequest move its in-flight request counter.
// FinalizeLoading is called after every DoneRequest; the host decides there
// whether the item has finished loading. All methods may be called from any goroutine.
type Item interface {
	Field(name string) string
	SetField(name string, values ...string)
	AddRequest()
	DoneRequest()
	FinalizeLoading()
}
