package lastfm

import (
	"strconv"
	"strings"
)

// Method names for the top tags of each scope.
const (
	MethodArtistTopTags = "artist.gettoptags"
	MethodTrackTopTags  = "track.gettoptags"
	MethodAlbumTopTags  = "album.gettoptags"
)

const (
	statusOK     = "ok"
	statusFailed = "failed"
)

// response is the <lfm> envelope around every reply.
type response struct {
	Status  string        `xml:"status,attr"`
	Error   *errorElement `xml:"error"`
	TopTags *TopTags      `xml:"toptags"`
}

type errorElement struct {
	Code    string `xml:"code,attr"`
	Message string `xml:",chardata"`
}

// TopTags is the <toptags> element. Artist and Track echo the names Last.fm
// resolved the request to and may be empty.
type TopTags struct {
	Artist string `xml:"artist,attr"`
	Track  string `xml:"track,attr"`
	Album  string `xml:"album,attr"`
	Tags   []Tag  `xml:"tag"`
}

// Tag is a single user-assigned tag. Count is kept as text because Last.fm
// does not always send a number.
type Tag struct {
	Name  string `xml:"name"`
	Count string `xml:"count"`
	URL   string `xml:"url"`
}

// Usage parses Count, treating anything unparseable as zero.
func (t Tag) Usage() int {
	n, err := strconv.Atoi(strings.TrimSpace(t.Count))
	if err != nil {
		return 0
	}
	return n
}
