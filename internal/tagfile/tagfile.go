package tagfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"github.com/desertthunder/lfmgenre/internal/shared"
)

// GenreSeparator joins multiple genres in formats that store a single value.
const GenreSeparator = "; "

// Metadata holds the fields needed to look a track up.
type Metadata struct {
	Artist      string
	Title       string
	Album       string
	AlbumArtist string
	Genre       string
	Format      string
	FileType    string
}

// Read extracts metadata from the audio file at path.
func Read(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return nil, fmt.Errorf("%w: %s", shared.ErrNoMetadata, path)
		}
		return nil, fmt.Errorf("failed to read tags from %s: %w", path, err)
	}

	return &Metadata{
		Artist:      clean(m.Artist()),
		Title:       clean(m.Title()),
		Album:       clean(m.Album()),
		AlbumArtist: clean(m.AlbumArtist()),
		Genre:       clean(m.Genre()),
		Format:      string(m.Format()),
		FileType:    string(m.FileType()),
	}, nil
}

// WriteGenre replaces field of the file at path with values. An empty
// values clears it. The "genre" field maps to the format's genre frame
// (TCON, GENRE); any other name is stored as a custom field under its
// upper-cased name (TXXX, Vorbis comment).
func WriteGenre(path, field string, values []string) error {
	if !Writable(path) {
		return fmt.Errorf("%w: %s", shared.ErrUnsupportedFormat, filepath.Ext(path))
	}
	if strings.EqualFold(filepath.Ext(path), ".flac") {
		return writeFLACGenre(path, field, values)
	}
	return writeMP3Genre(path, field, values)
}

// isGenre reports whether field names the standard genre frame.
func isGenre(field string) bool {
	return field == "" || strings.EqualFold(field, "genre")
}

// Writable reports whether WriteGenre supports the file's extension.
func Writable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".flac":
		return true
	}
	return false
}

// Files is the on-disk implementation used by the tagging engine.
type Files struct{}

func (Files) Read(path string) (*Metadata, error) { return Read(path) }

func (Files) WriteGenre(path, field string, values []string) error {
	return WriteGenre(path, field, values)
}

func clean(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}
