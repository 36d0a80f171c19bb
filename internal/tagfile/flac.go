package tagfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"

	"github.com/desertthunder/lfmgenre/internal/shared"
)

// writeFLACGenre rewrites the comments named by field (GENRE by default), one
// per value, keeping every other comment.
func writeFLACGenre(path, field string, values []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", shared.ErrCorruptFile, path, r)
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read FLAC file: %w", err)
	}
	if !hasFrames(data) {
		return fmt.Errorf("%w: %s has no audio frames", shared.ErrCorruptFile, path)
	}

	// Parsed from memory so that saving over path cannot clobber unread frames.
	f, err := flac.ParseBytes(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to parse FLAC file: %w", err)
	}

	idx := -1
	var cmt *flacvorbis.MetaDataBlockVorbisComment
	for i, block := range f.Meta {
		if block.Type != flac.VorbisComment {
			continue
		}
		cmt, err = flacvorbis.ParseFromMetaDataBlock(*block)
		if err != nil {
			return fmt.Errorf("failed to parse vorbis comment: %w", err)
		}
		idx = i
		break
	}
	if cmt == nil {
		cmt = flacvorbis.New()
	}

	key := flacvorbis.FIELD_GENRE
	if !isGenre(field) {
		key = strings.ToUpper(field)
	}

	kept := cmt.Comments[:0]
	for _, c := range cmt.Comments {
		name, _, _ := strings.Cut(c, "=")
		if !strings.EqualFold(name, key) {
			kept = append(kept, c)
		}
	}
	cmt.Comments = kept

	for _, v := range values {
		if err := cmt.Add(key, v); err != nil {
			return fmt.Errorf("failed to add genre: %w", err)
		}
	}

	block := cmt.Marshal()
	if idx >= 0 {
		f.Meta[idx] = &block
	} else {
		f.Meta = append(f.Meta, &block)
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("failed to save FLAC file: %w", err)
	}
	return nil
}

// hasFrames walks the metadata blocks of data and reports whether a frame
// sync code follows them.
func hasFrames(data []byte) bool {
	if len(data) < 4 || string(data[:4]) != "fLaC" {
		return false
	}
	pos := 4
	for {
		if pos+4 > len(data) {
			return false
		}
		header := binary.BigEndian.Uint32(data[pos:])
		last := header>>31 != 0
		pos += 4 + int(header&0xFFFFFF)
		if last {
			break
		}
	}
	return pos+2 <= len(data) && data[pos] == 0xFF && data[pos+1]>>2 == 0x3E
}
