package tagfile

import (
	"fmt"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// writeMP3Genre sets TCON for the genre field and a TXXX frame described by
// the upper-cased field name otherwise. Other TXXX frames are kept.
func writeMP3Genre(path, field string, values []string) error {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open id3 tag: %w", err)
	}
	defer t.Close()

	if isGenre(field) {
		if len(values) == 0 {
			t.DeleteFrames(t.CommonID("Content type"))
		} else {
			t.SetGenre(strings.Join(values, GenreSeparator))
		}
	} else {
		setUserText(t, strings.ToUpper(field), values)
	}

	if err := t.Save(); err != nil {
		return fmt.Errorf("failed to save id3 tag: %w", err)
	}
	return nil
}

func setUserText(t *id3v2.Tag, desc string, values []string) {
	const id = "TXXX"
	var kept []id3v2.UserDefinedTextFrame
	for _, f := range t.GetFrames(id) {
		udtf, ok := f.(id3v2.UserDefinedTextFrame)
		if ok && !strings.EqualFold(udtf.Description, desc) {
			kept = append(kept, udtf)
		}
	}

	t.DeleteFrames(id)
	for _, udtf := range kept {
		t.AddUserDefinedTextFrame(udtf)
	}
	if len(values) > 0 {
		t.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    id3v2.EncodingUTF8,
			Description: desc,
			Value:       strings.Join(values, GenreSeparator),
		})
	}
}
