package tagger

import (
	"strings"
	"unicode/utf8"
)

// MaxJoinedLength bounds a joined genre string, in characters. Results are always shorter.
const MaxJoinedLength = 255

// Merge concatenates lists in order and drops repeats, keeping the first occurrence.
func Merge(lists ...TagList) TagList {
	seen := make(map[string]struct{})
	out := TagList{}
	for _, list := range lists {
		for _, tag := range list {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}

// Join joins tags with sep, stopping before the first tag that would bring
// the result to MaxJoinedLength characters. Tags are never cut.
func Join(tags TagList, sep string) string {
	var b strings.Builder
	n := 0
	for i, tag := range tags {
		piece := tag
		if i > 0 {
			piece = sep + tag
		}
		size := utf8.RuneCountInString(piece)
		if n+size >= MaxJoinedLength {
			break
		}
		b.WriteString(piece)
		n += size
	}
	return b.String()
}
