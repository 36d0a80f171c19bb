package lastfm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// smallWords stay lowercase unless they open or close the name.
var smallWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "as": {}, "at": {}, "but": {}, "by": {},
	"en": {}, "for": {}, "if": {}, "in": {}, "of": {}, "on": {}, "or": {},
	"the": {}, "to": {}, "v": {}, "v.": {}, "via": {}, "vs": {}, "vs.": {},
	"'n'": {}, "n'": {},
}

// TitleCase capitalizes each word of s except small connecting words in the
// middle, so "drum and bass" becomes "Drum and Bass" and "hip-hop" becomes "Hip-Hop".
// Words that start with a digit, like "80s", are left alone.
func TitleCase(s string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	upper := cases.Upper(language.English)
	last := len(words) - 1
	for i, w := range words {
		lower := strings.ToLower(w)
		if _, small := smallWords[lower]; small && i != 0 && i != last {
			words[i] = lower
			continue
		}
		parts := strings.Split(w, "-")
		for j, p := range parts {
			parts[j] = capitalize(upper, p)
		}
		words[i] = strings.Join(parts, "-")
	}
	return strings.Join(words, " ")
}

// capitalize uppercases the first letter of w when nothing but punctuation
// precedes it. The rest of w is kept as is.
func capitalize(upper cases.Caser, w string) string {
	for i, r := range w {
		switch {
		case unicode.IsLetter(r):
			size := utf8.RuneLen(r)
			return w[:i] + upper.String(w[i:i+size]) + w[i+size:]
		case unicode.IsDigit(r):
			return w
		}
	}
	return w
}
