package shared

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// punctuation maps typographic punctuation to its ASCII-safe equivalent.
var punctuation = strings.NewReplacer(
	"‘", "'", "’", "'", "‚", "'", "‛", "'", "′", "'", "´", "'",
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`, "″", `"`,
	"‐", "-", "‑", "-", "‒", "-", "–", "-", "—", "-", "―", "-", "−", "-",
	"…", "...",
	"‹", "<", "›", ">", "«", "<<", "»", ">>",
	"⁄", "/", "∕", "/",
	"\u00a0", " ", "\u2009", " ", "\u202f", " ",
)

// folder returns a fresh case folder; a cases.Caser is not safe for concurrent use.
func folder() cases.Caser { return cases.Fold() }

// NormalizePunctuation replaces typographic quotes, dashes, ellipses and spaces with ASCII equivalents.
func NormalizePunctuation(s string) string {
	return punctuation.Replace(s)
}

// NormalizeField prepares a metadata value for use in a lookup.
//
// The value is composed to NFC, punctuation is made ASCII-safe and surrounding whitespace is trimmed.
// Case is preserved: lookup identity is case-sensitive.
func NormalizeField(s string) string {
	return strings.TrimSpace(NormalizePunctuation(norm.NFC.String(s)))
}

// FoldName returns the case-folded, trimmed form of a tag or artist name for case-insensitive comparison.
func FoldName(s string) string {
	return folder().String(strings.TrimSpace(s))
}

// NormalizeTrackKey returns a case-insensitive title|artist key with collapsed whitespace.
//
// Used to match persisted tracks that were tagged from differently formatted metadata.
func NormalizeTrackKey(title, artist string) string {
	clean := func(s string) string {
		return strings.Join(strings.Fields(strings.ToLower(NormalizeField(s))), " ")
	}
	return clean(title) + "|" + clean(artist)
}
