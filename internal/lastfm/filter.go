package lastfm

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/desertthunder/lfmgenre/internal/shared"
)

//go:embed ignore_tags.txt
var defaultIgnoreTags string

// Filter turns a TopTags reply into genre names.
//
// A Filter is read-only after construction and safe for concurrent use.
type Filter struct {
	minUsage int
	ignore   map[string]struct{}
}

// NewFilter creates a filter dropping tags used fewer than minUsage times and
// any tag whose name matches ignore, ignoring case.
func NewFilter(minUsage int, ignore []string) *Filter {
	f := &Filter{minUsage: minUsage, ignore: make(map[string]struct{}, len(ignore))}
	for _, name := range ignore {
		if name = shared.FoldName(name); name != "" {
			f.ignore[name] = struct{}{}
		}
	}
	return f
}

// Apply walks tags in reply order and stops at the first one below the usage
// threshold. Names are trimmed and lowercased, then dropped when ignored or
// equal to the artist or track the reply echoes, and title-cased otherwise.
func (f *Filter) Apply(tt *TopTags) []string {
	out := []string{}
	if tt == nil {
		return out
	}

	echoed := make(map[string]struct{}, 2)
	for _, name := range []string{tt.Artist, tt.Track} {
		if name = shared.FoldName(name); name != "" {
			echoed[name] = struct{}{}
		}
	}

	for _, tag := range tt.Tags {
		if tag.Usage() < f.minUsage {
			break
		}

		name := strings.ToLower(strings.TrimSpace(tag.Name))
		if name == "" {
			continue
		}

		key := shared.FoldName(name)
		if _, ok := echoed[key]; ok {
			continue
		}
		if f.Ignored(key) {
			continue
		}
		out = append(out, TitleCase(name))
	}
	return out
}

// Ignored reports whether name is on the ignore list.
func (f *Filter) Ignored(name string) bool {
	_, ok := f.ignore[shared.FoldName(name)]
	return ok
}

// DefaultIgnoreList returns the tag names shipped with the program.
func DefaultIgnoreList() []string {
	names, _ := readIgnoreList(strings.NewReader(defaultIgnoreTags))
	return names
}

// LoadIgnoreList returns the default ignore list extended with the names in
// path, one per line. Blank lines and lines starting with '#' are skipped.
// An empty path returns the default list.
func LoadIgnoreList(path string) ([]string, error) {
	names := DefaultIgnoreList()
	if path == "" {
		return names, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ignore list: %w", err)
	}
	defer f.Close()

	extra, err := readIgnoreList(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read ignore list %s: %w", path, err)
	}
	return append(names, extra...), nil
}

func readIgnoreList(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names, scanner.Err()
}
