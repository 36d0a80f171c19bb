package ui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/lfmgenre/internal/models"
	"github.com/desertthunder/lfmgenre/internal/tasks"
)

var (
	_ list.Item = fileItem{}
	_ list.Item = resultItem{}
)

// fileItem wraps a scanned audio file path to implement [list.Item].
type fileItem struct {
	path string
}

func (i fileItem) FilterValue() string { return i.path }
func (i fileItem) Title() string       { return filepath.Base(i.path) }
func (i fileItem) Description() string { return filepath.Dir(i.path) }

// resultItem wraps [tasks.TrackResult] to implement [list.Item].
type resultItem struct {
	result tasks.TrackResult
}

func (i resultItem) FilterValue() string { return i.result.Path }
func (i resultItem) Title() string {
	if i.result.Artist == "" {
		return filepath.Base(i.result.Path)
	}
	return fmt.Sprintf("%s - %s", i.result.Artist, i.result.Title)
}
func (i resultItem) Description() string {
	desc := fmt.Sprintf("%s • %s", styles.status(i.result.Status), i.result.GenreString())
	if i.result.Err != nil && i.result.Status == models.StatusFailed {
		desc = fmt.Sprintf("%s • %v", desc, i.result.Err)
	}
	return desc
}
