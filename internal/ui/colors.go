package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/lfmgenre/internal/models"
)

const (
	lastfmRed = "#D51007"
	green     = "#04B575"
	red       = "#FF0000"
	orange    = "#FFA500"
	grey      = "#626262"
)

var styles = newPalette()

// Palette colors text by track status. The title uses Last.fm red.
type Palette struct {
	title   lipgloss.Style
	tagged  lipgloss.Style
	skipped lipgloss.Style
	failed  lipgloss.Style
	muted   lipgloss.Style
}

func newPalette() *Palette {
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }
	return &Palette{
		title:   fg(lastfmRed).Bold(true).MarginBottom(1),
		tagged:  fg(green).Bold(true),
		skipped: fg(orange),
		failed:  fg(red).Bold(true),
		muted:   fg(grey).Italic(true),
	}
}

// status renders s with its marker.
func (p *Palette) status(s models.TrackStatus) string {
	switch s {
	case models.StatusTagged:
		return p.tagged.Render("✓ " + string(s))
	case models.StatusFailed:
		return p.failed.Render("✗ " + string(s))
	case models.StatusSkipped:
		return p.skipped.Render("- " + string(s))
	}
	return p.muted.Render(string(s))
}
