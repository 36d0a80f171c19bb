// package formatter renders tag runs and tracked files as JSON, CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/lfmgenre/internal/models"
	"github.com/desertthunder/lfmgenre/internal/shared"
)

// Supported report formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// Formats lists every supported report format.
var Formats = []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// RunSummary is the JSON form of a [models.TagRun].
type RunSummary struct {
	ID         string     `json:"id"`
	Sequence   int        `json:"sequence"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Duration   string     `json:"duration"`
	DryRun     bool       `json:"dry_run"`
	Total      int        `json:"total"`
	Tagged     int        `json:"tagged"`
	Skipped    int        `json:"skipped"`
	Failed     int        `json:"failed"`
}

// TrackSummary is the JSON form of a [models.Track].
type TrackSummary struct {
	Path        string    `json:"path"`
	Artist      string    `json:"artist"`
	Title       string    `json:"title"`
	Album       string    `json:"album,omitempty"`
	AlbumArtist string    `json:"album_artist,omitempty"`
	Genre       string    `json:"genre,omitempty"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Report is the document written for a run.
type Report struct {
	Run    *RunSummary    `json:"run,omitempty"`
	Tracks []TrackSummary `json:"tracks"`
}

// NewRunSummary converts run for output
func NewRunSummary(run *models.TagRun) *RunSummary {
	if run == nil {
		return nil
	}
	return &RunSummary{
		ID:         run.ID(),
		Sequence:   run.Sequence(),
		StartedAt:  run.StartedAt(),
		FinishedAt: run.FinishedAt(),
		Duration:   shared.FormatDuration(run.Duration()),
		DryRun:     run.DryRun(),
		Total:      run.Total(),
		Tagged:     run.Tagged(),
		Skipped:    run.Skipped(),
		Failed:     run.Failed(),
	}
}

// NewTrackSummary converts track for output
func NewTrackSummary(track *models.Track) TrackSummary {
	return TrackSummary{
		Path:        track.Path(),
		Artist:      track.Artist(),
		Title:       track.Title(),
		Album:       track.Album(),
		AlbumArtist: track.AlbumArtist(),
		Genre:       track.Genre(),
		Status:      string(track.Status()),
		Error:       track.Error(),
		UpdatedAt:   track.UpdatedAt(),
	}
}

// NewReport builds a report for run; run may be nil for a plain track listing.
func NewReport(run *models.TagRun, tracks []*models.Track) *Report {
	report := &Report{Run: NewRunSummary(run), Tracks: make([]TrackSummary, len(tracks))}
	for i, track := range tracks {
		report.Tracks[i] = NewTrackSummary(track)
	}
	return report
}

// RunLabel is the short "#N" form of a run used in listings.
func RunLabel(run *models.TagRun) string {
	return "#" + strconv.Itoa(run.Sequence())
}

// ExportToJSON converts a report to indented JSON
func ExportToJSON(report *Report) ([]byte, error) {
	data, err := shared.MarshalJSON(report, true)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToCSV converts the report's tracks to CSV with columns: Path, Artist, Title, Album, Genre, Status, Error
func ExportToCSV(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Path", "Artist", "Title", "Album", "Genre", "Status", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range report.Tracks {
		record := []string{
			track.Path,
			track.Artist,
			track.Title,
			track.Album,
			track.Genre,
			track.Status,
			track.Error,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a report to Markdown with a summary and one table row per track
func ExportToMarkdown(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	if run := report.Run; run != nil {
		buf.WriteString(fmt.Sprintf("# Tag run #%d\n\n", run.Sequence))
		buf.WriteString(fmt.Sprintf("**Started**: %s\n", run.StartedAt.Format(time.RFC3339)))
		buf.WriteString(fmt.Sprintf("**Duration**: %s\n", run.Duration))
		if run.DryRun {
			buf.WriteString("**Dry run**: yes\n")
		}
		buf.WriteString(fmt.Sprintf("**Tracks**: %d (%d tagged, %d skipped, %d failed)\n\n",
			run.Total, run.Tagged, run.Skipped, run.Failed))
	} else {
		buf.WriteString("# Tracks\n\n")
	}

	if len(report.Tracks) == 0 {
		buf.WriteString("_No tracks._\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | Artist | Title | Genre | Status |\n")
	buf.WriteString("|---|--------|-------|-------|--------|\n")
	for i, track := range report.Tracks {
		status := track.Status
		if track.Error != "" {
			status += ": " + track.Error
		}
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n", i+1,
			escapeCell(track.Artist), escapeCell(track.Title), escapeCell(track.Genre), escapeCell(status)))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a report to plain text
func ExportToText(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	if run := report.Run; run != nil {
		buf.WriteString(fmt.Sprintf("Run: #%d\n", run.Sequence))
		buf.WriteString(fmt.Sprintf("Started: %s (%s)\n", run.StartedAt.Format(time.RFC3339), run.Duration))
		if run.DryRun {
			buf.WriteString("Dry run: yes\n")
		}
		buf.WriteString(fmt.Sprintf("Tracks: %d tagged, %d skipped, %d failed of %d\n\n",
			run.Tagged, run.Skipped, run.Failed, run.Total))
	}

	for i, track := range report.Tracks {
		genre := track.Genre
		if genre == "" {
			genre = "-"
		}
		buf.WriteString(fmt.Sprintf("%d. [%s] %s - %s: %s\n", i+1, track.Status, track.Artist, track.Title, genre))
		if track.Error != "" {
			buf.WriteString(fmt.Sprintf("   %s\n", track.Error))
		}
	}

	return buf.Bytes(), nil
}

// Render renders report in format.
func Render(report *Report, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		return ExportToJSON(report)
	case FormatCSV:
		return ExportToCSV(report)
	case FormatMarkdown, "md":
		return ExportToMarkdown(report)
	case FormatText, "text":
		return ExportToText(report)
	}
	return nil, fmt.Errorf("%w: unknown format %q (want one of %s)", shared.ErrInvalidFlag, format, strings.Join(Formats, ", "))
}

// Extension returns the file extension used for format, including the dot.
func Extension(format string) string {
	switch strings.ToLower(format) {
	case FormatCSV:
		return ".csv"
	case FormatMarkdown, "md":
		return ".md"
	case FormatText, "text":
		return ".txt"
	}
	return ".json"
}

// WriteReport renders report in format and writes it to path.
//
// Defaults to run_{sequence}{ext} in the working directory, or tracks{ext} without a run.
func WriteReport(report *Report, format, path string) (string, error) {
	if path == "" {
		path = "tracks" + Extension(format)
		if report.Run != nil {
			path = fmt.Sprintf("run_%d%s", report.Run.Sequence, Extension(format))
		}
	}

	data, err := Render(report, format)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
