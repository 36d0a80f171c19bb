package tasks

import (
	"fmt"
	"strings"
	"time"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ScanPaths Phase = iota
	ReadMetadata
	LookupTags
	WriteTags
	RecordRun
	Complete
)

func (p Phase) String() string {
	switch p {
	case ScanPaths:
		return "scan_paths"
	case ReadMetadata:
		return "read_metadata"
	case LookupTags:
		return "lookup_tags"
	case WriteTags:
		return "write_tags"
	case RecordRun:
		return "record_run"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func scanUpdate(found int, roots []string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanPaths,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d audio files in %s", found, strings.Join(roots, ", ")),
	}
}

func readUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadMetadata,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Reading %s", step, total, path),
	}
}

func lookupStartedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LookupTags,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Looking up tags for %d tracks on Last.fm...", total),
	}
}

func lookupDoneUpdate(step, total int, item *LibraryItem) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LookupTags,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, item.Field("artist"), item.Field("title")),
		Data:    item,
	}
}

func writeUpdate(step, total int, res TrackResult) ProgressUpdate {
	mark := "✓"
	switch {
	case res.Err != nil:
		mark = "✗"
	case len(res.Genre) == 0:
		mark = "-"
	}
	return ProgressUpdate{
		Phase:   WriteTags,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s: %s", step, total, mark, res.Path, res.GenreString()),
		Data:    res,
	}
}

func recordUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RecordRun,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Recording %d tracks...", total),
	}
}

func completeUpdate(result *RunResult) ProgressUpdate {
	run := result.Run
	return ProgressUpdate{
		Phase: Complete,
		Step:  1,
		Total: 1,
		Message: fmt.Sprintf("Done: %d tagged, %d skipped, %d failed in %s",
			run.Tagged(), run.Skipped(), run.Failed(), run.Duration().Round(time.Millisecond)),
		Data: result,
	}
}
