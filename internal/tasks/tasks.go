// package tasks implements batch genre tagging of audio files.
//
// The core abstraction is TagEngine, which scans a library, reads each file's metadata,
// runs the tagger over it and writes the merged genre back.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/lfmgenre/internal/models"
	"github.com/desertthunder/lfmgenre/internal/shared"
	"github.com/desertthunder/lfmgenre/internal/tagfile"
	"github.com/desertthunder/lfmgenre/internal/tagger"
)

// FileIO reads metadata from and writes genres to audio files.
// [tagfile.Files] is the on-disk implementation.
type FileIO interface {
	Read(path string) (*tagfile.Metadata, error)
	WriteGenre(path, field string, values []string) error
}

// Recorder persists runs and the tracks they touched.
//
// Recording is best effort: failures are logged and never stop a run.
type Recorder interface {
	StartRun(run *models.TagRun) error
	RecordTrack(track *models.Track) error
	FinishRun(run *models.TagRun) error
}

// RunOptions configures one [TagEngine.Run].
type RunOptions struct {
	DryRun     bool     // Look tags up without writing files
	Workers    int      // Concurrent metadata readers and writers (default: 4)
	Extensions []string // File extensions to scan for (default: .mp3, .flac)
}

// TrackResult is the outcome for one file.
type TrackResult struct {
	Path        string
	Artist      string
	Title       string
	Album       string
	AlbumArtist string
	Genre       []string
	Status      models.TrackStatus
	Err         error
}

// GenreString joins the genre values for display.
func (r TrackResult) GenreString() string {
	if len(r.Genre) == 0 {
		return "(none)"
	}
	return strings.Join(r.Genre, tagfile.GenreSeparator)
}

// Track converts the result into the model persisted for runID.
func (r TrackResult) Track(runID string) *models.Track {
	track := models.NewTrack(r.Path, r.Artist, r.Title, r.Album, r.AlbumArtist)
	track.SetRunID(runID)
	track.SetGenre(strings.Join(r.Genre, tagfile.GenreSeparator))
	errMsg := ""
	if r.Err != nil {
		errMsg = r.Err.Error()
	}
	track.SetStatus(r.Status, errMsg)
	return track
}

// RunResult contains everything a [TagEngine.Run] did.
type RunResult struct {
	Run    *models.TagRun
	Tracks []TrackResult
}

// Models returns the tracks as they are recorded.
func (r *RunResult) Models() []*models.Track {
	tracks := make([]*models.Track, len(r.Tracks))
	for i, res := range r.Tracks {
		tracks[i] = res.Track(r.Run.ID())
	}
	return tracks
}

// TagEngine runs the tagger over audio files.
type TagEngine struct {
	tagger   *tagger.Tagger
	files    FileIO
	recorder Recorder
	logger   *log.Logger
}

// NewTagEngine creates a TagEngine. recorder may be nil.
func NewTagEngine(t *tagger.Tagger, files FileIO, recorder Recorder, logger *log.Logger) *TagEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TagEngine{
		tagger:   t,
		files:    files,
		recorder: recorder,
		logger:   shared.WithLogger(logger, "component", "tasks"),
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *TagEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run tags every audio file found under paths.
//
// Files without readable tags or without an artist are skipped. Lookup
// failures leave the affected scope without tags; a file fails only when
// nothing was found and at least one lookup failed, or when writing fails.
// The returned error is set only when ctx ends the run early.
func (e *TagEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, paths []string, opts RunOptions) (*RunResult, error) {
	if e.tagger == nil || e.files == nil {
		return nil, fmt.Errorf("%w: tag engine not initialized", shared.ErrServiceUnavailable)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no paths to tag", shared.ErrMissingArgument)
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{".mp3", ".flac"}
	}

	files, err := ScanLibrary(paths, opts.Extensions)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, scanUpdate(len(files), paths))

	run := models.NewTagRun(opts.DryRun)
	e.startRun(run)
	result := &RunResult{Run: run, Tracks: make([]TrackResult, len(files))}

	items, err := e.readAll(ctx, progress, files, opts.Workers, result.Tracks)
	if err != nil {
		return result, err
	}

	if err := e.lookupAll(ctx, progress, items, result.Tracks); err != nil {
		return result, err
	}

	if err := e.writeAll(ctx, progress, items, opts, result.Tracks); err != nil {
		return result, err
	}

	e.sendProgress(progress, recordUpdate(len(result.Tracks)))
	for _, res := range result.Tracks {
		run.Record(res.Status)
		e.recordTrack(run, res)
	}
	run.Finish()
	e.finishRun(run)

	e.logger.Info("tag run finished",
		"run", run.Sequence(), "total", run.Total(), "tagged", run.Tagged(),
		"skipped", run.Skipped(), "failed", run.Failed(), "dry_run", run.DryRun())
	e.sendProgress(progress, completeUpdate(result))
	return result, nil
}

// Lookup runs the tagger over metadata that did not come from a file and
// returns the finished aggregator.
func (e *TagEngine) Lookup(ctx context.Context, md *tagfile.Metadata) (*tagger.Aggregator, *LibraryItem, error) {
	if e.tagger == nil {
		return nil, nil, fmt.Errorf("%w: tag engine not initialized", shared.ErrServiceUnavailable)
	}
	if md == nil || md.Artist == "" {
		return nil, nil, fmt.Errorf("%w: an artist is required", shared.ErrMissingArgument)
	}

	item := NewLibraryItem("", md)
	agg := e.tagger.Process(ctx, item)
	if err := waitLoaded(ctx, item); err != nil {
		return agg, item, err
	}
	return agg, item, nil
}

// lookupAll starts one aggregator per item and waits until every item has
// finished loading. Items are nil for files that were skipped or failed.
func (e *TagEngine) lookupAll(ctx context.Context, progress chan<- ProgressUpdate, items []*pendingItem, results []TrackResult) error {
	total := 0
	for _, it := range items {
		if it != nil {
			total++
		}
	}
	e.sendProgress(progress, lookupStartedUpdate(total))

	for _, it := range items {
		if it != nil {
			it.agg = e.tagger.Process(ctx, it.item)
		}
	}

	step := 0
	for i, it := range items {
		if it == nil {
			continue
		}
		if err := waitLoaded(ctx, it.item); err != nil {
			return fmt.Errorf("lookup interrupted: %w", err)
		}
		step++

		results[i].Genre = it.agg.Genre()
		if len(results[i].Genre) == 0 {
			results[i].Err = it.agg.Err()
		}
		e.sendProgress(progress, lookupDoneUpdate(step, total, it.item))
	}
	return nil
}

func (e *TagEngine) startRun(run *models.TagRun) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.StartRun(run); err != nil {
		e.logger.Warn("failed to record run start", "err", err)
	}
}

func (e *TagEngine) finishRun(run *models.TagRun) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.FinishRun(run); err != nil {
		e.logger.Warn("failed to record run finish", "run", run.ID(), "err", err)
	}
}

func (e *TagEngine) recordTrack(run *models.TagRun, res TrackResult) {
	if e.recorder == nil {
		return
	}

	track := res.Track(run.ID())
	if err := e.recorder.RecordTrack(track); err != nil {
		e.logger.Warn("failed to record track", "path", res.Path, "err", err)
	}
}

// classify settles the status of a file whose lookups have finished.
func classify(res *TrackResult) {
	switch {
	case res.Status != "":
	case len(res.Genre) > 0:
		res.Status = models.StatusTagged
	case res.Err != nil:
		res.Status = models.StatusFailed
	default:
		res.Status = models.StatusSkipped
		res.Err = errNoTags
	}
}

var (
	errNoArtist = errors.New("no artist tag")
	errNoTags   = errors.New("no tags found")
)

func waitLoaded(ctx context.Context, item *LibraryItem) error {
	select {
	case <-item.Loaded():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
