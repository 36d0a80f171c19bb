package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lfmgenre/internal/formatter"
	"github.com/desertthunder/lfmgenre/internal/models"
	"github.com/desertthunder/lfmgenre/internal/repositories"
	"github.com/desertthunder/lfmgenre/internal/shared"
)

func (r *Runner) historyRepos() (*repositories.TrackRepository, *repositories.RunRepository, error) {
	db, err := r.database()
	if err != nil {
		return nil, nil, err
	}
	return repositories.NewTrackRepository(db), repositories.NewRunRepository(db), nil
}

// findTrack resolves a track by absolute or relative path first, then by ID.
func findTrack(tracks *repositories.TrackRepository, ref string) (*models.Track, error) {
	track, err := tracks.GetByPath(ref)
	if err == nil || !notFound(err) {
		return track, err
	}
	if abs, absErr := filepath.Abs(ref); absErr == nil && abs != ref {
		if track, err := tracks.GetByPath(abs); err == nil || !notFound(err) {
			return track, err
		}
	}
	return tracks.Get(ref)
}

// TracksList prints recorded tracks filtered by status and artist.
func (r *Runner) TracksList(ctx context.Context, cmd *cli.Command) error {
	tracks, _, err := r.historyRepos()
	if err != nil {
		return err
	}

	status := strings.ToLower(cmd.String("status"))
	if status != "" && !models.TrackStatus(status).Valid() {
		return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidFlag, status)
	}

	list, err := tracks.List(map[string]any{
		"status": status,
		"artist": cmd.String("artist"),
		"limit":  int(cmd.Int("limit")),
	})
	if err != nil {
		return fmt.Errorf("failed to list tracks: %w", err)
	}

	r.logger.Debug("listed tracks", "count", len(list))
	return r.writeReport(cmd, formatter.NewReport(nil, list), formatter.FormatText)
}

// TracksShow prints one recorded track.
func (r *Runner) TracksShow(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.Args().First()
	if ref == "" {
		return fmt.Errorf("%w: a track path or ID is required", shared.ErrMissingArgument)
	}

	tracks, _, err := r.historyRepos()
	if err != nil {
		return err
	}

	track, err := findTrack(tracks, ref)
	if err != nil {
		return err
	}

	summary := formatter.NewTrackSummary(track)
	if cmd.Bool("json") {
		return r.writeJSON(summary, cmd.Bool("pretty"))
	}

	r.writePlainHeader(track.Path())
	r.writePlain("ID:           %s\n", track.ID())
	r.writePlain("Artist:       %s\n", track.Artist())
	r.writePlain("Title:        %s\n", track.Title())
	r.writePlain("Album:        %s\n", track.Album())
	r.writePlain("Album artist: %s\n", track.AlbumArtist())
	r.writePlain("Genre:        %s\n", track.Genre())
	r.writePlain("Status:       %s\n", track.Status())
	if track.Error() != "" {
		r.writePlain("Error:        %s\n", track.Error())
	}
	r.writePlain("Updated:      %s\n", track.UpdatedAt().Format("2006-01-02 15:04:05"))
	return nil
}

// TracksStats prints how many recorded tracks are in each status.
func (r *Runner) TracksStats(ctx context.Context, cmd *cli.Command) error {
	tracks, _, err := r.historyRepos()
	if err != nil {
		return err
	}

	counts, err := tracks.CountByStatus()
	if err != nil {
		return fmt.Errorf("failed to count tracks: %w", err)
	}

	statuses := []models.TrackStatus{models.StatusTagged, models.StatusSkipped, models.StatusFailed, models.StatusPending}
	if cmd.Bool("json") {
		out := make(map[string]int, len(statuses))
		for _, s := range statuses {
			out[string(s)] = counts[s]
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	total := 0
	for _, s := range statuses {
		r.writePlain("%-8s %d\n", s, counts[s])
		total += counts[s]
	}
	return r.writePlain("%-8s %d\n", "total", total)
}

// TracksDelete removes a track from the history.
func (r *Runner) TracksDelete(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.Args().First()
	if ref == "" {
		return fmt.Errorf("%w: a track path or ID is required", shared.ErrMissingArgument)
	}

	tracks, _, err := r.historyRepos()
	if err != nil {
		return err
	}

	track, err := findTrack(tracks, ref)
	if err != nil {
		return err
	}
	if err := tracks.Delete(track.ID()); err != nil {
		return err
	}

	r.logger.Info("deleted track", "id", track.ID(), "path", track.Path())
	return r.writePlain("✓ Deleted %s\n", track.Path())
}

// RunsList prints tag runs, newest first.
func (r *Runner) RunsList(ctx context.Context, cmd *cli.Command) error {
	_, runs, err := r.historyRepos()
	if err != nil {
		return err
	}

	list, err := runs.List(map[string]any{"limit": int(cmd.Int("limit"))})
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if cmd.Bool("json") {
		out := make([]*formatter.RunSummary, len(list))
		for i, run := range list {
			out[i] = formatter.NewRunSummary(run)
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	if len(list) == 0 {
		return r.writePlain("No tag runs recorded.\n")
	}

	r.writePlainHeader(fmt.Sprintf("Tag runs (%d)", len(list)))
	for _, run := range list {
		mode := ""
		if run.DryRun() {
			mode = " (dry run)"
		}
		state := shared.FormatDuration(run.Duration())
		if run.FinishedAt() == nil {
			state = "unfinished"
		}
		r.writePlain("%-5s %s  %d tagged, %d skipped, %d failed of %d  %s%s\n",
			formatter.RunLabel(run), run.StartedAt().Format("2006-01-02 15:04"),
			run.Tagged(), run.Skipped(), run.Failed(), run.Total(), state, mode)
	}
	return nil
}

// findRun resolves "latest", "#N" or "N".
func findRun(runs *repositories.RunRepository, ref string) (*models.TagRun, error) {
	if ref == "" || ref == "latest" {
		return runs.Latest()
	}
	seq, err := strconv.Atoi(strings.TrimPrefix(ref, "#"))
	if err != nil {
		return nil, fmt.Errorf("%w: run sequence must be a number or \"latest\", got %q", shared.ErrInvalidArgument, ref)
	}
	return runs.GetBySequence(seq)
}

// RunsShow prints a run report with its tracks.
func (r *Runner) RunsShow(ctx context.Context, cmd *cli.Command) error {
	tracks, runs, err := r.historyRepos()
	if err != nil {
		return err
	}

	run, err := findRun(runs, cmd.Args().First())
	if err != nil {
		return err
	}

	list, err := tracks.List(map[string]any{"run_id": run.ID()})
	if err != nil {
		return fmt.Errorf("failed to list tracks for run: %w", err)
	}

	return r.writeReport(cmd, formatter.NewReport(run, list), formatter.FormatText)
}

// RunsDelete deletes a run. Its tracks stay in the history without a run.
func (r *Runner) RunsDelete(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.Args().First()
	if ref == "" {
		return fmt.Errorf("%w: a run sequence is required", shared.ErrMissingArgument)
	}

	_, runs, err := r.historyRepos()
	if err != nil {
		return err
	}

	run, err := findRun(runs, ref)
	if err != nil {
		return err
	}
	if err := runs.Delete(run.ID()); err != nil {
		return err
	}

	r.logger.Info("deleted run", "id", run.ID(), "sequence", run.Sequence())
	return r.writePlain("✓ Deleted run %s\n", formatter.RunLabel(run))
}
