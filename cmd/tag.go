package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lfmgenre/internal/formatter"
	"github.com/desertthunder/lfmgenre/internal/tagfile"
	"github.com/desertthunder/lfmgenre/internal/tagger"
	"github.com/desertthunder/lfmgenre/internal/tasks"
)

// Tag looks up genres for every audio file under the given paths and writes them to the files.
func (r *Runner) Tag(ctx context.Context, cmd *cli.Command) error {
	paths, err := r.paths(cmd)
	if err != nil {
		return err
	}

	engine, err := r.tagEngine()
	if err != nil {
		return err
	}

	opts := r.runOptions(cmd)
	r.logger.Info("starting tag run", "paths", len(paths), "dry_run", opts.DryRun, "workers", opts.Workers)

	progress := make(chan tasks.ProgressUpdate, 100)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logProgress(update)
		}
	}()

	result, err := engine.Run(ctx, progress, paths, opts)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("tag run failed: %w", err)
	}

	report := formatter.NewReport(result.Run, result.Models())
	if cmd.Bool("json") {
		return r.writeJSON(report, true)
	}
	return r.writeReport(cmd, report, formatter.FormatText)
}

func (r *Runner) logProgress(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.ScanPaths, tasks.RecordRun:
		r.logger.Info(update.Message, "phase", update.Phase)
	case tasks.LookupTags:
		if update.Step == 0 {
			r.logger.Info(update.Message, "phase", update.Phase)
			return
		}
		r.logger.Debug(update.Message, "phase", update.Phase)
	case tasks.Complete:
	default:
		r.logger.Debug(update.Message, "phase", update.Phase)
	}
}

// writeReport renders report with --format, to --output when given.
func (r *Runner) writeReport(cmd *cli.Command, report *formatter.Report, fallback string) error {
	format := cmd.String("format")
	if format == "" {
		format = fallback
	}

	if path := cmd.String("output"); path != "" {
		written, err := formatter.WriteReport(report, format, path)
		if err != nil {
			return err
		}
		r.logger.Info("report written", "path", written, "format", format)
		return r.writePlain("✓ Report written to %s\n", written)
	}

	data, err := formatter.Render(report, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// lookupResult is the JSON form of a single lookup.
type lookupResult struct {
	Artist      string              `json:"artist"`
	Title       string              `json:"title,omitempty"`
	Album       string              `json:"album,omitempty"`
	AlbumArtist string              `json:"album_artist,omitempty"`
	Tags        map[string][]string `json:"tags"`
	Genre       []string            `json:"genre"`
	Error       string              `json:"error,omitempty"`
}

// Lookup shows the tags Last.fm returns for one track and the genre they produce.
func (r *Runner) Lookup(ctx context.Context, cmd *cli.Command) error {
	md := &tagfile.Metadata{}
	if path := cmd.String("file"); path != "" {
		read, err := r.files.Read(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		md = read
	}
	for flag, field := range map[string]*string{
		"artist":       &md.Artist,
		"title":        &md.Title,
		"album":        &md.Album,
		"album-artist": &md.AlbumArtist,
	} {
		if cmd.IsSet(flag) {
			*field = cmd.String(flag)
		}
	}

	engine, err := r.tagEngine()
	if err != nil {
		return err
	}

	agg, _, err := engine.Lookup(ctx, md)
	if err != nil {
		return err
	}

	res := lookupResult{
		Artist:      md.Artist,
		Title:       md.Title,
		Album:       md.Album,
		AlbumArtist: md.AlbumArtist,
		Tags:        make(map[string][]string),
		Genre:       agg.Genre(),
	}
	if res.Genre == nil {
		res.Genre = []string{}
	}
	if err := agg.Err(); err != nil {
		res.Error = err.Error()
	}

	scopes := []tagger.Scope{tagger.ScopeArtist, tagger.ScopeTrack, tagger.ScopeAlbum}
	for _, s := range scopes {
		res.Tags[s.String()] = append([]string{}, agg.Tags(s)...)
	}

	if cmd.Bool("json") {
		return r.writeJSON(res, cmd.Bool("pretty"))
	}

	r.writePlainHeader(agg.Lookup(tagger.ScopeTrack).String())
	for _, s := range scopes {
		tags := "(none)"
		if len(res.Tags[s.String()]) > 0 {
			tags = strings.Join(res.Tags[s.String()], ", ")
		}
		r.writePlain("%-7s %s\n", s.String()+":", tags)
	}

	genre := "(none)"
	if len(res.Genre) > 0 {
		genre = strings.Join(res.Genre, tagfile.GenreSeparator)
	}
	r.writePlainln("Genre: %s", genre)
	if res.Error != "" {
		r.writePlain("Errors: %s\n", res.Error)
	}
	return nil
}
