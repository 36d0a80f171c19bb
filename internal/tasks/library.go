package tasks

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/lfmgenre/internal/models"
	"github.com/desertthunder/lfmgenre/internal/shared"
	"github.com/desertthunder/lfmgenre/internal/tagger"
)

type pendingItem struct {
	item *LibraryItem
	agg  *tagger.Aggregator
}

// ScanLibrary expands paths into a sorted, de-duplicated list of audio files.
//
// Directories are walked recursively; files are kept when their extension
// matches one of extensions, ignoring case. Hidden directories are skipped.
func ScanLibrary(paths []string, extensions []string) ([]string, error) {
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = true
	}
	matches := func(p string) bool { return exts[strings.ToLower(filepath.Ext(p))] }

	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		if !info.IsDir() {
			if matches(root) {
				add(root)
			}
			continue
		}

		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() && matches(p) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", root, err)
		}
	}

	slices.Sort(files)
	return files, nil
}

// readAll reads every file's metadata with at most workers files open at
// once. Files that cannot be tagged get their final status in results and a
// nil entry in the returned slice.
func (e *TagEngine) readAll(ctx context.Context, progress chan<- ProgressUpdate, files []string, workers int, results []TrackResult) ([]*pendingItem, error) {
	items := make([]*pendingItem, len(files))
	var step atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res := &results[i]
			res.Path = path

			md, err := e.files.Read(path)
			e.sendProgress(progress, readUpdate(int(step.Add(1)), len(files), path))
			switch {
			case errors.Is(err, shared.ErrNoMetadata):
				res.Status, res.Err = models.StatusSkipped, err
				return nil
			case err != nil:
				e.logger.Warn("failed to read metadata", "path", path, "err", err)
				res.Status, res.Err = models.StatusFailed, err
				return nil
			}

			res.Artist, res.Title, res.Album, res.AlbumArtist = md.Artist, md.Title, md.Album, md.AlbumArtist
			if md.Artist == "" {
				res.Status, res.Err = models.StatusSkipped, errNoArtist
				return nil
			}

			items[i] = &pendingItem{item: NewLibraryItem(path, md)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("metadata read interrupted: %w", err)
	}
	return items, nil
}

// writeAll settles every result and writes the genre of tagged files unless
// the run is a dry run.
func (e *TagEngine) writeAll(ctx context.Context, progress chan<- ProgressUpdate, items []*pendingItem, opts RunOptions, results []TrackResult) error {
	var step atomic.Int32
	total := len(results)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i := range results {
		res := &results[i]
		classify(res)

		if res.Status != models.StatusTagged || items[i] == nil {
			e.sendProgress(progress, writeUpdate(int(step.Add(1)), total, *res))
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			if !opts.DryRun {
				if err := e.files.WriteGenre(res.Path, e.tagger.GenreField(), res.Genre); err != nil {
					e.logger.Warn("failed to write genre", "path", res.Path, "err", err)
					res.Status, res.Err = models.StatusFailed, err
				}
			}
			e.sendProgress(progress, writeUpdate(int(step.Add(1)), total, *res))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("write interrupted: %w", err)
	}
	return nil
}
