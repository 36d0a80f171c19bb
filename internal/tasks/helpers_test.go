package tasks

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/lfmgenre/internal/models"
	"github.com/desertthunder/lfmgenre/internal/tagger"
)

// mockSource is a [tagger.Source] that answers from fixed tables and counts calls per key.
type mockSource struct {
	mu      sync.Mutex
	answers map[tagger.LookupKey]tagger.TagList
	errs    map[tagger.LookupKey]error
	calls   map[tagger.LookupKey]int
}

func newMockSource() *mockSource {
	return &mockSource{
		answers: make(map[tagger.LookupKey]tagger.TagList),
		errs:    make(map[tagger.LookupKey]error),
		calls:   make(map[tagger.LookupKey]int),
	}
}

// answer makes lookups of l return tags.
func (m *mockSource) answer(l tagger.Lookup, tags ...string) *mockSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answers[l.Key()] = tags
	return m
}

// fail makes lookups of l return err.
func (m *mockSource) fail(l tagger.Lookup, err error) *mockSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[l.Key()] = err
	return m
}

func (m *mockSource) Tags(ctx context.Context, l tagger.Lookup) (tagger.TagList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[l.Key()]++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.errs[l.Key()]; err != nil {
		return nil, err
	}
	return m.answers[l.Key()], nil
}

// callsFor reports how many times l was looked up.
func (m *mockSource) callsFor(l tagger.Lookup) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[l.Key()]
}

// mockRecorder keeps everything it is asked to record.
type mockRecorder struct {
	mu       sync.Mutex
	started  []*models.TagRun
	finished []*models.TagRun
	tracks   []*models.Track
	err      error
}

func (m *mockRecorder) StartRun(run *models.TagRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run.SetID("run-1")
	run.SetSequence(len(m.started) + 1)
	m.started = append(m.started, run)
	return m.err
}

func (m *mockRecorder) RecordTrack(track *models.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks = append(m.tracks, track)
	return m.err
}

func (m *mockRecorder) FinishRun(run *models.TagRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished = append(m.finished, run)
	return m.err
}

var errLookup = errors.New("connection refused")

func discardLogger() *log.Logger { return log.New(io.Discard) }

func newTestTagger(t *testing.T, src tagger.Source) *tagger.Tagger {
	t.Helper()
	tg, err := tagger.New(tagger.Options{Source: src, Logger: discardLogger()})
	if err != nil {
		t.Fatalf("tagger.New() error = %v", err)
	}
	return tg
}

// touch creates empty files under dir and returns their paths.
func touch(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, len(names))
	for i, name := range names {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(p, nil, 0644); err != nil {
			t.Fatalf("failed to create %s: %v", p, err)
		}
		paths[i] = p
	}
	return paths
}

func drain(ch <-chan ProgressUpdate) []ProgressUpdate {
	var updates []ProgressUpdate
	for {
		select {
		case u := <-ch:
			updates = append(updates, u)
		default:
			return updates
		}
	}
}

