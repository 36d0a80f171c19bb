// package testing contains shared testing utilities
package testing

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/lfmgenre/internal/shared"
	"github.com/desertthunder/lfmgenre/internal/tagfile"
)

// MockFiles is an in-memory stand-in for tagfile.Files.
//
// Read serves Metadata by path; unknown paths fail with [shared.ErrNoMetadata].
// WriteGenre records the values and field written per path.
type MockFiles struct {
	mu       sync.Mutex
	Metadata map[string]*tagfile.Metadata
	ReadErrs map[string]error
	WriteErr error
	Written  map[string][]string
	Fields   map[string]string
}

func NewMockFiles() *MockFiles {
	return &MockFiles{
		Metadata: make(map[string]*tagfile.Metadata),
		ReadErrs: make(map[string]error),
		Written:  make(map[string][]string),
		Fields:   make(map[string]string),
	}
}

// Add registers metadata for path.
func (m *MockFiles) Add(path, artist, title, album string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Metadata[path] = &tagfile.Metadata{Artist: artist, Title: title, Album: album}
}

func (m *MockFiles) Read(path string) (*tagfile.Metadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ReadErrs[path]; err != nil {
		return nil, err
	}
	md, ok := m.Metadata[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrNoMetadata, path)
	}
	cp := *md
	return &cp, nil
}

func (m *MockFiles) WriteGenre(path, field string, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Written[path] = append([]string(nil), values...)
	m.Fields[path] = field
	return nil
}

// Genre returns what was written to path and whether anything was.
func (m *MockFiles) Genre(path string) ([]string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Written[path]
	return v, ok
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
