package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/lfmgenre/internal/shared"
)

// TrackStatus is the outcome of tagging one file.
type TrackStatus string

const (
	StatusPending TrackStatus = "pending"
	StatusTagged  TrackStatus = "tagged"
	StatusSkipped TrackStatus = "skipped"
	StatusFailed  TrackStatus = "failed"
)

// Valid reports whether s is a known status.
func (s TrackStatus) Valid() bool {
	switch s {
	case StatusPending, StatusTagged, StatusSkipped, StatusFailed:
		return true
	}
	return false
}

// Track is an audio file that went through a tagging run.
type Track struct {
	id          string
	sequence    int
	runID       string
	path        string
	artist      string
	title       string
	album       string
	albumArtist string
	matchKey    string
	genre       string
	status      TrackStatus
	errMsg      string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewTrack creates a pending track for the file at path.
func NewTrack(path, artist, title, album, albumArtist string) *Track {
	now := time.Now()
	return &Track{
		path:        path,
		artist:      artist,
		title:       title,
		album:       album,
		albumArtist: albumArtist,
		matchKey:    shared.NormalizeTrackKey(title, artist),
		status:      StatusPending,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (t *Track) ID() string           { return t.id }
func (t *Track) Sequence() int        { return t.sequence }
func (t *Track) RunID() string        { return t.runID }
func (t *Track) Path() string         { return t.path }
func (t *Track) Artist() string       { return t.artist }
func (t *Track) Title() string        { return t.title }
func (t *Track) Album() string        { return t.album }
func (t *Track) AlbumArtist() string  { return t.albumArtist }
func (t *Track) MatchKey() string     { return t.matchKey }
func (t *Track) Genre() string        { return t.genre }
func (t *Track) Status() TrackStatus  { return t.status }
func (t *Track) Error() string        { return t.errMsg }
func (t *Track) CreatedAt() time.Time { return t.createdAt }
func (t *Track) UpdatedAt() time.Time { return t.updatedAt }

func (t *Track) SetID(id string)           { t.id = id }
func (t *Track) SetSequence(seq int)       { t.sequence = seq }
func (t *Track) SetRunID(runID string)     { t.runID = runID }
func (t *Track) SetGenre(genre string)     { t.genre = genre }
func (t *Track) SetMatchKey(key string)    { t.matchKey = key }
func (t *Track) SetCreatedAt(at time.Time) { t.createdAt = at }
func (t *Track) SetUpdatedAt(at time.Time) { t.updatedAt = at }

// SetStatus records the outcome; errMsg is kept only for failures.
func (t *Track) SetStatus(status TrackStatus, errMsg string) {
	t.status = status
	if status == StatusFailed {
		t.errMsg = errMsg
	} else {
		t.errMsg = ""
	}
}

// Validate checks that the track has a path and a known status.
func (t *Track) Validate() error {
	if t.path == "" {
		return fmt.Errorf("%w: track path is required", shared.ErrInvalidInput)
	}
	if !t.status.Valid() {
		return fmt.Errorf("%w: unknown track status %q", shared.ErrInvalidInput, t.status)
	}
	return nil
}
