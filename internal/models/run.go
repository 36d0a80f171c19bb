package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/lfmgenre/internal/shared"
)

// TagRun is one batch tagging run over a set of files.
type TagRun struct {
	id         string
	sequence   int
	startedAt  time.Time
	finishedAt *time.Time
	dryRun     bool
	total      int
	tagged     int
	skipped    int
	failed     int
}

// NewTagRun creates a run starting now.
func NewTagRun(dryRun bool) *TagRun {
	return &TagRun{startedAt: time.Now(), dryRun: dryRun}
}

func (r *TagRun) ID() string             { return r.id }
func (r *TagRun) Sequence() int          { return r.sequence }
func (r *TagRun) StartedAt() time.Time   { return r.startedAt }
func (r *TagRun) FinishedAt() *time.Time { return r.finishedAt }
func (r *TagRun) DryRun() bool           { return r.dryRun }
func (r *TagRun) Total() int             { return r.total }
func (r *TagRun) Tagged() int            { return r.tagged }
func (r *TagRun) Skipped() int           { return r.skipped }
func (r *TagRun) Failed() int            { return r.failed }
func (r *TagRun) CreatedAt() time.Time   { return r.startedAt }

// UpdatedAt is the finish time, or the start time while the run is open.
func (r *TagRun) UpdatedAt() time.Time {
	if r.finishedAt != nil {
		return *r.finishedAt
	}
	return r.startedAt
}

func (r *TagRun) SetID(id string)             { r.id = id }
func (r *TagRun) SetSequence(seq int)         { r.sequence = seq }
func (r *TagRun) SetStartedAt(at time.Time)   { r.startedAt = at }
func (r *TagRun) SetFinishedAt(at *time.Time) { r.finishedAt = at }
func (r *TagRun) SetCounts(total, tagged, skipped, failed int) {
	r.total, r.tagged, r.skipped, r.failed = total, tagged, skipped, failed
}

// Record counts one finished track.
func (r *TagRun) Record(status TrackStatus) {
	r.total++
	switch status {
	case StatusTagged:
		r.tagged++
	case StatusSkipped:
		r.skipped++
	case StatusFailed:
		r.failed++
	}
}

// Finish marks the run finished now.
func (r *TagRun) Finish() {
	now := time.Now()
	r.finishedAt = &now
}

// Duration is how long the run took, or has taken so far.
func (r *TagRun) Duration() time.Duration {
	return r.UpdatedAt().Sub(r.startedAt)
}

func (r *TagRun) Validate() error {
	if r.startedAt.IsZero() {
		return fmt.Errorf("%w: run start time is required", shared.ErrInvalidInput)
	}
	if r.tagged+r.skipped+r.failed > r.total {
		return fmt.Errorf("%w: run counters exceed total", shared.ErrInvalidInput)
	}
	return nil
}
