package repositories

import (
	"fmt"

	"github.com/desertthunder/lfmgenre/internal/models"
)

// RunRecorder implements tasks.Recorder using RunRepository and TrackRepository.
//
// Tracks are saved by path, so a file tagged again keeps one row pointing at its latest run.
type RunRecorder struct {
	runs   *RunRepository
	tracks *TrackRepository
}

// NewRunRecorder creates a new RunRecorder with the given repositories
func NewRunRecorder(runs *RunRepository, tracks *TrackRepository) *RunRecorder {
	return &RunRecorder{runs: runs, tracks: tracks}
}

// StartRun stores a new run and assigns its ID and sequence.
func (a *RunRecorder) StartRun(run *models.TagRun) error {
	if err := a.runs.Create(run); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// RecordTrack saves the outcome for one file.
func (a *RunRecorder) RecordTrack(track *models.Track) error {
	if err := a.tracks.Save(track); err != nil {
		return fmt.Errorf("failed to record track %s: %w", track.Path(), err)
	}
	return nil
}

// FinishRun stores the run's final counters.
func (a *RunRecorder) FinishRun(run *models.TagRun) error {
	if run.ID() == "" {
		return a.StartRun(run)
	}
	if err := a.runs.Update(run); err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}
