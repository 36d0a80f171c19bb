// Package repositories implements SQLite persistence for tracks and tagging runs.
//
// Key Implementations:
//   - [TrackRepository] : one row per audio file, keyed by path, with the last genre written
//   - [RunRepository] : batch run history with per-status counters
//   - [RunRecorder] : adapter the tagging engine uses to persist a run as it progresses
//
// Sequence numbers provide stable, human-readable ordering (e.g. run #12) independent of UUIDs and timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
