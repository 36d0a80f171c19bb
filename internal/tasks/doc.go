// Package tasks tags a music library with Last.fm genres and reports progress as it goes.
//
// # Core Operations
//
// [TagEngine] exposes two operations:
//
//  1. [TagEngine.Run] : Batch tagging of files and directories
//     - Scans the given paths for audio files ([ScanLibrary])
//     - Reads artist/title/album tags with a bounded worker pool
//     - Runs the tagger over every file and waits for all lookups
//     - Writes the merged genre back (skipped on dry runs)
//     - Returns one [TrackResult] per file plus the run's counters
//
//  2. [TagEngine.Lookup] : Tag a single artist/title/album without a file
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Run History
//
// The optional [Recorder] interface persists each run and its tracks (repositories.RunRecorder).
// Recording errors are logged and never interrupt a run.
//
// # Items
//
// [LibraryItem] is the host object handed to the tagger. Its request counter is
// raised for every outstanding lookup and its Loaded channel closes once the
// last one has completed and the genre has been set.
package tasks
