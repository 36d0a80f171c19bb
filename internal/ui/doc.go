// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks through one tagging run:
//  1. [FileListView] : Browse the audio files found under the given paths
//  2. [ConfirmView] : Confirm the run, optionally as a dry run
//  3. [TagView] : Monitor progress with a spinner and progress bar
//  4. [ResultView] : Per-file outcome and run counters
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the tagging engine, providing non-blocking status reporting during runs.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, d, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
