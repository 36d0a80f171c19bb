package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/lfmgenre/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgFilesScanned MsgKind = iota
	MsgProgressUpdate
	MsgRunComplete
)

type filesScanned struct {
	files []string
	err   error
}

type runOutcome struct {
	result *tasks.RunResult
	err    error
}

// filesScannedMsg is the constructor for [MsgFilesScanned]
func filesScannedMsg(files []string, err error) Msg {
	return Msg{kind: MsgFilesScanned, data: filesScanned{files, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// runCompleteMsg is the constructor for [MsgRunComplete]
func runCompleteMsg(result *tasks.RunResult, err error) Msg {
	return Msg{kind: MsgRunComplete, data: runOutcome{result, err}}
}
