package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/lfmgenre/internal/formatter"
	"github.com/desertthunder/lfmgenre/internal/shared"
	"github.com/desertthunder/lfmgenre/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	FileListView ViewState = iota
	ConfirmView
	TagView
	ResultView
)

// Engine runs a tagging pass; [tasks.TagEngine] implements it.
type Engine interface {
	Run(ctx context.Context, progress chan<- tasks.ProgressUpdate, paths []string, opts tasks.RunOptions) (*tasks.RunResult, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       Engine
	paths        []string
	opts         tasks.RunOptions
	width        int
	height       int
	files        []string
	fileList     list.Model
	resultList   list.Model
	progressChan chan tasks.ProgressUpdate
	outcome      chan runOutcome
	progress     tasks.ProgressUpdate
	bar          progress.Model
	spinner      spinner.Model
	result       *tasks.RunResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model that tags the audio files under paths.
func NewModel(ctx context.Context, engine Engine, paths []string, opts tasks.RunOptions) *Model {
	return &Model{
		ctx:        ctx,
		view:       FileListView,
		engine:     engine,
		paths:      paths,
		opts:       opts,
		fileList:   list.New(nil, list.NewDefaultDelegate(), 0, 0),
		resultList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		bar:        progress.New(progress.WithDefaultGradient()),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init initializes the TUI by scanning the library.
func (m *Model) Init() tea.Cmd {
	return m.scanFiles()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.fileList.SetSize(max(msg.Width-4, 0), max(msg.Height-8, 0))
		m.resultList.SetSize(max(msg.Width-4, 0), max(msg.Height-12, 0))
		m.bar.Width = max(msg.Width-8, 20)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case FileListView:
			return m.handleFileListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case TagView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case spinner.TickMsg:
		if m.view != TagView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgFilesScanned:
		data := msg.data.(filesScanned)
		if data.err != nil {
			m.err = data.err
			return m, tea.Quit
		}
		m.files = data.files
		items := make([]list.Item, len(data.files))
		for i, f := range data.files {
			items[i] = fileItem{path: f}
		}
		m.fileList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.fileList.Title = fmt.Sprintf("Audio files (%d)", len(data.files))
		m.fileList.SetSize(max(m.width-4, 0), max(m.height-8, 0))
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgRunComplete:
		data := msg.data.(runOutcome)
		m.result = data.result
		m.err = data.err
		m.progressChan = nil
		m.outcome = nil
		m.view = ResultView
		if m.result != nil {
			items := make([]list.Item, len(m.result.Tracks))
			for i, res := range m.result.Tracks {
				items[i] = resultItem{result: res}
			}
			m.resultList = list.New(items, list.NewDefaultDelegate(), 0, 0)
			m.resultList.Title = "Results"
			m.resultList.SetSize(max(m.width-4, 0), max(m.height-12, 0))
		}
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.failed.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case FileListView:
		return m.renderFileList()
	case ConfirmView:
		return m.renderConfirm()
	case TagView:
		return m.renderTagging()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

// Result returns the last run, if any.
func (m *Model) Result() *tasks.RunResult { return m.result }

func (m *Model) handleFileListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.fileList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.fileList, cmd = m.fileList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.dryRun):
		m.opts.DryRun = !m.opts.DryRun
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if len(m.files) > 0 {
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.fileList, cmd = m.fileList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = FileListView
		return m, nil
	case key.Matches(msg, m.keys.dryRun):
		m.opts.DryRun = !m.opts.DryRun
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = TagView
		return m, m.startRun()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = FileListView
		m.progress = tasks.ProgressUpdate{}
		m.result = nil
		m.err = nil
		return m, m.scanFiles()
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case FileListView:
		m.fileList, cmd = m.fileList.Update(msg)
	case ResultView:
		m.resultList, cmd = m.resultList.Update(msg)
	}
	return m, cmd
}

func (m *Model) scanFiles() tea.Cmd {
	paths, exts := m.paths, m.opts.Extensions
	return func() tea.Msg {
		files, err := tasks.ScanLibrary(paths, exts)
		return filesScannedMsg(files, err)
	}
}

// startRun runs the engine on its own goroutine. The progress channel is
// closed once Run has returned and its outcome is waiting on m.outcome.
func (m *Model) startRun() tea.Cmd {
	progressChan := make(chan tasks.ProgressUpdate, 50)
	outcome := make(chan runOutcome, 1)
	m.progressChan, m.outcome = progressChan, outcome

	ctx, engine, files, opts := m.ctx, m.engine, m.files, m.opts
	go func() {
		result, err := engine.Run(ctx, progressChan, files, opts)
		outcome <- runOutcome{result: result, err: err}
		close(progressChan)
	}()

	return tea.Batch(m.spinner.Tick, m.waitForProgress())
}

func (m *Model) waitForProgress() tea.Cmd {
	progressChan, outcome := m.progressChan, m.outcome
	return func() tea.Msg {
		if progressChan == nil {
			return runCompleteMsg(nil, fmt.Errorf("%w: no run in progress", shared.ErrInternal))
		}

		update, ok := <-progressChan
		if !ok {
			out := <-outcome
			return runCompleteMsg(out.result, out.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) dryRunLabel() string {
	if m.opts.DryRun {
		return styles.skipped.Render("dry run: files will not be written")
	}
	return styles.muted.Render("genres will be written to files")
}

func (m *Model) renderFileList() string {
	helpView := m.help.ShortHelpView(m.keys.forView(m.view))
	return fmt.Sprintf("%s\n%s\n\n%s", m.fileList.View(), m.dryRunLabel(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Look up Last.fm genres for %d files?", len(m.files)))
	info := fmt.Sprintf("\nPaths: %s\n%s\n", strings.Join(m.paths, ", "), m.dryRunLabel())

	helpView := m.help.ShortHelpView(m.keys.forView(m.view))

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderTagging() string {
	title := styles.title.Render("Tagging")

	var phase string
	switch m.progress.Phase {
	case tasks.ScanPaths:
		phase = "Scanning library..."
	case tasks.ReadMetadata:
		phase = fmt.Sprintf("Reading tags (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.LookupTags:
		phase = fmt.Sprintf("Looking up Last.fm tags (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.WriteTags:
		phase = fmt.Sprintf("Writing genres (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.RecordRun:
		phase = "Recording run..."
	default:
		phase = "Processing..."
	}

	ratio := 0.0
	if m.progress.Total > 0 {
		ratio = float64(m.progress.Step) / float64(m.progress.Total)
	}

	return fmt.Sprintf("%s\n\n%s %s\n%s\n\n%s", title, m.spinner.View(), phase, m.bar.ViewAs(ratio), m.progress.Message)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView(m.keys.forView(m.view))

	if m.err != nil {
		return styles.failed.Render(fmt.Sprintf("Tagging failed: %v", m.err)) + "\n\n" + helpView
	}
	if m.result == nil {
		return styles.failed.Render("No result available") + "\n\n" + helpView
	}

	run := m.result.Run
	title := styles.tagged.Render(fmt.Sprintf("✓ Run %s complete", formatter.RunLabel(run)))
	info := fmt.Sprintf(
		"\nTagged: %d  Skipped: %d  Failed: %d  Total: %d  (%s)",
		run.Tagged(), run.Skipped(), run.Failed(), run.Total(), shared.FormatDuration(run.Duration()),
	)
	if run.DryRun() {
		info += "\n" + styles.skipped.Render("Dry run: no files were written")
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, info, m.resultList.View(), helpView)
}
