package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"gmdkit/internal/speaker"
)

// FillEventMsg wraps one filler progress event for the tea loop.
type FillEventMsg speaker.Event

// FillDoneMsg carries the final reports once every file is filled.
type FillDoneMsg struct {
	Reports []*speaker.FileReport
	Err     error
}

// fillModel is the progress display for a speaker-filling run: a bar for
// the file currently moving plus a scrolling log, the same layout as the
// old GUI tool contributors know.
type fillModel struct {
	progress progress.Model
	viewport viewport.Model
	styles   Styles

	totalFiles int
	file       string  // file of the latest row tick
	percent    float64 // progress within that file
	seen       map[string]bool
	lines      []string

	done     bool
	quitting bool
	err      error
	reports  []*speaker.FileReport

	width  int
	height int
}

func newFillModel(totalFiles int) fillModel {
	vp := viewport.New(80, 14)
	return fillModel{
		progress:   progress.New(progress.WithDefaultGradient()),
		viewport:   vp,
		styles:     DefaultStyles(),
		totalFiles: totalFiles,
		seen:       make(map[string]bool),
		width:      80,
		height:     20,
	}
}

// Init implements tea.Model.
func (m fillModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m fillModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 6 // header, bar, footer
		m.progress.Width = msg.Width - 4
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "k", "up":
			m.viewport.LineUp(1)
		case "j", "down":
			m.viewport.LineDown(1)
		}
		return m, nil

	case FillEventMsg:
		ev := speaker.Event(msg)
		if ev.File != "" && !m.seen[ev.File] {
			m.seen[ev.File] = true
			m.append(m.styles.Muted.Render("processing ") + filepath.Base(ev.File))
		}
		if ev.Log != "" {
			m.append(fmt.Sprintf("%s: %s", filepath.Base(ev.File), ev.Log))
		}
		if ev.Total > 0 {
			m.file = ev.File
			m.percent = float64(ev.Done) / float64(ev.Total)
		}
		return m, nil

	case FillDoneMsg:
		m.done = true
		m.reports = msg.Reports
		m.err = msg.Err
		if msg.Err == nil {
			m.percent = 1
		}
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *fillModel) append(line string) {
	m.lines = append(m.lines, line)
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

// View implements tea.Model.
func (m fillModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render(fmt.Sprintf("Filling speakers (%d files, %d started)", m.totalFiles, len(m.seen))))
	sb.WriteString("\n")

	name := filepath.Base(m.file)
	if m.file == "" {
		name = "waiting..."
	}
	sb.WriteString(m.styles.Bold.Render(name))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Bar.Render(m.progress.ViewAs(m.percent)))
	sb.WriteString("\n\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")

	switch {
	case m.done && m.err != nil:
		sb.WriteString(m.styles.Error.Render("failed: " + m.err.Error()))
	case m.done:
		sb.WriteString(m.styles.Success.Render("done"))
	default:
		sb.WriteString(m.styles.Muted.Render("q to cancel"))
	}
	sb.WriteString("\n")
	return sb.String()
}

// RunFill fills every file under the progress display and returns the
// per-file reports. Quitting the display cancels the run; files already
// rewritten stay rewritten.
func RunFill(ctx context.Context, filler *speaker.Filler, paths []string) ([]*speaker.FileReport, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newFillModel(len(paths)), tea.WithContext(ctx))
	go func() {
		reports, err := filler.FillAll(ctx, paths, func(ev speaker.Event) {
			p.Send(FillEventMsg(ev))
		})
		// A send after an early quit lands on a finished program, which
		// drops it; the cancelled context is what stops the fill.
		p.Send(FillDoneMsg{Reports: reports, Err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m, ok := final.(fillModel)
	if !ok || !m.done {
		return nil, errors.New("cancelled")
	}
	return m.reports, m.err
}
