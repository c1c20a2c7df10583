package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	barPadding  = 2
	maxBarWidth = 60
)

type fileStartedMsg struct {
	path string
}

type fileFinishedMsg struct {
	path string
	err  error
}

type stopMsg struct{}

type progressModel struct {
	bar     progress.Model
	total   int
	done    int
	failed  int
	running int

	last       string
	lastFailed bool
	stopped    bool
}

func newProgressModel(total int) progressModel {
	return progressModel{
		bar:   progress.New(progress.WithGradient(barStart, barEnd), progress.WithWidth(maxBarWidth)),
		total: total,
	}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fileStartedMsg:
		m.running++
		if m.last == "" {
			m.last = msg.path
		}
	case fileFinishedMsg:
		m.running--
		m.done++
		m.last = msg.path
		m.lastFailed = msg.err != nil
		if m.lastFailed {
			m.failed++
		}
	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - barPadding*2
		if m.bar.Width > maxBarWidth {
			m.bar.Width = maxBarWidth
		}
		if m.bar.Width < 10 {
			m.bar.Width = 10
		}
	case stopMsg:
		m.stopped = true
		return m, tea.Quit
	}
	return m, nil
}

func (m progressModel) percent() float64 {
	if m.total == 0 {
		return 1
	}
	return float64(m.done) / float64(m.total)
}

func (m progressModel) View() string {
	header := titleStyle.Render("pngquant") + " " +
		counterStyle.Render(fmt.Sprintf("%d/%d", m.done, m.total))
	if m.failed > 0 {
		header += " " + failedStyle.Render(fmt.Sprintf("%d failed", m.failed))
	}

	status := dimStyle.Render("waiting")
	if m.last != "" {
		label := dimStyle.Render("  ..")
		if m.done > 0 {
			label = okStyle.Render("  ok")
			if m.lastFailed {
				label = failedStyle.Render("fail")
			}
		}
		status = label + " " + pathStyle.Render(m.last)
	}

	return header + "\n" + m.bar.ViewAs(m.percent()) + "\n" + status + "\n"
}

// Progress draws a progress bar while files are quantized. It is safe to
// notify from several goroutines.
type Progress struct {
	program *tea.Program
	done    chan struct{}
	err     error
}

// StartProgress starts drawing to w and returns once the program is running
// in the background. Call Stop to wait for the final frame. A theme that
// fails to load leaves the default colors in place.
func StartProgress(ctx context.Context, w io.Writer, total int) *Progress {
	_ = ensureThemeLoaded()
	p := &Progress{done: make(chan struct{})}
	p.program = tea.NewProgram(newProgressModel(total),
		tea.WithContext(ctx),
		tea.WithOutput(w),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	go func() {
		defer close(p.done)
		if _, err := p.program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			p.err = fmt.Errorf("progress TUI error: %w", err)
		}
	}()
	return p
}

func (p *Progress) FileStarted(path string) {
	p.program.Send(fileStartedMsg{path: path})
}

func (p *Progress) FileFinished(path string, err error) {
	p.program.Send(fileFinishedMsg{path: path, err: err})
}

// Stop renders the final state and waits for the program to exit.
func (p *Progress) Stop() error {
	p.program.Send(stopMsg{})
	<-p.done
	return p.err
}
