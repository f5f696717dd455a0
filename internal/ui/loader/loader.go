// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package loader is the Bubble Tea screen that drives the frame loop and
// draws every domain's progress until loading is finished.
package loader

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/frametrack/internal/loop"
	"github.com/jeranaias/frametrack/internal/ui/components"
	"github.com/jeranaias/frametrack/internal/ui/styles"
)

// ExitReason describes why the loader stopped.
type ExitReason int

const (
	ExitNone        ExitReason = iota
	ExitComplete               // every gated domain finished
	ExitMaxFrames              // frame limit reached
	ExitInterrupted            // user quit
)

// String returns a short name for the reason.
func (r ExitReason) String() string {
	switch r {
	case ExitComplete:
		return "complete"
	case ExitMaxFrames:
		return "max-frames"
	case ExitInterrupted:
		return "interrupted"
	default:
		return "running"
	}
}

// Options configures the loader screen.
type Options struct {
	Loop             *loop.Loop
	FPS              int
	MaxFrames        uint64
	QuitWhenComplete bool
	Compact          bool
	Width            int
	Title            string
	Theme            *styles.Theme
	Logger           *slog.Logger
}

// frameMsg asks the model to step the loop once.
type frameMsg time.Time

// Model is the loader's Bubble Tea model.
type Model struct {
	opts     Options
	interval time.Duration
	theme    *styles.Theme
	logger   *slog.Logger

	spinner    components.Spinner
	spinnerCmd tea.Cmd

	width  int
	last   loop.Frame
	ready  bool
	reason ExitReason
}

// New creates the loader model. Opts.Loop is required.
func New(opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.Title == "" {
		opts.Title = "frametrack"
	}
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme(false)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	m := Model{
		opts:     opts,
		interval: time.Second / time.Duration(opts.FPS),
		theme:    opts.Theme,
		logger:   opts.Logger,
		width:    opts.Width,
		spinner:  components.NewSpinner(opts.Theme),
	}
	m.spinner.SetMessage("Loading")
	m.spinnerCmd = m.spinner.Start()
	return m
}

// Init starts the frame ticker and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.spinnerCmd)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Update handles frame ticks, keys and resizes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		return m.step()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.reason = ExitInterrupted
			return m, tea.Quit
		case "r":
			m.opts.Loop.Reset()
			if m.ready {
				m.ready = false
				return m, m.spinner.Start()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		if m.opts.Width == 0 {
			m.width = msg.Width
		}
		m.theme.SetSize(msg.Width, msg.Height)
		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m Model) step() (tea.Model, tea.Cmd) {
	m.last = m.opts.Loop.Step()

	var cmds []tea.Cmd
	switch ready := m.last.Ready(); {
	case ready && !m.ready:
		m.ready = true
		m.spinner.Stop()
		m.logger.Info("loading ready", "frame", m.last.Number)
	case !ready && m.ready:
		m.ready = false
		cmds = append(cmds, m.spinner.Start())
	}

	if m.ready && m.opts.QuitWhenComplete {
		m.reason = ExitComplete
		return m, tea.Quit
	}
	if m.opts.MaxFrames > 0 && m.last.Number >= m.opts.MaxFrames {
		m.reason = ExitMaxFrames
		return m, tea.Quit
	}

	cmds = append(cmds, m.tick())
	return m, tea.Batch(cmds...)
}

// View renders the loader screen.
func (m Model) View() string {
	t := m.theme
	var b strings.Builder

	b.WriteString(t.Title.Render(m.opts.Title))
	b.WriteString("  ")
	if m.ready {
		b.WriteString(t.Success.Render(styles.StatusIndicators.Done + " Ready"))
	} else {
		b.WriteString(m.spinner.View())
	}
	b.WriteString("\n\n")

	compact := m.opts.Compact || t.GetLayoutMode() == styles.LayoutNarrow
	b.WriteString(components.FrameView{
		Frame:   m.last,
		Width:   m.barWidth(),
		Compact: compact,
		Theme:   t,
	}.Render())

	b.WriteString("\n\n")
	b.WriteString(t.Help.Render("r reset  q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) barWidth() int {
	if m.width <= 0 {
		return 0
	}
	return m.width - 2
}

// Frame returns the last frame stepped.
func (m Model) Frame() loop.Frame { return m.last }

// Ready reports whether the last frame was ready.
func (m Model) Ready() bool { return m.ready }

// Reason returns why the model quit, or ExitNone while running.
func (m Model) Reason() ExitReason { return m.reason }

// Result is the loader's final state.
type Result struct {
	Frame  loop.Frame
	Reason ExitReason
}

// Run runs the loader until it quits or ctx is canceled.
func Run(ctx context.Context, opts Options, progOpts ...tea.ProgramOption) (Result, error) {
	progOpts = append(progOpts, tea.WithContext(ctx))
	p := tea.NewProgram(New(opts), progOpts...)

	final, err := p.Run()

	var res Result
	if m, ok := final.(Model); ok {
		res = Result{Frame: m.last, Reason: m.reason}
	}
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			res.Reason = ExitInterrupted
			return res, ctx.Err()
		}
		return res, err
	}
	return res, nil
}
