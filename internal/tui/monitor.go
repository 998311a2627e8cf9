package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/mcmol/internal/move"
	"github.com/san-kum/mcmol/internal/sim"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

const historyCap = 240

type progressMsg sim.Progress

type doneMsg struct {
	res *sim.Result
	err error
}

// Monitor is a live terminal view of a running sampler: a progress
// bar, an energy trace and per-move acceptance statistics.
type Monitor struct {
	sampler *sim.Sampler
	cfg     sim.RunConfig
	cancel  context.CancelFunc

	events chan tea.Msg

	cur     sim.Progress
	history []float64
	result  *sim.Result
	err     error
	done    bool
	started time.Time

	width  int
	height int
}

func NewMonitor(sampler *sim.Sampler, cfg sim.RunConfig) *Monitor {
	return &Monitor{
		sampler: sampler,
		cfg:     cfg,
		events:  make(chan tea.Msg, 64),
		history: make([]float64, 0, historyCap),
		width:   80,
		height:  24,
	}
}

func (m *Monitor) Init() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.started = time.Now()

	m.sampler.AddObserver(func(p sim.Progress) {
		m.events <- progressMsg(p)
	})

	go func() {
		res, err := m.sampler.Run(ctx, m.cfg)
		m.events <- doneMsg{res: res, err: err}
	}()

	return m.wait()
}

func (m *Monitor) wait() tea.Cmd {
	return func() tea.Msg { return <-m.events }
}

func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "escape":
			if !m.done {
				m.cancel()
				return m, m.wait()
			}
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case progressMsg:
		m.cur = sim.Progress(msg)
		m.history = append(m.history, m.cur.Energy)
		if len(m.history) > historyCap {
			m.history = m.history[1:]
		}
		return m, m.wait()

	case doneMsg:
		m.done = true
		m.result = msg.res
		m.err = msg.err
		return m, nil
	}
	return m, nil
}

func (m *Monitor) View() string {
	var b strings.Builder

	status := green.Render("●") + " " + green.Render("sampling")
	if m.done {
		if m.err != nil {
			status = red.Render("✗") + " " + red.Render(m.err.Error())
		} else {
			status = cyan.Render("✓") + " " + cyan.Render("done")
		}
	}
	b.WriteString(fmt.Sprintf("\n   %s  %s\n\n", cyan.Render("m c m o l"), status))

	sweeps := m.cfg.Sweeps
	if sweeps < 1 {
		sweeps = 1
	}
	progress := float64(m.cur.Sweep) / float64(sweeps)
	if m.done && m.err == nil {
		progress = 1
	}
	if progress > 1 {
		progress = 1
	}
	barWidth := 40
	filled := int(progress * float64(barWidth))
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	elapsed := time.Since(m.started).Round(100 * time.Millisecond)
	b.WriteString(fmt.Sprintf("   %s %s  %s\n\n",
		bar,
		dim.Render(fmt.Sprintf("%d/%d sweeps", m.cur.Sweep, m.cfg.Sweeps)),
		dim.Render(elapsed.String())))

	if len(m.history) > 1 {
		graphWidth := m.width - 14
		if graphWidth < 40 {
			graphWidth = 40
		}
		graph := asciigraph.Plot(m.history,
			asciigraph.Height(8),
			asciigraph.Width(graphWidth),
		)
		for _, line := range strings.Split(graph, "\n") {
			b.WriteString("   " + dim.Render(line) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("   %s %s\n",
		dim.Render("energy"), white.Render(fmt.Sprintf("%.4f kT", m.cur.Energy))))

	for _, mv := range m.sampler.Moves() {
		b.WriteString("   " + renderMoveStats(mv) + "\n")
	}

	if m.done && m.result != nil {
		b.WriteString(fmt.Sprintf("\n   %s %s\n",
			dim.Render("drift"), white.Render(fmt.Sprintf("%.3g kT", m.result.Drift))))
	}

	if m.done {
		b.WriteString("\n" + dim.Render("   q quit") + "\n")
	} else {
		b.WriteString("\n" + dim.Render("   q abort") + "\n")
	}
	return b.String()
}

func renderMoveStats(mv move.Mover) string {
	acc := mv.Acceptance()
	style := green
	switch {
	case acc < 0.1:
		style = red
	case acc < 0.25:
		style = yellow
	}
	return dim.Render(fmt.Sprintf("%-24s", mv.Name())) +
		white.Render(fmt.Sprintf("%8d", mv.Attempts())) + dim.Render(" attempts  ") +
		style.Render(fmt.Sprintf("%5.1f%%", 100*acc)) + dim.Render(" accepted")
}

// Run drives the monitor until completion and returns the sampler
// result.
func Run(sampler *sim.Sampler, cfg sim.RunConfig) (*sim.Result, error) {
	m := NewMonitor(sampler, cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return m.result, m.err
	}
	return m.result, nil
}
