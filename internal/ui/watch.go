package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/evonic/pkg/evonic"
)

// Executor sends commands to the fire. *evonic.Client satisfies it.
type Executor interface {
	Execute(ctx context.Context, cmd evonic.Command) error
}

// ConnectedMsg reports that the client finished bootstrapping.
type ConnectedMsg struct {
	Snapshot *evonic.Snapshot
}

// SnapshotMsg carries a copy of the snapshot after an update.
type SnapshotMsg struct {
	Snapshot *evonic.Snapshot
	At       time.Time
}

// ListenErrorMsg ends the dashboard with the error that stopped the receive loop.
type ListenErrorMsg struct {
	Err error
}

type commandDoneMsg struct {
	label string
	err   error
}

type watchKeyMap struct {
	Power  key.Binding
	Light  key.Binding
	Effect key.Binding
	TempUp key.Binding
	TempDn key.Binding
	Quit   key.Binding
}

func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Power, k.Light, k.Effect, k.TempUp, k.TempDn, k.Quit}
}

func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// WatchModel is the live dashboard behind `evonic watch`.
type WatchModel struct {
	host string
	ctx  context.Context
	exec Executor

	spinner spinner.Model
	help    help.Model
	keys    watchKeyMap

	snapshot   *evonic.Snapshot
	connected  bool
	updates    int
	lastUpdate time.Time
	status     string
	err        error

	width  int
	height int
}

// NewWatchModel creates the dashboard. Key presses are turned into commands run through exec.
func NewWatchModel(ctx context.Context, host string, exec Executor) WatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return WatchModel{
		host:    host,
		ctx:     ctx,
		exec:    exec,
		spinner: s,
		help:    help.New(),
		keys: watchKeyMap{
			Power:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "power")),
			Light:  key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "light")),
			Effect: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "next effect")),
			TempUp: key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "warmer")),
			TempDn: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "cooler")),
			Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
		},
		width: GetTerminalWidth(),
	}
}

// Err returns the error that ended the dashboard, if any.
func (m WatchModel) Err() error {
	return m.err
}

// Snapshot returns the last snapshot shown.
func (m WatchModel) Snapshot() *evonic.Snapshot {
	return m.snapshot
}

// Init implements tea.Model
func (m WatchModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = clampWidth(msg.Width)
		m.height = msg.Height

	case ConnectedMsg:
		m.connected = true
		if msg.Snapshot != nil {
			m.snapshot = msg.Snapshot
		}
		m.status = "Connected"

	case SnapshotMsg:
		m.connected = true
		m.snapshot = msg.Snapshot
		m.updates++
		m.lastUpdate = msg.At

	case ListenErrorMsg:
		m.err = msg.Err
		return m, tea.Quit

	case commandDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s %s failed: %v", FailureMarker, msg.label, msg.err)
		} else {
			m.status = fmt.Sprintf("%s %s", SuccessMarker, msg.label)
		}

	case spinner.TickMsg:
		if m.connected {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m WatchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if !m.connected {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Power):
		return m.run("Power toggled", evonic.Command{Name: evonic.CommandPower, Value: string(evonic.PowerToggle)})

	case key.Matches(msg, m.keys.Light):
		return m.run("Feature light toggled", evonic.Command{Name: evonic.CommandFeatureLight})

	case key.Matches(msg, m.keys.Effect):
		next, ok := nextEffect(m.snapshot)
		if !ok {
			m.status = "No effects available"
			return m, nil
		}
		return m.run("Effect "+next, evonic.Command{Name: evonic.CommandEffect, Value: next})

	case key.Matches(msg, m.keys.TempUp), key.Matches(msg, m.keys.TempDn):
		if m.snapshot == nil || m.snapshot.Climate.TargetTemp == nil {
			m.status = "Target temperature unknown"
			return m, nil
		}
		target := *m.snapshot.Climate.TargetTemp + 1
		if key.Matches(msg, m.keys.TempDn) {
			target -= 2
		}
		return m.run(fmt.Sprintf("Target %d", target), evonic.Command{Name: evonic.CommandTemperature, Value: target})
	}

	return m, nil
}

func (m WatchModel) run(label string, cmd evonic.Command) (tea.Model, tea.Cmd) {
	m.status = label + "..."
	ctx, exec := m.ctx, m.exec
	return m, func() tea.Msg {
		return commandDoneMsg{label: label, err: exec.Execute(ctx, cmd)}
	}
}

// nextEffect returns the catalog entry after the active effect, wrapping around.
func nextEffect(s *evonic.Snapshot) (string, bool) {
	if s == nil || len(s.Effects) == 0 {
		return "", false
	}
	i := -1
	if s.Lighting.Effect != nil {
		i = slices.Index(s.Effects, *s.Lighting.Effect)
	}
	return s.Effects[(i+1)%len(s.Effects)], true
}

// View implements tea.Model
func (m WatchModel) View() string {
	width := clampWidth(m.width)

	title := HeaderTitleStyle.Render(FlameMarker + " EVONIC  ─  " + m.host)

	var body string
	if !m.connected {
		body = lipgloss.NewStyle().PaddingLeft(2).Render(
			fmt.Sprintf("%s Connecting to %s...", m.spinner.View(), m.host))
	} else {
		body = RenderSnapshot(m.snapshot, width)
	}

	footer := []string{}
	if m.status != "" {
		footer = append(footer, "  "+m.status)
	}
	if m.connected {
		last := "never"
		if !m.lastUpdate.IsZero() {
			last = m.lastUpdate.Format("15:04:05")
		}
		footer = append(footer, HelpStyle.Render(fmt.Sprintf("  %d updates, last %s", m.updates, last)))
	}
	footer = append(footer, "  "+m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, "", title, "", body, "", strings.Join(footer, "\n"))
}
