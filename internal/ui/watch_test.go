package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/evonic/pkg/evonic"
)

type recordingExecutor struct {
	commands []evonic.Command
	err      error
}

func (r *recordingExecutor) Execute(ctx context.Context, cmd evonic.Command) error {
	r.commands = append(r.commands, cmd)
	return r.err
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func connectedModel(t *testing.T, exec Executor) WatchModel {
	t.Helper()
	m := NewWatchModel(context.Background(), "fire.local", exec)
	next, _ := m.Update(ConnectedMsg{Snapshot: testSnapshot(t)})
	return next.(WatchModel)
}

func TestWatchModel_ConnectingView(t *testing.T) {
	m := NewWatchModel(context.Background(), "fire.local", &recordingExecutor{})

	if m.Init() == nil {
		t.Error("Init() should start the spinner")
	}
	if view := m.View(); !strings.Contains(view, "Connecting to fire.local") {
		t.Errorf("View() = %q, want connecting message", view)
	}
}

func TestWatchModel_Snapshots(t *testing.T) {
	m := connectedModel(t, &recordingExecutor{})

	s := testSnapshot(t)
	*s.Lighting.Effect = "Aurora"
	next, _ := m.Update(SnapshotMsg{Snapshot: s, At: time.Date(2024, 1, 2, 18, 30, 5, 0, time.UTC)})
	m = next.(WatchModel)

	if m.Snapshot() != s {
		t.Error("Snapshot() is not the last received snapshot")
	}
	view := m.View()
	for _, want := range []string{"Aurora", "1 updates, last 18:30:05"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q\n%s", want, view)
		}
	}
}

func TestWatchModel_ListenErrorQuits(t *testing.T) {
	m := connectedModel(t, &recordingExecutor{})
	closed := evonic.NewClosedError("fire.local", nil)

	next, cmd := m.Update(ListenErrorMsg{Err: closed})
	if cmd == nil {
		t.Fatal("Update(ListenErrorMsg) returned no command, want tea.Quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Update(ListenErrorMsg) should quit")
	}
	if !errors.Is(next.(WatchModel).Err(), closed) {
		t.Errorf("Err() = %v, want %v", next.(WatchModel).Err(), closed)
	}
}

func TestWatchModel_KeyCommands(t *testing.T) {
	tests := []struct {
		key  string
		want evonic.Command
	}{
		{"p", evonic.Command{Name: evonic.CommandPower, Value: "toggle"}},
		{"l", evonic.Command{Name: evonic.CommandFeatureLight}},
		{"e", evonic.Command{Name: evonic.CommandEffect, Value: "Ignite"}},
		{"+", evonic.Command{Name: evonic.CommandTemperature, Value: 24}},
		{"-", evonic.Command{Name: evonic.CommandTemperature, Value: 22}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			exec := &recordingExecutor{}
			m := connectedModel(t, exec)

			next, cmd := m.Update(keyPress(tt.key))
			if cmd == nil {
				t.Fatal("key press returned no command")
			}
			done := cmd()

			if len(exec.commands) != 1 {
				t.Fatalf("executed %d commands, want 1", len(exec.commands))
			}
			if exec.commands[0] != tt.want {
				t.Errorf("executed %+v, want %+v", exec.commands[0], tt.want)
			}

			final, _ := next.(WatchModel).Update(done)
			if status := final.(WatchModel).status; !strings.HasPrefix(status, SuccessMarker) {
				t.Errorf("status = %q, want success", status)
			}
		})
	}
}

func TestWatchModel_CommandFailureShown(t *testing.T) {
	exec := &recordingExecutor{err: evonic.NewOutOfRangeError("33 is not a valid value")}
	m := connectedModel(t, exec)

	next, cmd := m.Update(keyPress("+"))
	final, _ := next.(WatchModel).Update(cmd())

	if status := final.(WatchModel).status; !strings.Contains(status, "33 is not a valid value") {
		t.Errorf("status = %q, want the command error", status)
	}
}

func TestWatchModel_KeysIgnoredUntilConnected(t *testing.T) {
	exec := &recordingExecutor{}
	m := NewWatchModel(context.Background(), "fire.local", exec)

	if _, cmd := m.Update(keyPress("p")); cmd != nil {
		t.Error("key press before connect returned a command")
	}

	_, cmd := m.Update(keyPress("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestNextEffect(t *testing.T) {
	s := testSnapshot(t)

	*s.Lighting.Effect = "White"
	if got, _ := nextEffect(s); got != "Eos" {
		t.Errorf("nextEffect(White) = %q, want Eos (wrap around)", got)
	}

	s.Lighting.Effect = nil
	if got, _ := nextEffect(s); got != "Eos" {
		t.Errorf("nextEffect(nil) = %q, want Eos", got)
	}

	if _, ok := nextEffect(&evonic.Snapshot{}); ok {
		t.Error("nextEffect(empty catalog) ok = true, want false")
	}
}
