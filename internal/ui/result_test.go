package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muurk/evonic/pkg/evonic"
)

func TestResult_Success(t *testing.T) {
	out := NewSuccessResult("Temperature set", Detail{"Target", "21°C"}).SetWidth(80).Render()

	for _, want := range []string{"SUCCESS", "Temperature set", "Target", "21°C"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q\n%s", want, out)
		}
	}
}

func TestResult_FailureUsesHints(t *testing.T) {
	r := NewFailureResult("Command failed", evonic.NewPreconditionError("connect first")).SetWidth(80)

	if len(r.Troubleshooting) == 0 {
		t.Fatal("NewFailureResult() has no troubleshooting tips for an evonic error")
	}

	out := r.Render()
	for _, want := range []string{"FAILED", "connect first", "Troubleshooting"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q\n%s", want, out)
		}
	}
}

func TestHeader(t *testing.T) {
	out := NewHeader("Fire state", "evonic show", Detail{"Host", "fire.local"}).SetWidth(70).Render()

	for _, want := range []string{"FIRE STATE", "evonic show", "Host:", "fire.local"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q\n%s", want, out)
		}
	}
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	if err := p.PrintSnapshot(testSnapshot(t), FormatCompact); err != nil {
		t.Fatalf("PrintSnapshot() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "Fire:    on") {
		t.Errorf("PrintSnapshot() wrote %q", buf.String())
	}

	if err := p.PrintSnapshot(nil, "xml"); err == nil {
		t.Error("PrintSnapshot(xml) expected error, got nil")
	}
}

func TestClampWidth(t *testing.T) {
	tests := map[int]int{10: MinTerminalWidth, 80: 80, 300: MaxContentWidth}
	for in, want := range tests {
		if got := clampWidth(in); got != want {
			t.Errorf("clampWidth(%d) = %d, want %d", in, got, want)
		}
	}
}
