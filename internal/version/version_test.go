package version

import (
	"strings"
	"testing"
)

func TestShortCommit(t *testing.T) {
	tests := []struct {
		revision string
		modified bool
		want     string
	}{
		{"0123456789abcdef", false, "0123456"},
		{"0123456789abcdef", true, "0123456-dirty"},
		{"abc", false, "abc"},
	}
	for _, tt := range tests {
		if got := shortCommit(tt.revision, tt.modified); got != tt.want {
			t.Errorf("shortCommit(%q, %v) = %q, want %q", tt.revision, tt.modified, got, tt.want)
		}
	}
}

func TestString(t *testing.T) {
	if Version == "" || Commit == "" {
		t.Fatal("Version and Commit should be populated by init")
	}

	s := String()
	if !strings.HasPrefix(s, "evonic ") {
		t.Errorf("String() = %q, want evonic prefix", s)
	}
	if !strings.Contains(s, Commit) {
		t.Errorf("String() = %q, should contain commit %q", s, Commit)
	}
}
