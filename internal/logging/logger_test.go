package logging

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" INFO ":  zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"loud":    zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_SilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")

	logger, err := New("")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("New(\"\") without EVONIC_LOG_LEVEL should discard everything")
	}
}

func TestNew_FromEnv(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "warn")

	logger, err := New("")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info enabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn disabled at warn level")
	}
}

func fieldMap(fields []zap.Field) map[string]zap.Field {
	m := make(map[string]zap.Field, len(fields))
	for _, f := range fields {
		m[f.Key] = f
	}
	return m
}

func TestFrame(t *testing.T) {
	quiet := zap.NewNop()

	text := fieldMap(Frame(quiet, "sent", 1, []byte(`{"voice":"Fire_ON"}`)))
	if text["content"].String != `{"voice":"Fire_ON"}` {
		t.Errorf("content = %q", text["content"].String)
	}
	if _, ok := text["hex_dump"]; ok {
		t.Error("text frame has a hex dump without debug logging")
	}
	if text["message_type"].String != "text" || text["length"].Integer != 19 {
		t.Errorf("fields = %+v", text)
	}

	binary := fieldMap(Frame(quiet, "received", 2, []byte{0x01, 'A'}))
	if binary["hex_dump"].String != "0141" {
		t.Errorf("hex_dump = %q, want 0141", binary["hex_dump"].String)
	}
	if binary["ascii"].String != ".A" {
		t.Errorf("ascii = %q, want .A", binary["ascii"].String)
	}
}

func TestDumpsTruncate(t *testing.T) {
	data := []byte(strings.Repeat("x", maxDumpBytes+10))
	if got := hexDump(data); !strings.HasSuffix(got, "...") || len(got) != maxDumpBytes*2+3 {
		t.Errorf("hexDump() length = %d, want truncated", len(got))
	}
	if got := asciiDump(data); len(got) > maxDumpBytes+3 {
		t.Errorf("asciiDump() length = %d, want truncated", len(got))
	}
}

func TestMessageTypeName(t *testing.T) {
	tests := map[int]string{1: "text", 2: "binary", 8: "close", 9: "ping", 10: "pong", 42: "unknown(42)"}
	for in, want := range tests {
		if got := MessageTypeName(in); got != want {
			t.Errorf("MessageTypeName(%d) = %q, want %q", in, got, want)
		}
	}
}
