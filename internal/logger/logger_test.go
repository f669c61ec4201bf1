package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{" Info ", LevelInfo},
		{"warning", LevelWarn},
		{"ERROR", LevelError},
		{"off", LevelNone},
		{"invalid", LevelWarn},
		{"", LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	if got := LevelWarn.String(); got != "WARN" {
		t.Errorf("LevelWarn.String() = %q", got)
	}
	if got := Level(42).String(); got != "UNKNOWN" {
		t.Errorf("Level(42).String() = %q", got)
	}
}

func TestFileLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "hlbridge.log")

	l, err := New(LevelWarn, logPath, "hlbridge")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	l.Warn("stale handle %d", 3)
	l.Debug("cache hit")
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	out := string(content)
	if !strings.Contains(out, "[WARN] [hlbridge] stale handle 3") {
		t.Errorf("missing warning line, got: %s", out)
	}
	if strings.Contains(out, "cache hit") {
		t.Errorf("debug line written at WARN level: %s", out)
	}
}

func TestDisabledLoggerCreatesNothing(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "off.log")

	l, err := New(LevelNone, logPath, "hlbridge")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	l.Error("dropped")
	if _, err := os.Stat(logPath); !os.IsNotExist(err) {
		t.Errorf("LevelNone logger touched %s (stat err %v)", logPath, err)
	}

	if _, err := New(LevelDebug, "", "hlbridge"); err != nil {
		t.Errorf("empty path should yield a disabled logger, got %v", err)
	}
}

func TestWithPrefixSharesWriter(t *testing.T) {
	var buf bytes.Buffer
	parent := NewWithWriter(LevelDebug, &buf, "hlbridge")

	parent.WithPrefix("render").Debug("cache full (%d entries), flushing", 4)
	parent.Error("boom")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasSuffix(lines[0], "[DEBUG] [hlbridge:render] cache full (4 entries), flushing") {
		t.Errorf("unexpected child line: %s", lines[0])
	}
	if !strings.HasSuffix(lines[1], "[ERROR] [hlbridge] boom") {
		t.Errorf("unexpected parent line: %s", lines[1])
	}
}

func TestSetGlobal(t *testing.T) {
	var buf bytes.Buffer
	prev := SetGlobal(NewWithWriter(LevelDebug, &buf, "g"))
	defer SetGlobal(prev)

	Error("boom %d", 7)
	Warn("careful")
	Debug("detail")

	out := buf.String()
	for _, want := range []string{"[g] boom 7", "[g] careful", "[g] detail"} {
		if !strings.Contains(out, want) {
			t.Errorf("global logger missing %q, got: %s", want, out)
		}
	}
}

func TestGlobalDefaultsToDisabled(t *testing.T) {
	prev := SetGlobal(nil)
	defer SetGlobal(prev)

	g := Global()
	if g == nil || !g.disabled {
		t.Fatalf("default global logger should be disabled, got %+v", g)
	}
	Error("nowhere")
}
