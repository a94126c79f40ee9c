package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFiltersBelowWarnUnlessVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)
	logger.Info("hidden")
	logger.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected info to be dropped, got %q", out)
	}
	if !strings.Contains(out, "W") || !strings.Contains(out, "shown") {
		t.Fatalf("expected warn line, got %q", out)
	}
	if strings.Contains(out, "\033[") {
		t.Fatalf("expected no colors for non-terminal writer, got %q", out)
	}

	buf.Reset()
	New(&buf, true).Debug("details")
	if !strings.Contains(buf.String(), "details") {
		t.Fatalf("expected debug line in verbose mode, got %q", buf.String())
	}
}

func TestCallerIsCompact(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, true).Info("x")
	if !strings.Contains(buf.String(), "logging_test") || strings.Contains(buf.String(), "logging_test.go") {
		t.Fatalf("expected bare file name as caller, got %q", buf.String())
	}
}

func TestNewFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "logmon.log")
	logger, closeFn, err := NewFile(path, false)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	logger.Info("monitor started")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "monitor started") {
		t.Fatalf("expected message in file, got %q", data)
	}
}
