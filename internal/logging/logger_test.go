package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readEntries(t *testing.T, path string) []map[string]any {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("parse log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestNewLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")

	logger, err := NewLogger(path, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger() error: %v", err)
	}

	logger.Info("claim succeeded", "task_id", "task-1")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	entries := readEntries(t, path)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0]["msg"] != "claim succeeded" {
		t.Errorf("msg = %v, want %q", entries[0]["msg"], "claim succeeded")
	}
	if entries[0]["task_id"] != "task-1" {
		t.Errorf("task_id = %v, want %q", entries[0]["task_id"], "task-1")
	}
}

func TestLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")

	logger, err := NewLogger(path, LevelWarn)
	if err != nil {
		t.Fatal(err)
	}

	logger.Debug("dropped")
	logger.Info("dropped too")
	logger.Warn("kept")
	logger.Error("also kept")
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}

	entries := readEntries(t, path)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0]["msg"] != "kept" || entries[1]["msg"] != "also kept" {
		t.Errorf("entries = %v", entries)
	}
}

func TestChildLoggers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")

	logger, err := NewLogger(path, LevelDebug)
	if err != nil {
		t.Fatal(err)
	}

	child := logger.WithAgent("agent-a").WithOp("claim")
	child.Info("attempt")

	// The parent is unaffected by child attributes.
	logger.Info("bare")
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}

	entries := readEntries(t, path)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0]["agent_id"] != "agent-a" || entries[0]["op"] != "claim" {
		t.Errorf("child entry = %v", entries[0])
	}
	if _, ok := entries[1]["agent_id"]; ok {
		t.Error("parent entry carries child attribute")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	logger.Info("discarded")
	if err := logger.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}
