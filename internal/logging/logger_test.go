package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"autosub/internal/config"
	"autosub/internal/logging"
)

func boolPtr(v bool) *bool { return &v }

func TestNewConsoleLoggerWritesComponentAndFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "out.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := logging.WithRunID(context.Background(), "run-123")
	logging.WithContext(ctx, logging.NewComponentLogger(logger, "merge")).Info("aligned tracks", logging.Int("blocks", 12))
	logger.Debug("hidden")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	for _, want := range []string{"INFO", "merge: aligned tracks", "blocks=12", "run_id=run-123"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, "hidden") {
		t.Fatalf("debug line should be filtered at info level: %q", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("file output must not contain ANSI colour: %q", line)
	}
}

func TestNewConsoleLoggerColorOverride(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "color.log")
	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{logPath}, Color: boolPtr(true)})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("careful")
	content, _ := os.ReadFile(logPath)
	if !strings.Contains(string(content), "\x1b[33m") {
		t.Fatalf("expected yellow warn label, got %q", content)
	}
}

func TestNewJSONLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("json message", logging.String("k", "v"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(content))), &entry); err != nil {
		t.Fatalf("decode json line: %v", err)
	}
	if entry["msg"] != "json message" || entry["level"] != "info" || entry["k"] != "v" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key in %v", entry)
	}
	if src, _ := entry["source"].(string); !strings.Contains(src, ".go:") {
		t.Fatalf("expected caller information in debug logs, got %v", entry["source"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Format = "json"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello")

	if _, err := os.Stat(filepath.Join(cfg.Paths.LogDir, logging.LogFileName)); err != nil {
		t.Fatalf("expected log file: %v", err)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "count mismatch", "track_count_mismatch",
		logging.String(logging.FieldImpact, "some blocks may be untranslated"))

	content, _ := os.ReadFile(logPath)
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(content))), &entry); err != nil {
		t.Fatalf("decode json line: %v", err)
	}
	if entry[logging.FieldEventType] != "track_count_mismatch" {
		t.Fatalf("event_type = %v", entry[logging.FieldEventType])
	}
	if entry[logging.FieldErrorHint] != "check logs for details" {
		t.Fatalf("error_hint = %v", entry[logging.FieldErrorHint])
	}
	if entry[logging.FieldImpact] != "some blocks may be untranslated" {
		t.Fatalf("impact should keep caller value, got %v", entry[logging.FieldImpact])
	}
}

func TestRunIDRoundTrip(t *testing.T) {
	ctx := logging.WithRunID(context.Background(), "")
	if _, ok := logging.RunIDFromContext(ctx); ok {
		t.Fatal("blank run id should not be stored")
	}
	ctx = logging.WithRunID(ctx, "abc")
	if id, ok := logging.RunIDFromContext(ctx); !ok || id != "abc" {
		t.Fatalf("got %q %v want abc", id, ok)
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "autosub.log.1")
	active := filepath.Join(dir, logging.LogFileName)
	fresh := filepath.Join(dir, "autosub.log.2")
	for _, path := range []string{old, active, fresh} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().AddDate(0, 0, -10)
	for _, path := range []string{old, active} {
		if err := os.Chtimes(path, past, past); err != nil {
			t.Fatal(err)
		}
	}

	removed := logging.CleanupOldLogs(logging.NewNop(), 7, dir, "autosub.log*", logging.LogFileName)
	if removed != 1 {
		t.Fatalf("removed %d files, want 1", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected old log removed, stat err=%v", err)
	}
	for _, path := range []string{active, fresh} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s kept: %v", path, err)
		}
	}
	if logging.CleanupOldLogs(nil, 0, dir, "", "") != 0 {
		t.Fatal("retention 0 must disable pruning")
	}
}

func TestProgressSampler(t *testing.T) {
	s := logging.NewProgressSampler(25)
	tests := []struct {
		done, total int
		want        bool
	}{
		{0, 8, true},
		{1, 8, false},
		{2, 8, true},
		{3, 8, false},
		{8, 8, true},
		{8, 8, false},
	}
	for _, tt := range tests {
		if got := s.ShouldLog(tt.done, tt.total); got != tt.want {
			t.Fatalf("ShouldLog(%d,%d) = %v want %v", tt.done, tt.total, got, tt.want)
		}
	}
	s.Reset()
	if !s.ShouldLog(0, 8) {
		t.Fatal("expected emit after reset")
	}
	var nilSampler *logging.ProgressSampler
	if !nilSampler.ShouldLog(1, 2) {
		t.Fatal("nil sampler should always log")
	}
}
