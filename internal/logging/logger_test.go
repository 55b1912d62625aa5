package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cleanstage/internal/config"
	"cleanstage/internal/logging"
)

func newFileLogger(t *testing.T, format, level string) (string, func()) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "out.log")
	logger, closer, err := logging.New(logging.Options{
		Format:           format,
		Level:            level,
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	emit := func() {
		ctx := logging.WithStage(logging.WithRunID(context.Background(), "3f2a9c1e-0000-4000-8000-000000000001"), "basic_cleaning")
		l := logging.WithContext(ctx, logging.NewComponentLogger(logger, "cleaning"))
		l.Info("rows filtered", logging.Int("kept", 2), logging.String("note", "with space"))
		l.Debug("debug detail")
		if err := closer.Close(); err != nil {
			t.Fatalf("close logger: %v", err)
		}
	}
	return logPath, emit
}

func TestConsoleFormatIncludesRunAndComponent(t *testing.T) {
	logPath, emit := newFileLogger(t, "console", "info")
	emit()

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	for _, fragment := range []string{"INFO", "[3f2a9c1e]", "cleaning: rows filtered", "kept=2", `note="with space"`, "stage=basic_cleaning"} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in %q", fragment, line)
		}
	}
	if strings.Contains(line, "debug detail") {
		t.Fatalf("debug line should be filtered at info level: %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", line)
	}
}

func TestJSONFormatUsesShortKeys(t *testing.T) {
	logPath, emit := newFileLogger(t, "json", "debug")
	emit()

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines at debug level, got %d: %q", len(lines), content)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode json line: %v", err)
	}
	for _, key := range []string{"ts", "level", "msg", "run_id", "component", "source"} {
		if _, ok := entry[key]; !ok {
			t.Fatalf("expected key %q in %v", key, entry)
		}
	}
	if entry["level"] != "info" {
		t.Fatalf("expected lower-case level, got %v", entry["level"])
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Format = "json"

	logger, closer, err := logging.NewFromConfig(&cfg, "debug")
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Debug("debug message")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "cleanstage.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "debug message") {
		t.Fatalf("expected level override to enable debug output, got %q", content)
	}
}

func TestNopLogger(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 8) {
		t.Fatal("nop logger should never be enabled")
	}
	logging.ErrorWithContext(logger, "ignored", "test")
}
