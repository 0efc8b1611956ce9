package logging_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aircheck/internal/logging"
	"aircheck/internal/services"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aircheck.log")
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}

	logger.Info("pipeline started", logging.String("run_id", "abc"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "pipeline started") || !strings.Contains(out, "run_id=abc") {
		t.Fatalf("unexpected log output: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("file output must not contain ANSI codes: %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestComponentLoggerPrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aircheck.log")
	base, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}

	logging.NewComponentLogger(base, "generation").Info("stage started")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "[generation]") {
		t.Fatalf("expected component prefix, got %q", data)
	}
}

func TestWithContextAddsItemFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aircheck.log")
	base, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}

	ctx := services.WithItemKey(context.Background(), "intro/julie/song-1")
	ctx = services.WithStage(ctx, "generate")
	logging.WithContext(ctx, base).Info("item processed")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"item":"intro/julie/song-1"`) || !strings.Contains(out, `"stage":"generate"`) {
		t.Fatalf("missing context fields: %q", out)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger must report disabled")
	}
}
