package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/autoreport/internal/config"
	"github.com/nao1215/autoreport/internal/loader"
	"github.com/nao1215/autoreport/internal/log"
)

func writeResults(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("writes the report and prints its path", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		a := writeResults(t, dir, "A_results.csv", "image,correct,dataset\nimg1,true,set1\nimg2,false,set1\nimg3,false,set1\n")
		b := writeResults(t, dir, "B_results.csv", "image,correct,dataset\nimg1,false,set1\nimg2,false,set1\nimg3,true,set1\n")

		cfg := config.NewConfig()
		cfg.Title = "Comparison"
		cfg.OutputPath = filepath.Join(dir, "out", "report.html")
		cfg.Inputs = []string{a, b}

		var out bytes.Buffer
		logger := log.NewLogger(io.Discard, false)
		if err := generate(context.Background(), cfg, logger, &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(out.String(), "Report written to "+cfg.OutputPath) {
			t.Errorf("unexpected output: %q", out.String())
		}

		data, err := os.ReadFile(cfg.OutputPath)
		if err != nil {
			t.Fatalf("expected report to be written: %v", err)
		}
		html := string(data)
		for _, want := range []string{"Comparison", `id="A"`, `id="B"`} {
			if !strings.Contains(html, want) {
				t.Errorf("expected report to contain %q", want)
			}
		}
	})

	t.Run("missing file writes nothing", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		cfg := config.NewConfig()
		cfg.OutputPath = filepath.Join(dir, "report.html")
		cfg.Inputs = []string{filepath.Join(dir, "missing_results.csv")}

		var out bytes.Buffer
		err := generate(context.Background(), cfg, log.NewLogger(io.Discard, false), &out)
		if !errors.Is(err, loader.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if out.Len() != 0 {
			t.Errorf("expected no output, got %q", out.String())
		}
		if _, err := os.Stat(cfg.OutputPath); !os.IsNotExist(err) {
			t.Error("expected no report to be written")
		}
	})
}

func TestSetupLogger(t *testing.T) {
	t.Parallel()

	t.Run("json format writes json lines", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.LogFormat = config.LogFormatJSON

		var buf bytes.Buffer
		setupLogger(cfg, &buf).Warn("slow input")
		if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
			t.Errorf("expected JSON output, got %q", buf.String())
		}
	})

	t.Run("debug is hidden unless verbose", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()

		var buf bytes.Buffer
		setupLogger(cfg, &buf).Debug("hidden")
		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}

		cfg.Verbose = true
		setupLogger(cfg, &buf).Debug("shown")
		if !strings.Contains(buf.String(), "shown") {
			t.Errorf("expected debug output, got %q", buf.String())
		}
	})
}
