package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgpai22/srt2titles/internal/config"
	"github.com/mgpai22/srt2titles/internal/logging"
)

func TestSetTemplate(t *testing.T) {
	logger = logging.NewNop()
	dir := t.TempDir()

	cfg, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("config.Load() error: %v", err)
	}

	template := filepath.Join(dir, "title.kdenlivetitle")
	if err := os.WriteFile(template, []byte(testTemplate), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := setTemplate(cfg, template); err != nil {
		t.Fatalf("setTemplate() error: %v", err)
	}

	reloaded, err := config.Load(cfg.Path())
	if err != nil {
		t.Fatalf("config.Load() error: %v", err)
	}
	if reloaded.TemplatePath != template {
		t.Errorf("TemplatePath = %q, want %q", reloaded.TemplatePath, template)
	}
}

func TestSetTemplateRejectsMissingAndDirectories(t *testing.T) {
	logger = logging.NewNop()
	dir := t.TempDir()

	cfg, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("config.Load() error: %v", err)
	}

	if err := setTemplate(cfg, filepath.Join(dir, "missing.kdenlivetitle")); err == nil {
		t.Error("expected error for missing template")
	}
	if err := setTemplate(cfg, dir); err == nil {
		t.Error("expected error for directory template")
	}
	if _, err := os.Stat(cfg.Path()); !os.IsNotExist(err) {
		t.Error("config should not be written after a rejected template")
	}
}

func TestRenderConfig(t *testing.T) {
	cfg := config.Default()
	out := renderConfig(cfg)
	for _, want := range []string{"(not set)", "60", "kdenlive titles", "_blank", "utf-8"} {
		if !strings.Contains(out, want) {
			t.Errorf("config table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTable(t *testing.T) {
	if got := renderTable(nil, nil, nil); got != "" {
		t.Errorf("renderTable with no headers = %q, want empty", got)
	}

	out := renderTable(
		[]string{"A", "B"},
		[][]string{{"one"}, {"two", "three"}},
		[]columnAlignment{alignLeft, alignRight},
	)
	for _, want := range []string{"A", "B", "one", "two", "three"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
