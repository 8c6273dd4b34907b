package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.FPS != 60 {
		t.Errorf("expected default fps 60, got %v", cfg.FPS)
	}
	if cfg.OutputDirName != "kdenlive titles" {
		t.Errorf("unexpected output dir name %q", cfg.OutputDirName)
	}
	if cfg.FillerSuffix != "_blank" || cfg.Encoding != "utf-8" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Path() != path {
		t.Errorf("expected path %s, got %s", path, cfg.Path())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Load should not create the file")
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "fps: 29.97\nfiller_suffix: \"  \"\nencoding: Windows-1252\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.FPS != 29.97 {
		t.Errorf("expected fps 29.97, got %v", cfg.FPS)
	}
	if cfg.FillerSuffix != "_blank" {
		t.Errorf("blank suffix should fall back to default, got %q", cfg.FillerSuffix)
	}
	if cfg.Encoding != "windows-1252" {
		t.Errorf("expected normalized encoding, got %q", cfg.Encoding)
	}
	if cfg.OutputDirName != "kdenlive titles" {
		t.Errorf("expected default output dir, got %q", cfg.OutputDirName)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("fps: -5\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.FPS != 60 {
		t.Errorf("negative fps should fall back to default, got %v", cfg.FPS)
	}

	if err := os.WriteFile(path, []byte("fps: [not, a, number\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg.FPS = 25
	cfg.OutputDirName = "titles"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read saved config: %v", err)
	}
	if !strings.Contains(string(data), "output_dir_name: titles") {
		t.Errorf("unexpected saved config:\n%s", data)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.FPS != 25 || reloaded.OutputDirName != "titles" {
		t.Errorf("unexpected reloaded config %+v", reloaded)
	}
	if reloaded.ConfigVersion != CurrentConfigVersion {
		t.Errorf("expected config version %d, got %d", CurrentConfigVersion, reloaded.ConfigVersion)
	}
}

func TestRememberTemplate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	templatePath := filepath.Join(dir, "title.kdenlivetitle")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.RememberTemplate(templatePath); err != nil {
		t.Fatalf("RememberTemplate failed: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.TemplatePath != templatePath {
		t.Errorf("expected template %s, got %s", templatePath, reloaded.TemplatePath)
	}
}

func TestSaveWithoutPath(t *testing.T) {
	if err := Default().Save(); err == nil {
		t.Error("expected error when saving a config without a path")
	}
}
