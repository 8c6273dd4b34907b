package config

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mgpai22/srt2titles/internal/fsutil"
)

const CurrentConfigVersion = 1

const (
	defaultFPS           = 60.0
	defaultOutputDirName = "kdenlive titles"
	defaultFillerSuffix  = "_blank"
	defaultEncoding      = "utf-8"

	appDirName     = "srt2titles"
	configFileName = "config.yaml"
	saveTimeout    = 5 * time.Second
)

// persisted preferences for the convert command
type Config struct {
	// last template used, offered again when -t is omitted
	TemplatePath string `yaml:"template_path"`

	FPS           float64 `yaml:"fps"`
	OutputDirName string  `yaml:"output_dir_name"`
	FillerSuffix  string  `yaml:"filler_suffix"`
	Encoding      string  `yaml:"encoding"`

	ConfigVersion int `yaml:"config_version"`

	path string
}

func Default() *Config {
	return &Config{
		FPS:           defaultFPS,
		OutputDirName: defaultOutputDirName,
		FillerSuffix:  defaultFillerSuffix,
		Encoding:      defaultEncoding,
		ConfigVersion: CurrentConfigVersion,
	}
}

// DefaultPath is config.yaml under the user config directory
// (~/.config/srt2titles on Linux).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, appDirName, configFileName), nil
}

// Load reads the config at path, or DefaultPath when path is empty. A
// missing file yields the defaults; fields absent from the file keep their
// default values.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.normalize()

	return cfg, nil
}

func (c *Config) Path() string {
	return c.path
}

// Save writes the config atomically while holding a lock next to it.
func (c *Config) Save() error {
	if c.path == "" {
		return fmt.Errorf("config has no path")
	}
	c.normalize()

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	lock, err := fsutil.Lock(ctx, c.path+".lock")
	if err != nil {
		return err
	}
	defer func() {
		_ = lock.Unlock()
	}()

	if err := fsutil.WriteFileAtomic(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", c.path, err)
	}
	return nil
}

// RememberTemplate stores the absolute template path and saves the config.
func (c *Config) RememberTemplate(templatePath string) error {
	abs, err := filepath.Abs(templatePath)
	if err != nil {
		return fmt.Errorf("failed to resolve template path: %w", err)
	}
	if abs == c.TemplatePath {
		return nil
	}
	c.TemplatePath = abs
	return c.Save()
}

func (c *Config) normalize() {
	c.TemplatePath = strings.TrimSpace(c.TemplatePath)
	if c.TemplatePath != "" {
		c.TemplatePath = filepath.Clean(c.TemplatePath)
	}

	if math.IsNaN(c.FPS) || math.IsInf(c.FPS, 0) || c.FPS <= 0 {
		c.FPS = defaultFPS
	}

	c.OutputDirName = strings.TrimSpace(c.OutputDirName)
	if c.OutputDirName == "" {
		c.OutputDirName = defaultOutputDirName
	}

	c.FillerSuffix = strings.TrimSpace(c.FillerSuffix)
	if c.FillerSuffix == "" {
		c.FillerSuffix = defaultFillerSuffix
	}

	c.Encoding = strings.ToLower(strings.TrimSpace(c.Encoding))
	if c.Encoding == "" {
		c.Encoding = defaultEncoding
	}

	if c.ConfigVersion < CurrentConfigVersion {
		c.ConfigVersion = CurrentConfigVersion
	}
}
