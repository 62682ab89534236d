// Package config holds application settings: defaults, the optional YAML
// config file, and the runtime values derived from flags and the terminal.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/bethropolis/repoprompt/internal/content"
	"github.com/bethropolis/repoprompt/internal/printer"
)

// Version is the application version
const Version = "1.0.0"

// Config holds all application configuration settings
type Config struct {
	// Source settings
	Concurrent       bool     `yaml:"concurrent"`
	MaxWorkers       int      `yaml:"workers"`
	MaxFileSizeMB    float64  `yaml:"max_size_mb"`
	BinaryExtensions []string `yaml:"binary_extensions"`
	IgnoreHidden     bool     `yaml:"ignore_hidden"`
	IgnoreGit        bool     `yaml:"ignore_git"`
	UseGitignore     bool     `yaml:"gitignore"`

	// Filter settings. Defaults replaces the built-in default-deny catalog
	// when non-empty; ExtraDefaults is appended to whichever catalog is used.
	Defaults      []string `yaml:"defaults"`
	ExtraDefaults []string `yaml:"extra_defaults"`

	// Output settings
	Format   string        `yaml:"format"`
	Encoding string        `yaml:"encoding"`
	Base64   bool          `yaml:"base64"`
	Timeout  time.Duration `yaml:"timeout"`

	// Logging settings
	LogLevel string `yaml:"log_level"`
	NoColor  bool   `yaml:"no_color"`

	// Persistence
	StatePath   string `yaml:"state_path"`
	HistoryPath string `yaml:"history_path"`
	History     bool   `yaml:"history"`

	// Watch mode
	WatchDebounce time.Duration `yaml:"watch_debounce"`

	// Runtime-only values, set from flags
	Verbose      bool   `yaml:"-"`
	Quiet        bool   `yaml:"-"`
	UseColors    bool   `yaml:"-"`
	OutputFile   string `yaml:"-"`
	Clipboard    bool   `yaml:"-"`
	ShowSkipped  bool   `yaml:"-"`
	ShowProgress bool   `yaml:"-"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Concurrent:    true,
		MaxWorkers:    runtime.NumCPU(),
		MaxFileSizeMB: float64(content.DefaultMaxFileSize) / (1024 * 1024),
		IgnoreHidden:  false,
		IgnoreGit:     true,
		UseGitignore:  true,
		Format:        string(printer.FormatPlain),
		Encoding:      "estimate",
		LogLevel:      "info",
		History:       true,
		WatchDebounce: 300 * time.Millisecond,
	}
}

// DefaultPath returns the config file location under the user config dir
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: locate config dir: %w", err)
	}
	return filepath.Join(dir, "repoprompt", "config.yaml"), nil
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// keys absent from the file keep their defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.MaxWorkers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.MaxWorkers)
	}
	if c.MaxFileSizeMB < 0 {
		return fmt.Errorf("max_size_mb must be >= 0, got %v", c.MaxFileSizeMB)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce must be >= 0, got %v", c.WatchDebounce)
	}

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if _, err := printer.ParseFormat(c.Format); err != nil {
		return err
	}
	return nil
}

// DetectColors decides whether colored log output is used: never when
// disabled, when writing to a file, or when stderr is not a terminal.
func (c *Config) DetectColors() {
	fd := os.Stderr.Fd()
	c.UseColors = !c.NoColor && c.OutputFile == "" &&
		(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
}
