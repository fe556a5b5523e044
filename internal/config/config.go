// Package config provides configuration types, defaults and persistence for
// atelier.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/atelier/internal/log"
	"github.com/zjrosen/atelier/internal/tracing"
)

// Config holds all configuration options for atelier.
type Config struct {
	// ProjectsDir holds one directory per project.
	ProjectsDir string `mapstructure:"projects_dir"`
	// Database is the project catalog file.
	Database string `mapstructure:"database"`
	// Project is opened at startup when set (--project).
	Project string `mapstructure:"project"`
	// ReopenLast opens LastProject at startup when Project is empty.
	ReopenLast  bool   `mapstructure:"reopen_last"`
	LastProject string `mapstructure:"last_project"`

	Backend BackendConfig  `mapstructure:"backend"`
	UI      UIConfig       `mapstructure:"ui"`
	Tracing tracing.Config `mapstructure:"tracing"`
}

// BackendConfig configures the local backend.
type BackendConfig struct {
	ListCacheTTL  time.Duration `mapstructure:"list_cache_ttl"`
	Watch         bool          `mapstructure:"watch"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowStatusBar bool          `mapstructure:"show_status_bar"`
	EventTimeout  time.Duration `mapstructure:"event_timeout"`
	MarkdownStyle string        `mapstructure:"markdown_style"` // "auto" (default), "dark" or "light"
}

// StartupProject returns the project to open at startup, or "".
func (c Config) StartupProject() string {
	if c.Project != "" {
		return c.Project
	}
	if c.ReopenLast {
		return c.LastProject
	}
	return ""
}

// DefaultDataDir returns ~/.atelier, or .atelier when the home directory is
// unavailable.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".atelier"
	}
	return filepath.Join(home, ".atelier")
}

// DefaultTracesFilePath returns ~/.config/atelier/traces/traces.jsonl or ""
// when the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "atelier", "traces", "traces.jsonl")
}

// Defaults returns a Config with default values.
func Defaults() Config {
	dataDir := DefaultDataDir()
	tc := tracing.DefaultConfig()
	tc.FilePath = DefaultTracesFilePath()
	return Config{
		ProjectsDir: filepath.Join(dataDir, "projects"),
		Database:    filepath.Join(dataDir, "atelier.db"),
		ReopenLast:  false,
		Backend: BackendConfig{
			ListCacheTTL:  30 * time.Second,
			Watch:         true,
			WatchDebounce: 300 * time.Millisecond,
		},
		UI: UIConfig{
			ShowStatusBar: true,
			EventTimeout:  5 * time.Second,
			MarkdownStyle: "auto",
		},
		Tracing: tc,
	}
}

// Validate checks cfg for errors. Empty values fall back to defaults and are
// not errors.
func Validate(cfg Config) error {
	if cfg.Backend.ListCacheTTL < 0 {
		return fmt.Errorf("backend.list_cache_ttl must not be negative, got %s", cfg.Backend.ListCacheTTL)
	}
	if cfg.Backend.WatchDebounce < 0 {
		return fmt.Errorf("backend.watch_debounce must not be negative, got %s", cfg.Backend.WatchDebounce)
	}
	switch cfg.UI.MarkdownStyle {
	case "", "auto", "dark", "light":
	default:
		return fmt.Errorf("ui.markdown_style must be \"auto\", \"dark\" or \"light\", got %q", cfg.UI.MarkdownStyle)
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(tc tracing.Config) error {
	if tc.SampleRate < 0.0 || tc.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tc.SampleRate)
	}

	switch tc.Exporter {
	case "", tracing.ExporterNone, tracing.ExporterFile, tracing.ExporterStdout, tracing.ExporterOTLP:
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tc.Exporter)
	}

	if tc.Enabled && tc.Exporter == tracing.ExporterFile && tc.FilePath == "" {
		return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Atelier Configuration

# Where project directories live (default: ~/.atelier/projects)
# projects_dir: /path/to/projects

# Project catalog database (default: ~/.atelier/atelier.db)
# database: /path/to/atelier.db

# Reopen the last opened project at startup
reopen_last: false

# Backend settings
backend:
  list_cache_ttl: 30s     # How long the project listing is cached
  watch: true             # Report changes to the main module made outside atelier
  watch_debounce: 300ms   # Quiet period before a change is reported

# UI settings
ui:
  show_status_bar: true   # Show status bar at bottom
  event_timeout: 5s       # How long status events stay visible
  markdown_style: auto    # Module rendering style: "auto" (default), "dark" or "light"

# Tracing of backend calls
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/atelier/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
