package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/atelier/internal/app"
	"github.com/zjrosen/atelier/internal/backend"
	"github.com/zjrosen/atelier/internal/backend/local"
	backendtracing "github.com/zjrosen/atelier/internal/backend/tracing"
	"github.com/zjrosen/atelier/internal/config"
	"github.com/zjrosen/atelier/internal/log"
	"github.com/zjrosen/atelier/internal/tracing"
	"github.com/zjrosen/atelier/internal/ui/markdown"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const envPrefix = "ATELIER"

var (
	version    = "dev"
	cfgFile    string
	cfg        config.Config
	configPath string
	configErr  error
)

var rootCmd = &cobra.Command{
	Use:     "atelier",
	Short:   "A terminal workspace for atelier projects",
	Long:    `A terminal user interface for browsing, creating and opening atelier projects.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/atelier/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false,
		"write a debug log and enable the log overlay (ctrl+x)")
	rootCmd.Flags().StringP("project", "p", "",
		"project to open at startup")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("project", rootCmd.Flags().Lookup("project"))
}

func initConfig() {
	// A missing .env is fine.
	_ = godotenv.Load()
	cfg, configPath, configErr = loadConfig(viper.GetViper(), cfgFile)
}

// userConfigPath is where the default config is written on first run.
func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".atelier", "config.yaml")
	}
	return filepath.Join(home, ".config", "atelier", "config.yaml")
}

// loadConfig reads the config into v and decodes it. Lookup order is the
// explicit path, .atelier/config.yaml, then ~/.config/atelier/config.yaml.
// When no file exists the default template is written to the user path.
// Returns the path of the file in use, or "" when running on defaults.
func loadConfig(v *viper.Viper, explicit string) (config.Config, string, error) {
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	switch {
	case explicit != "":
		v.SetConfigFile(explicit)
	case fileExists(filepath.Join(".atelier", "config.yaml")):
		v.SetConfigFile(filepath.Join(".atelier", "config.yaml"))
	default:
		v.SetConfigFile(userConfigPath())
	}

	path := v.ConfigFileUsed()
	if err := v.ReadInConfig(); err != nil {
		if explicit != "" || !isNotFound(err) {
			return config.Config{}, "", fmt.Errorf("reading config %s: %w", path, err)
		}
		if writeErr := config.WriteDefaultConfig(path); writeErr != nil {
			// Run on defaults without a file.
			log.Warn(log.CatConfig, "Could not write default config", "path", path, "error", writeErr)
			path = ""
		} else if err := v.ReadInConfig(); err != nil {
			return config.Config{}, "", fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var c config.Config
	if err := v.Unmarshal(&c); err != nil {
		return config.Config{}, "", fmt.Errorf("decoding config: %w", err)
	}
	return c, path, nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

func setDefaults(v *viper.Viper) {
	d := config.Defaults()
	v.SetDefault("debug", false)
	v.SetDefault("project", "")
	v.SetDefault("projects_dir", d.ProjectsDir)
	v.SetDefault("database", d.Database)
	v.SetDefault("reopen_last", d.ReopenLast)
	v.SetDefault("last_project", d.LastProject)
	v.SetDefault("backend.list_cache_ttl", d.Backend.ListCacheTTL)
	v.SetDefault("backend.watch", d.Backend.Watch)
	v.SetDefault("backend.watch_debounce", d.Backend.WatchDebounce)
	v.SetDefault("ui.show_status_bar", d.UI.ShowStatusBar)
	v.SetDefault("ui.event_timeout", d.UI.EventTimeout)
	v.SetDefault("ui.markdown_style", d.UI.MarkdownStyle)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// setupLogging installs the debug log when debug mode is on. The path can be
// overridden with ATELIER_LOG.
func setupLogging(debug bool) (func(), error) {
	if !debug {
		return func() {}, nil
	}
	logPath := os.Getenv(envPrefix + "_LOG")
	if logPath == "" {
		logPath = "debug.log"
	}
	cleanup, err := log.InitWithTeaLog(logPath, "atelier")
	if err != nil {
		return nil, fmt.Errorf("initializing debug log: %w", err)
	}
	log.Info(log.CatConfig, "Atelier starting", "debug", true, "logPath", logPath, "version", version)
	return cleanup, nil
}

func openBackend(c config.Config, initial string) (*local.Backend, error) {
	b, err := local.New(local.Config{
		ProjectsDir:   c.ProjectsDir,
		Database:      c.Database,
		Initial:       initial,
		ListCacheTTL:  c.Backend.ListCacheTTL,
		Watch:         c.Backend.Watch,
		WatchDebounce: c.Backend.WatchDebounce,
	})
	if err != nil {
		return nil, fmt.Errorf("opening projects: %w", err)
	}
	return b, nil
}

// traced wraps api with the tracing decorator when tracing is enabled.
func traced(api backend.API, p *tracing.Provider) backend.API {
	if !p.Enabled() {
		return api
	}
	return backendtracing.Wrap(api, p.Tracer())
}

// rememberProject stores the opened project as last_project.
func rememberProject(path string) func(string) {
	if path == "" {
		return nil
	}
	return func(name string) {
		if err := config.SaveLastProject(path, name); err != nil {
			log.ErrorErr(log.CatConfig, "Failed to save last project", err, "path", path)
		}
	}
}

func runApp(cmd *cobra.Command, args []string) error {
	if configErr != nil {
		return configErr
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cleanup, err := setupLogging(viper.GetBool("debug"))
	if err != nil {
		return err
	}
	defer cleanup()

	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "Tracing shutdown failed", err)
		}
	}()

	projects, err := openBackend(cfg, cfg.StartupProject())
	if err != nil {
		return err
	}
	defer func() {
		if err := projects.Close(); err != nil {
			log.ErrorErr(log.CatBackend, "Closing backend failed", err)
		}
	}()

	zone.NewGlobal()
	model := app.New(traced(projects, provider), app.Options{
		ShowStatusBar:   cfg.UI.ShowStatusBar,
		EventTimeout:    cfg.UI.EventTimeout,
		MarkdownStyle:   markdown.ResolveStyle(cfg.UI.MarkdownStyle, termenv.NewOutput(os.Stdout)),
		Debug:           viper.GetBool("debug"),
		OnProjectOpened: rememberProject(configPath),
	})
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()
	model.Close()
	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
