package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete sixhats configuration
type Config struct {
	Completion CompletionConfig `mapstructure:"completion" yaml:"completion"`
	Dialogue   DialogueConfig   `mapstructure:"dialogue" yaml:"dialogue"`
	Render     RenderConfig     `mapstructure:"render" yaml:"render"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Archive    ArchiveConfig    `mapstructure:"archive" yaml:"archive"`
	Web        WebConfig        `mapstructure:"web" yaml:"web"`
	Batch      BatchConfig      `mapstructure:"batch" yaml:"batch"`
}

// CompletionConfig selects and tunes the completion service
type CompletionConfig struct {
	// Provider is "anthropic" (default) or "echo" for offline runs
	Provider string `mapstructure:"provider" yaml:"provider"`
	// Model is the model name sent with every request
	Model string `mapstructure:"model" yaml:"model"`
	// MaxTokens caps each completion (default: 1024)
	MaxTokens int `mapstructure:"max_tokens" yaml:"max_tokens"`
	// TimeoutSeconds is the per-request HTTP timeout (default: 60)
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	// BaseURL overrides the Messages API endpoint
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// APIKey authenticates requests. When empty, ANTHROPIC_API_KEY is used.
	APIKey string `mapstructure:"api_key" yaml:"-"`
}

// Timeout returns the request timeout as a time.Duration
func (c CompletionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DialogueConfig controls how a session traverses the hats
type DialogueConfig struct {
	// DefaultOrder is used when a request names no hats
	DefaultOrder []string `mapstructure:"default_order" yaml:"default_order"`
	// DialogMode links each message to its predecessor and feeds recent
	// context into prompts (default: true)
	DialogMode bool `mapstructure:"dialog_mode" yaml:"dialog_mode"`
	// ContextWindow is how many of a hat's own messages are replayed to it
	// (default: 3)
	ContextWindow int `mapstructure:"context_window" yaml:"context_window"`
	// PersonasFile optionally replaces persona prompt text per hat
	PersonasFile string `mapstructure:"personas_file" yaml:"personas_file"`
}

// RenderConfig controls console output
type RenderConfig struct {
	// Enabled prints panels to stderr while a session runs (default: true)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Markdown renders message bodies as markdown (default: true)
	Markdown bool `mapstructure:"markdown" yaml:"markdown"`
	// Width is the wrap width; 0 uses the terminal width
	Width int `mapstructure:"width" yaml:"width"`
	// SummaryPreview is how many characters of each message the summary
	// table shows (default: 50)
	SummaryPreview int `mapstructure:"summary_preview" yaml:"summary_preview"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether logs are written to a file (default: true)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is where sixhats.log lives; empty means <config dir>/logs
	Dir string `mapstructure:"dir" yaml:"dir"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
}

// ResolveDir returns the log directory, applying the default when unset
func (l LoggingConfig) ResolveDir() string {
	if l.Dir != "" {
		return expandHome(l.Dir)
	}
	return filepath.Join(ConfigDir(), "logs")
}

// ArchiveConfig controls the SQLite session archive
type ArchiveConfig struct {
	// Enabled stores every completed session (default: false)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Path is the database file; empty means <config dir>/sessions.db
	Path string `mapstructure:"path" yaml:"path"`
}

// ResolvePath returns the database path, applying the default when unset
func (a ArchiveConfig) ResolvePath() string {
	if a.Path != "" {
		return expandHome(a.Path)
	}
	return filepath.Join(ConfigDir(), "sessions.db")
}

// WebConfig controls the HTTP server started by "sixhats serve"
type WebConfig struct {
	// Addr is the listen address (default: ":3001")
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// BatchConfig controls multi-topic runs
type BatchConfig struct {
	// MaxParallel bounds how many sessions run at once (default: 3)
	MaxParallel int `mapstructure:"max_parallel" yaml:"max_parallel"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Completion: CompletionConfig{
			Provider:       "anthropic",
			Model:          "claude-3-5-sonnet-20241022",
			MaxTokens:      1024,
			TimeoutSeconds: 60,
		},
		Dialogue: DialogueConfig{
			DefaultOrder:  []string{"blue", "white", "red", "black", "yellow", "green"},
			DialogMode:    true,
			ContextWindow: 3,
		},
		Render: RenderConfig{
			Enabled:        true,
			Markdown:       true,
			SummaryPreview: 50,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Archive: ArchiveConfig{},
		Web: WebConfig{
			Addr: ":3001",
		},
		Batch: BatchConfig{
			MaxParallel: 3,
		},
	}
}

// SetDefaults registers default values with v
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("completion.provider", defaults.Completion.Provider)
	v.SetDefault("completion.model", defaults.Completion.Model)
	v.SetDefault("completion.max_tokens", defaults.Completion.MaxTokens)
	v.SetDefault("completion.timeout_seconds", defaults.Completion.TimeoutSeconds)
	v.SetDefault("completion.base_url", defaults.Completion.BaseURL)
	v.SetDefault("completion.api_key", defaults.Completion.APIKey)

	v.SetDefault("dialogue.default_order", defaults.Dialogue.DefaultOrder)
	v.SetDefault("dialogue.dialog_mode", defaults.Dialogue.DialogMode)
	v.SetDefault("dialogue.context_window", defaults.Dialogue.ContextWindow)
	v.SetDefault("dialogue.personas_file", defaults.Dialogue.PersonasFile)

	v.SetDefault("render.enabled", defaults.Render.Enabled)
	v.SetDefault("render.markdown", defaults.Render.Markdown)
	v.SetDefault("render.width", defaults.Render.Width)
	v.SetDefault("render.summary_preview", defaults.Render.SummaryPreview)

	v.SetDefault("logging.enabled", defaults.Logging.Enabled)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.dir", defaults.Logging.Dir)
	v.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)

	v.SetDefault("archive.enabled", defaults.Archive.Enabled)
	v.SetDefault("archive.path", defaults.Archive.Path)

	v.SetDefault("web.addr", defaults.Web.Addr)

	v.SetDefault("batch.max_parallel", defaults.Batch.MaxParallel)
}

// Load reads the configuration from v into a Config struct and validates it
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sixhats")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sixhats"
	}
	return filepath.Join(home, ".config", "sixhats")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

func expandHome(path string) string {
	if len(path) >= 2 && path[0] == '~' && path[1] == '/' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
