// Package config loads and validates driftwatch configuration.
//
// Configuration is applied in order of increasing precedence:
//  1. Hardcoded defaults
//  2. YAML config file (explicit --config path, ./driftwatch.yaml,
//     or ~/.config/driftwatch/config.yaml)
//  3. Environment variables (DRIFTWATCH_*)
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/driftwatch/driftwatch/internal/errors"
)

// Config represents the complete driftwatch configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Remote  RemoteConfig  `yaml:"remote" json:"remote"`
	Webhook WebhookConfig `yaml:"webhook" json:"webhook"`
	Monitor MonitorConfig `yaml:"monitor" json:"monitor"`
	State   StateConfig   `yaml:"state" json:"state"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// RemoteConfig configures the FileBrowser server being watched.
type RemoteConfig struct {
	// URL is the base URL of the FileBrowser instance.
	URL string `yaml:"url" json:"url"`
	// Username and Password authenticate against POST /api/login.
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	// Root is the remote directory to watch (default: "/").
	Root string `yaml:"root" json:"root"`
	// Timeout is the per-request HTTP timeout (e.g. "30s").
	Timeout string `yaml:"timeout" json:"timeout"`
}

// WebhookConfig configures Discord alert delivery.
type WebhookConfig struct {
	// URL is the Discord webhook URL. Empty disables notifications.
	URL string `yaml:"url" json:"url"`
	// Timeout is the per-request HTTP timeout (e.g. "10s").
	Timeout string `yaml:"timeout" json:"timeout"`
}

// MonitorConfig configures the detection cycle.
type MonitorConfig struct {
	// Interval is the time between cycles (e.g. "30m").
	Interval string `yaml:"interval" json:"interval"`
	// IgnoreDirs are directory names excluded from tracking. A path is
	// skipped when any of these occurs anywhere in it as a substring.
	IgnoreDirs []string `yaml:"ignore_dirs" json:"ignore_dirs"`
	// ExcludePatterns are suffixes that exclude a path, e.g. ".tmp".
	ExcludePatterns []string `yaml:"exclude_patterns" json:"exclude_patterns"`
}

// StateConfig configures local snapshot persistence.
type StateConfig struct {
	// Path is the SQLite database file (default: ~/.driftwatch/state.db).
	Path string `yaml:"path" json:"path"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" json:"level"`
	// File is the log file path. Empty logs to stderr only.
	File string `yaml:"file" json:"file"`
}

// defaultIgnoreDirs are directory names skipped by default.
var defaultIgnoreDirs = []string{".git", "__pycache__", "node_modules"}

// defaultExcludePatterns are path substrings skipped by default.
var defaultExcludePatterns = []string{".tmp", ".cache"}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Remote: RemoteConfig{
			URL:      "http://localhost:8080",
			Username: "admin",
			Password: "",
			Root:     "/",
			Timeout:  "30s",
		},
		Webhook: WebhookConfig{
			URL:     "",
			Timeout: "10s",
		},
		Monitor: MonitorConfig{
			Interval:        "30m",
			IgnoreDirs:      defaultIgnoreDirs,
			ExcludePatterns: defaultExcludePatterns,
		},
		State: StateConfig{
			Path: DefaultStatePath(),
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// DefaultStateDir returns the default state directory (~/.driftwatch/).
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".driftwatch")
	}
	return filepath.Join(home, ".driftwatch")
}

// DefaultStatePath returns the default SQLite database path.
func DefaultStatePath() string {
	return filepath.Join(DefaultStateDir(), "state.db")
}

// UserConfigPath returns the path to the user configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/driftwatch/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/driftwatch/config.yaml (default)
func UserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "driftwatch", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "driftwatch", "config.yaml")
	}
	return filepath.Join(home, ".config", "driftwatch", "config.yaml")
}

// Load loads configuration from the given file path. When path is empty,
// ./driftwatch.yaml, ./driftwatch.yml and the user config path are tried
// in order. A missing explicit path is an error; so is finding no file at
// all, since the remote credentials cannot be defaulted.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	resolved, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.loadYAML(resolved); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	cfg.State.Path = expandHome(cfg.State.Path)
	cfg.Logging.File = expandHome(cfg.Logging.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// expandHome replaces a leading ~/ with the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// resolvePath finds the config file to load.
func resolvePath(explicit string) (string, error) {
	if explicit != "" {
		if fileExists(explicit) {
			return explicit, nil
		}
		return "", errors.New(errors.ErrCodeConfigNotFound,
			fmt.Sprintf("config file not found: %s", explicit), nil).
			WithSuggestion("run 'driftwatch init' to create one")
	}

	candidates := []string{"driftwatch.yaml", "driftwatch.yml", UserConfigPath()}
	for _, c := range candidates {
		if fileExists(c) {
			return c, nil
		}
	}

	return "", errors.New(errors.ErrCodeConfigNotFound,
		"no config file found", nil).
		WithDetail("searched", strings.Join(candidates, ", ")).
		WithSuggestion("run 'driftwatch init' to create one")
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return errors.New(errors.ErrCodeConfigPermission,
				fmt.Sprintf("cannot read config file %s", path), err)
		}
		return errors.New(errors.ErrCodeConfigNotFound,
			fmt.Sprintf("cannot read config file %s", path), err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("cannot parse config file %s", path), err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	// Remote
	if other.Remote.URL != "" {
		c.Remote.URL = other.Remote.URL
	}
	if other.Remote.Username != "" {
		c.Remote.Username = other.Remote.Username
	}
	if other.Remote.Password != "" {
		c.Remote.Password = other.Remote.Password
	}
	if other.Remote.Root != "" {
		c.Remote.Root = other.Remote.Root
	}
	if other.Remote.Timeout != "" {
		c.Remote.Timeout = other.Remote.Timeout
	}

	// Webhook
	if other.Webhook.URL != "" {
		c.Webhook.URL = other.Webhook.URL
	}
	if other.Webhook.Timeout != "" {
		c.Webhook.Timeout = other.Webhook.Timeout
	}

	// Monitor. Lists replace the defaults wholesale so an explicit
	// empty list turns filtering off.
	if other.Monitor.Interval != "" {
		c.Monitor.Interval = other.Monitor.Interval
	}
	if other.Monitor.IgnoreDirs != nil {
		c.Monitor.IgnoreDirs = other.Monitor.IgnoreDirs
	}
	if other.Monitor.ExcludePatterns != nil {
		c.Monitor.ExcludePatterns = other.Monitor.ExcludePatterns
	}

	// State
	if other.State.Path != "" {
		c.State.Path = other.State.Path
	}

	// Logging
	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.File != "" {
		c.Logging.File = other.Logging.File
	}
}

// applyEnvOverrides applies DRIFTWATCH_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DRIFTWATCH_REMOTE_URL"); v != "" {
		c.Remote.URL = v
	}
	if v := os.Getenv("DRIFTWATCH_REMOTE_USERNAME"); v != "" {
		c.Remote.Username = v
	}
	if v := os.Getenv("DRIFTWATCH_REMOTE_PASSWORD"); v != "" {
		c.Remote.Password = v
	}
	if v := os.Getenv("DRIFTWATCH_REMOTE_ROOT"); v != "" {
		c.Remote.Root = v
	}
	if v := os.Getenv("DRIFTWATCH_WEBHOOK_URL"); v != "" {
		c.Webhook.URL = v
	}
	if v := os.Getenv("DRIFTWATCH_INTERVAL"); v != "" {
		c.Monitor.Interval = v
	}
	if v := os.Getenv("DRIFTWATCH_STATE_PATH"); v != "" {
		c.State.Path = v
	}
	if v := os.Getenv("DRIFTWATCH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("DRIFTWATCH_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Remote.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.ConfigError(
			fmt.Sprintf("remote.url must be a valid http(s) URL, got %q", c.Remote.URL), err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.ConfigError(
			fmt.Sprintf("remote.url scheme must be http or https, got %q", u.Scheme), nil)
	}

	if !strings.HasPrefix(c.Remote.Root, "/") {
		return errors.ConfigError(
			fmt.Sprintf("remote.root must be an absolute path, got %q", c.Remote.Root), nil)
	}

	if _, err := time.ParseDuration(c.Remote.Timeout); err != nil {
		return errors.ConfigError(
			fmt.Sprintf("remote.timeout is not a valid duration: %q", c.Remote.Timeout), err)
	}
	if _, err := time.ParseDuration(c.Webhook.Timeout); err != nil {
		return errors.ConfigError(
			fmt.Sprintf("webhook.timeout is not a valid duration: %q", c.Webhook.Timeout), err)
	}

	interval, err := time.ParseDuration(c.Monitor.Interval)
	if err != nil {
		return errors.ConfigError(
			fmt.Sprintf("monitor.interval is not a valid duration: %q", c.Monitor.Interval), err)
	}
	if interval <= 0 {
		return errors.ConfigError(
			fmt.Sprintf("monitor.interval must be positive, got %q", c.Monitor.Interval), nil)
	}

	if c.State.Path == "" {
		return errors.ConfigError("state.path must not be empty", nil)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return errors.ConfigError(
			fmt.Sprintf("logging.level must be 'debug', 'info', 'warn', or 'error', got %q", c.Logging.Level), nil)
	}

	return nil
}

// Interval returns the parsed cycle interval.
// Validate must have accepted the config first.
func (c *Config) Interval() time.Duration {
	d, err := time.ParseDuration(c.Monitor.Interval)
	if err != nil {
		return 30 * time.Minute
	}
	return d
}

// RemoteTimeout returns the parsed remote HTTP timeout.
func (c *Config) RemoteTimeout() time.Duration {
	d, err := time.ParseDuration(c.Remote.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// WebhookTimeout returns the parsed webhook HTTP timeout.
func (c *Config) WebhookTimeout() time.Duration {
	d, err := time.ParseDuration(c.Webhook.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.InternalError("failed to marshal config", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.ConfigError(fmt.Sprintf("failed to create config directory for %s", path), err)
	}

	// 0600: the file holds remote credentials
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.ConfigError(fmt.Sprintf("failed to write config file %s", path), err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
