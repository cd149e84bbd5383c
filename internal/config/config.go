// Package config handles the XDG configuration directory, the optional
// config.yaml file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "taskpro"

	// ConfigFile is the optional settings filename.
	ConfigFile = "config.yaml"

	// SessionFile is the persisted session filename.
	SessionFile = "session.json"

	// DatabaseFile is the default sqlite database filename.
	DatabaseFile = "taskpro.db"
)

// Backends.
const (
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
	BackendRemote = "remote"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `yaml:"-"`

	// Debug enables debug logging.
	Debug bool `yaml:"-"`

	// Quiet suppresses informational output.
	Quiet bool `yaml:"-"`

	// Backend selects the remote store: sqlite, mysql or remote.
	Backend string `yaml:"backend"`

	// DSN is the database source for the sqlite and mysql backends.
	DSN string `yaml:"dsn"`

	// RemoteURL is the base URL of a taskpro server for the remote backend.
	RemoteURL string `yaml:"remote_url"`

	// ClientID identifies this client to the remote token endpoint.
	ClientID string `yaml:"client_id"`

	// SessionTTL is the lifetime of access tokens issued by the sql backends.
	SessionTTL time.Duration `yaml:"session_ttl"`

	// Listen is the address used by `taskpro serve`.
	Listen string `yaml:"listen"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

// New creates a Config for the default or specified config directory,
// reading config.yaml when present and applying environment overrides.
// If configDir is empty, uses XDG_CONFIG_HOME/taskpro or $HOME/.config/taskpro.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{
		Dir:        dir,
		Backend:    BackendSQLite,
		ClientID:   AppName,
		SessionTTL: 7 * 24 * time.Hour,
		Listen:     ":8750",
		LogLevel:   "warn",
	}

	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if cfg.Backend == BackendSQLite && cfg.DSN == "" {
		cfg.DSN = filepath.Join(cfg.Dir, DatabaseFile)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

func (c *Config) loadFile() error {
	data, err := os.ReadFile(c.FilePath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", ConfigFile, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", ConfigFile, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Backend = envStr("TASKPRO_BACKEND", c.Backend)
	c.DSN = envStr("TASKPRO_DSN", c.DSN)
	c.RemoteURL = envStr("TASKPRO_REMOTE_URL", c.RemoteURL)
	c.ClientID = envStr("TASKPRO_CLIENT_ID", c.ClientID)
	c.Listen = envStr("TASKPRO_LISTEN", c.Listen)
	c.LogLevel = envStr("TASKPRO_LOG_LEVEL", c.LogLevel)
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendSQLite:
	case BackendMySQL:
		if c.DSN == "" {
			return fmt.Errorf("dsn must not be empty for the mysql backend")
		}
	case BackendRemote:
		if c.RemoteURL == "" {
			return fmt.Errorf("remote_url must not be empty for the remote backend")
		}
	default:
		return fmt.Errorf("unknown backend %q (want sqlite, mysql or remote)", c.Backend)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive, got %s", c.SessionTTL)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// FilePath returns the path to config.yaml.
func (c *Config) FilePath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// SessionPath returns the path to the persisted session file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasSession checks if a session file exists.
func (c *Config) HasSession() bool {
	_, err := os.Stat(c.SessionPath())
	return err == nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
