// Package config resolves the config directory and reads settings from the
// environment and an optional .env file inside that directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// DirEnv overrides the config directory when --config is not given.
	DirEnv = "TODO_DIR"

	// EnvFile is the optional dotenv file inside the config directory.
	EnvFile = ".env"

	// BoltFile is the database file used by the bolt driver.
	BoltFile = "todo.db"

	// SQLiteFile is the database file used by the sqlite driver.
	SQLiteFile = "todo.sqlite"

	// FileStoreDir is the directory used by the file driver.
	FileStoreDir = "data"
)

// Store drivers.
const (
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
	DriverFile   = "file"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Store is the durable store driver.
	Store string `env:"TODO_STORE" envDefault:"bolt"`

	// Key is the store key the task collection is kept under.
	Key string `env:"TODO_STORE_KEY" envDefault:"todos"`

	// LogLevel is the logrus level for diagnostics.
	LogLevel string `env:"TODO_LOG_LEVEL" envDefault:"warn"`

	// LogFormat is "text" or "json".
	LogFormat string `env:"TODO_LOG_FORMAT" envDefault:"text"`

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a Config rooted at configDir.
// If configDir is empty, uses $TODO_DIR, then XDG_CONFIG_HOME/todo or
// $HOME/.config/todo. Variables from <dir>/.env fill in anything the
// process environment does not set.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = os.Getenv(DirEnv)
	}
	if dir == "" {
		dir = DefaultConfigDir()
	}

	cfg := &Config{Dir: dir}
	fileVars, err := readEnvFile(cfg.EnvFilePath())
	if err != nil {
		return nil, err
	}
	if err := ParseEnv(cfg, fileVars); err != nil {
		return nil, err
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

// ParseEnv loads tagged fields of target from the process environment,
// falling back to fileVars for variables the process does not set.
func ParseEnv(target any, fileVars map[string]string) error {
	environ := make(map[string]string, len(fileVars))
	maps.Copy(environ, fileVars)
	maps.Copy(environ, env.ToMap(os.Environ()))

	if err := env.ParseWithOptions(target, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func readEnvFile(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return vars, nil
}

// Validate checks the driver and log format names.
func (c *Config) Validate() error {
	switch c.Store {
	case DriverBolt, DriverSQLite, DriverFile:
	default:
		return fmt.Errorf("unknown store driver: %s", c.Store)
	}
	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("unknown log format: %s", c.LogFormat)
	}
	if c.Key == "" {
		return fmt.Errorf("store key is required")
	}
	return nil
}

// EnvFilePath returns the path to the optional .env file.
func (c *Config) EnvFilePath() string {
	return filepath.Join(c.Dir, EnvFile)
}

// StorePath returns the database file or directory for the configured driver.
func (c *Config) StorePath() string {
	switch c.Store {
	case DriverSQLite:
		return filepath.Join(c.Dir, SQLiteFile)
	case DriverFile:
		return filepath.Join(c.Dir, FileStoreDir)
	default:
		return filepath.Join(c.Dir, BoltFile)
	}
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}
