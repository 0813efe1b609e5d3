// Package config loads runtime settings from defaults, an optional config
// file and JOURNAL_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides: db.path → JOURNAL_DB_PATH.
const EnvPrefix = "JOURNAL"

type Config struct {
	DB     DBConfig     `mapstructure:"db"`
	HTTP   HTTPConfig   `mapstructure:"http"`
	Log    LogConfig    `mapstructure:"log"`
	Unlock UnlockConfig `mapstructure:"unlock"`
	Search SearchConfig `mapstructure:"search"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type HTTPConfig struct {
	Port int `mapstructure:"port"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // text or json
	File       string `mapstructure:"file"`   // empty: stderr only
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type UnlockConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type SearchConfig struct {
	MaxPageSize int `mapstructure:"max_page_size"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.path", "~/.local/share/moodjournal/journal.db")
	v.SetDefault("http.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("unlock.ttl", "5m")
	v.SetDefault("search.max_page_size", 100)
}

// Load reads the configuration. With an empty path, journal.{yaml,toml,json}
// is looked up in the working directory and in ~/.config/moodjournal; a
// missing file is not an error. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("config: expanding %s: %w", path, err)
		}
		v.SetConfigFile(expanded)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", expanded, err)
		}
	} else {
		v.SetConfigName("journal")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "moodjournal"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}

	dbPath, err := homedir.Expand(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("config: expanding db.path: %w", err)
	}
	cfg.DB.Path = dbPath

	if cfg.Log.File != "" {
		logFile, err := homedir.Expand(cfg.Log.File)
		if err != nil {
			return nil, fmt.Errorf("config: expanding log.file: %w", err)
		}
		cfg.Log.File = logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the program cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DB.Path) == "" {
		return errors.New("config: db.path is required")
	}
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("config: http.port %d out of range", c.HTTP.Port)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Unlock.TTL <= 0 {
		return fmt.Errorf("config: unlock.ttl must be positive, got %s", c.Unlock.TTL)
	}
	if c.Search.MaxPageSize < 1 {
		return fmt.Errorf("config: search.max_page_size must be at least 1, got %d", c.Search.MaxPageSize)
	}
	return nil
}

// EnsureDBDir creates the directory holding the database file.
func (c *Config) EnsureDBDir() error {
	if c.DB.Path == ":memory:" || strings.HasPrefix(c.DB.Path, "file:") {
		return nil
	}
	dir := filepath.Dir(c.DB.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: creating database directory %s: %w", dir, err)
	}
	return nil
}
