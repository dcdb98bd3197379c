// Package config loads taskr settings from config.toml, the environment and flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	// AppName is the application directory name.
	AppName = "taskr"

	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "taskr.db"
	DefaultLogName        = "taskr.log"
	DefaultAPIURL         = "http://localhost:3000/api"
	DefaultPageSize       = 20

	EnvAPIURL = "TASKR_API_URL"
	EnvDebug  = "TASKR_DEBUG"
)

// Duration is a time.Duration that reads and writes as "30s" in TOML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

type Config struct {
	APIURL         string   `toml:"api_url"`
	DBPath         string   `toml:"db_path"`
	LogPath        string   `toml:"log_path"`
	PageSize       int      `toml:"page_size"`
	RequestTimeout Duration `toml:"request_timeout"` // 0 keeps the transport default
	PersistSession bool     `toml:"persist_session"`
	Debug          bool     `toml:"debug"`
}

// DefaultDir returns $XDG_CONFIG_HOME/taskr, falling back to the user config dir.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(dir, AppName)
}

// DefaultPath returns the config.toml path inside DefaultDir.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), DefaultConfigFileName)
}

// Default returns the configuration used when no file exists yet. Relative
// paths are resolved against dir.
func Default(dir string) Config {
	return Config{
		APIURL:         DefaultAPIURL,
		DBPath:         filepath.Join(dir, DefaultDBName),
		LogPath:        filepath.Join(dir, DefaultLogName),
		PageSize:       DefaultPageSize,
		PersistSession: true,
	}
}

// LoadOrCreate reads path, writing the defaults there first if it does not
// exist, then applies environment overrides and validates the result.
func LoadOrCreate(path string) (Config, error) {
	dir := filepath.Dir(path)
	cfg := Default(dir)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, fmt.Errorf("write default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.resolvePaths(dir)
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func (c *Config) resolvePaths(dir string) {
	if c.DBPath == "" {
		c.DBPath = DefaultDBName
	}
	if c.LogPath == "" {
		c.LogPath = DefaultLogName
	}
	if !filepath.IsAbs(c.DBPath) {
		c.DBPath = filepath.Join(dir, c.DBPath)
	}
	if !filepath.IsAbs(c.LogPath) {
		c.LogPath = filepath.Join(dir, c.LogPath)
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv(EnvDebug); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Debug = b
		} else {
			c.Debug = true
		}
	}
}

// Validate checks that the API URL is absolute and the page size is positive.
func (c *Config) Validate() error {
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api_url %q: must be an absolute http(s) URL", c.APIURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api_url %q: unsupported scheme %s", c.APIURL, u.Scheme)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("invalid page_size %d: must be at least 1", c.PageSize)
	}
	if c.RequestTimeout.Duration < 0 {
		return fmt.Errorf("invalid request_timeout %s", c.RequestTimeout)
	}
	return nil
}
