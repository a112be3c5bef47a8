package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the settings the tutor client needs to reach the course API
// and keep its local state.
type Config struct {
	APIURL          string
	DataDir         string
	LogLevel        string
	RequestTimeout  time.Duration
	RefreshInterval time.Duration
	MetricsAddr     string
	SyncComments    bool
}

const (
	defaultConfigPath     = "~/.config/gittutor/config.toml"
	defaultDataDir        = "~/.local/share/gittutor"
	defaultAPIURL         = "http://localhost:5000/api/v2"
	defaultLogLevel       = "info"
	defaultRequestTimeout = 30 * time.Second
)

// Environment variables that override file values.
const (
	EnvAPIURL      = "GITTUTOR_API_URL"
	EnvDataDir     = "GITTUTOR_DATA_DIR"
	EnvLogLevel    = "GITTUTOR_LOG_LEVEL"
	EnvMetricsAddr = "GITTUTOR_METRICS_ADDR"
)

var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// LoadDotEnv reads .env and .env.local from the working directory when present.
// Values already set in the environment win.
func LoadDotEnv() {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:         defaultAPIURL,
		DataDir:        mustExpand(defaultDataDir),
		LogLevel:       defaultLogLevel,
		RequestTimeout: defaultRequestTimeout,
	}
}

// Load locates and parses the tutor config, falling back to defaults when
// missing. Environment overrides are applied last.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		if err := cfg.decode(file); err != nil {
			return Config{}, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	bytes, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL          string `toml:"api_url"`
		DataDir         string `toml:"data_dir"`
		LogLevel        string `toml:"log_level"`
		RequestTimeout  string `toml:"request_timeout"`
		RefreshInterval string `toml:"refresh_interval"`
		MetricsAddr     string `toml:"metrics_addr"`
		SyncComments    bool   `toml:"sync_comments"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(raw.DataDir); v != "" {
		dir, err := expandPath(v)
		if err != nil {
			return fmt.Errorf("data_dir: %w", err)
		}
		c.DataDir = dir
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(raw.RequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("request_timeout: invalid duration %q", v)
		}
		c.RequestTimeout = d
	}
	if v := strings.TrimSpace(raw.RefreshInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return fmt.Errorf("refresh_interval: invalid duration %q", v)
		}
		c.RefreshInterval = d
	}
	c.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	c.SyncComments = raw.SyncComments
	return c.validate()
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		dir, err := expandPath(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDataDir, err)
		}
		c.DataDir = dir
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMetricsAddr)); v != "" {
		c.MetricsAddr = v
	}
	return c.validate()
}

func (c *Config) validate() error {
	c.LogLevel = strings.ToLower(c.LogLevel)
	if _, ok := validLogLevels[c.LogLevel]; !ok {
		return fmt.Errorf("log_level: unknown level %q", c.LogLevel)
	}
	return nil
}

// SessionPath is where the persisted session snapshot lives.
func (c Config) SessionPath() string {
	return filepath.Join(c.dataDir(), "session.toml")
}

// EnrollmentsPath is where the durable enrollment cache lives.
func (c Config) EnrollmentsPath() string {
	return filepath.Join(c.dataDir(), "enrollments.toml")
}

// LogPath returns the client's own structured log file.
func (c Config) LogPath() string {
	return filepath.Join(c.dataDir(), "gittutor.log")
}

func (c Config) dataDir() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir)
	}
	return c.DataDir
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
