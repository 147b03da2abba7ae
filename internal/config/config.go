// Package config loads promptdiff settings from a TOML file with environment overrides.
//
// Lookup order, later entries winning:
//   - built-in defaults
//   - the TOML file given with --config (or ./promptdiff.toml when present)
//   - PROMPTDIFF_* environment variables
//   - command-line flags, applied by the caller
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/codimo/promptdiff/internal/core"
	"github.com/codimo/promptdiff/internal/diff"
)

// DefaultPath is the config file read when none is given and it exists.
const DefaultPath = "promptdiff.toml"

// Config is the full promptdiff configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	Diff   DiffConfig   `toml:"diff"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig configures `promptdiff serve` and the remote client.
type ServerConfig struct {
	Addr string `toml:"addr"`
	// URL is the server the remote command talks to.
	URL string `toml:"url"`
	// RateLimit is the allowed requests per second per client; 0 disables limiting.
	RateLimit float64 `toml:"rate_limit"`
	Burst     int     `toml:"burst"`
	// Token, when set, is required as a bearer token on every request but /health.
	Token string `toml:"token"`
}

// StoreConfig locates the prompt store.
type StoreConfig struct {
	Dir string `toml:"dir"`
}

// DiffConfig tunes the diff engine and renderers.
type DiffConfig struct {
	MaxLines  int `toml:"max_lines"`
	Context   int `toml:"context"`
	CacheSize int `toml:"cache_size"`
	Width     int `toml:"width"`
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      "127.0.0.1:8080",
			URL:       "http://127.0.0.1:8080",
			RateLimit: 20,
			Burst:     40,
		},
		Store: StoreConfig{Dir: ".promptdiff"},
		Diff: DiffConfig{
			MaxLines:  diff.DefaultMaxLines,
			Context:   3,
			CacheSize: diff.DefaultCacheSize,
			Width:     60,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults, applies environment overrides and validates the result.
// An empty path reads DefaultPath if it exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown config key %q in %s: %w", undecoded[0].String(), path, core.ErrInvalidConfig)
		}
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides applies PROMPTDIFF_* variables.
func (c *Config) ApplyEnvOverrides() error {
	setString := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) error {
		v := os.Getenv(name)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", name, v, core.ErrInvalidConfig)
		}
		*dst = n
		return nil
	}

	setString("PROMPTDIFF_ADDR", &c.Server.Addr)
	setString("PROMPTDIFF_URL", &c.Server.URL)
	setString("PROMPTDIFF_TOKEN", &c.Server.Token)
	setString("PROMPTDIFF_STORE", &c.Store.Dir)
	setString("PROMPTDIFF_LOG_LEVEL", &c.Log.Level)
	setString("PROMPTDIFF_LOG_FORMAT", &c.Log.Format)

	if v := os.Getenv("PROMPTDIFF_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("PROMPTDIFF_RATE_LIMIT=%q: %w", v, core.ErrInvalidConfig)
		}
		c.Server.RateLimit = f
	}
	return errors.Join(
		setInt("PROMPTDIFF_BURST", &c.Server.Burst),
		setInt("PROMPTDIFF_MAX_LINES", &c.Diff.MaxLines),
		setInt("PROMPTDIFF_CONTEXT", &c.Diff.Context),
		setInt("PROMPTDIFF_CACHE_SIZE", &c.Diff.CacheSize),
	)
}

// ValidationError describes one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets callers match any validation failure with core.ErrInvalidConfig.
func (e ValidationError) Unwrap() error {
	return core.ErrInvalidConfig
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Server.Addr == "" {
		add("server.addr", "must not be empty")
	}
	if c.Server.RateLimit < 0 {
		add("server.rate_limit", "must be >= 0, got %v", c.Server.RateLimit)
	}
	if c.Server.Burst < 0 {
		add("server.burst", "must be >= 0, got %d", c.Server.Burst)
	}
	if c.Store.Dir == "" {
		add("store.dir", "must not be empty")
	}
	if c.Diff.MaxLines < 0 {
		add("diff.max_lines", "must be >= 0, got %d", c.Diff.MaxLines)
	}
	if c.Diff.Context < 0 {
		add("diff.context", "must be >= 0, got %d", c.Diff.Context)
	}
	if c.Diff.CacheSize < 0 {
		add("diff.cache_size", "must be >= 0, got %d", c.Diff.CacheSize)
	}
	if c.Diff.Width < 4 {
		add("diff.width", "must be >= 4, got %d", c.Diff.Width)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		add("log.level", "%v", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		add("log.format", "invalid format %q, must be one of: text, json", c.Log.Format)
	}

	return errors.Join(errs...)
}

// ParseLevel parses a slog level name.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid level %q", s)
	}
	return level, nil
}

// NewLogger builds the logger described by c, writing to w.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Save writes c to path as TOML.
func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return f.Close()
}
