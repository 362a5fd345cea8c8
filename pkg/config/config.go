// Package config loads the collector configuration.
//
// Defaults reproduce the collector's standard run: three queries, ten pages
// each, all of Russia, CSV in the working directory. A YAML file and a small
// set of environment variables can override them.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/Sternrassler/hh-vacancy-collector/pkg/collector"
	"github.com/Sternrassler/hh-vacancy-collector/pkg/hh"
	"github.com/Sternrassler/hh-vacancy-collector/pkg/throttle"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// DefaultUserAgent identifies the collector to hh.ru.
const DefaultUserAgent = "hh-vacancy-collector/1.0"

// Log output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config is the complete collector configuration.
type Config struct {
	Queries  []string `yaml:"queries"`
	MaxPages int      `yaml:"max_pages"`
	Area     int      `yaml:"area"`
	PerPage  int      `yaml:"per_page"`

	BaseURL        string        `yaml:"base_url"`
	UserAgent      string        `yaml:"user_agent"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	ItemPauseEvery int           `yaml:"item_pause_every"`
	ItemPause      time.Duration `yaml:"item_pause"`
	PagePause      time.Duration `yaml:"page_pause"`

	OutputDir         string `yaml:"output_dir"`
	DescriptionFormat string `yaml:"description_format"`

	Log      LogConfig      `yaml:"log"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`

	// MetricsAddr enables the /health and /metrics server when set.
	MetricsAddr string `yaml:"metrics_addr"`
}

// LogConfig selects log level and output format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RedisConfig enables the vacancy detail cache when Addr is set.
// Addr is either host:port or a redis:// URL.
type RedisConfig struct {
	Addr string        `yaml:"addr"`
	DB   int           `yaml:"db"`
	TTL  time.Duration `yaml:"ttl"`
}

// PostgresConfig enables the Postgres sink when DSN is set.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// Default returns the standard configuration.
func Default() Config {
	pacing := throttle.DefaultConfig()
	collect := collector.DefaultConfig()

	return Config{
		Queries:           append([]string(nil), collector.DefaultQueries...),
		MaxPages:          collector.DefaultMaxPages,
		Area:              collect.Area,
		PerPage:           collect.PerPage,
		BaseURL:           hh.DefaultBaseURL,
		UserAgent:         DefaultUserAgent,
		RequestTimeout:    10 * time.Second,
		ItemPauseEvery:    pacing.ItemEvery,
		ItemPause:         pacing.ItemPause,
		PagePause:         pacing.PagePause,
		OutputDir:         ".",
		DescriptionFormat: string(collector.DescriptionHTML),
		Log: LogConfig{
			Level:  "info",
			Format: FormatConsole,
		},
		Redis: RedisConfig{
			TTL: time.Hour,
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path returns the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.decode(data); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overlays the environment variables that getenv reports as non-empty.
func (c *Config) ApplyEnv(getenv func(string) string) {
	overlay := map[string]*string{
		"HH_USER_AGENT": &c.UserAgent,
		"LOG_LEVEL":     &c.Log.Level,
		"LOG_FORMAT":    &c.Log.Format,
		"REDIS_URL":     &c.Redis.Addr,
		"DATABASE_URL":  &c.Postgres.DSN,
		"METRICS_ADDR":  &c.MetricsAddr,
		"OUTPUT_DIR":    &c.OutputDir,
	}
	for key, field := range overlay {
		if value := strings.TrimSpace(getenv(key)); value != "" {
			*field = value
		}
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if len(c.Queries) == 0 {
		return invalid("at least one query is required")
	}
	for i, q := range c.Queries {
		if strings.TrimSpace(q) == "" {
			return invalid("query %d is empty", i+1)
		}
	}
	if c.MaxPages <= 0 {
		return invalid("max_pages must be positive (got %d)", c.MaxPages)
	}
	if c.Area <= 0 {
		return invalid("area must be positive (got %d)", c.Area)
	}
	if c.PerPage <= 0 || c.PerPage > 100 {
		return invalid("per_page must be between 1 and 100 (got %d)", c.PerPage)
	}
	if u, err := url.Parse(c.BaseURL); err != nil || !u.IsAbs() {
		return invalid("base_url must be absolute (got %q)", c.BaseURL)
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		return invalid("user_agent is required")
	}
	if c.RequestTimeout <= 0 {
		return invalid("request_timeout must be positive (got %s)", c.RequestTimeout)
	}
	if c.ItemPauseEvery < 0 || c.ItemPause < 0 || c.PagePause < 0 {
		return invalid("pauses must not be negative")
	}
	switch collector.DescriptionFormat(c.DescriptionFormat) {
	case collector.DescriptionHTML, collector.DescriptionText:
	default:
		return invalid("description_format must be html or text (got %q)", c.DescriptionFormat)
	}
	switch c.Log.Format {
	case FormatConsole, FormatJSON:
	default:
		return invalid("log.format must be console or json (got %q)", c.Log.Format)
	}
	if c.Redis.TTL < 0 {
		return invalid("redis.ttl must not be negative (got %s)", c.Redis.TTL)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Collector returns the collector settings.
func (c Config) Collector() collector.Config {
	return collector.Config{
		Area:              c.Area,
		PerPage:           c.PerPage,
		DescriptionFormat: collector.DescriptionFormat(c.DescriptionFormat),
	}
}

// Throttle returns the pause schedule.
func (c Config) Throttle() throttle.Config {
	return throttle.Config{
		ItemEvery: c.ItemPauseEvery,
		ItemPause: c.ItemPause,
		PagePause: c.PagePause,
	}
}

// Client returns the API client settings without a cache.
func (c Config) Client() hh.Config {
	cfg := hh.DefaultConfig(c.UserAgent)
	cfg.BaseURL = c.BaseURL
	cfg.Timeout = c.RequestTimeout
	return cfg
}
